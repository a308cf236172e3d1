package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/serializer"
	"go.uber.org/zap"
)

const (
	PermissionRead   = "Read"
	PermissionUpdate = "Update"

	resourceWorkspace = "Workspace"
)

// PermissionValidator answers whether a token holds a permission on a resource.
type PermissionValidator interface {
	ValidatePermissions(ctx context.Context, token, resourceType, resourceID, permission string) (bool, error)
}

type Auth struct {
	active      bool
	workspaceID string
	validator   PermissionValidator
	log         *zap.Logger
}

func NewAuth(active bool, workspaceID string, v PermissionValidator, log *zap.Logger) *Auth {
	return &Auth{active: active, workspaceID: workspaceID, validator: v, log: log}
}

// bearerToken accepts "Bearer <t>", "bearer <t>" or a bare token.
func bearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return strings.TrimSpace(header)
}

func forbid(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, serializer.Err(serializer.CodeForbidden, "Not Allowed", nil))
}

// Require checks the caller holds permission on the configured workspace.
// It is a no-op when auth is disabled.
func (a *Auth) Require(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.active {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			forbid(c)
			return
		}
		token := bearerToken(header)
		if token == "" {
			forbid(c)
			return
		}

		ok, err := a.validator.ValidatePermissions(c.Request.Context(), token, resourceWorkspace, a.workspaceID, permission)
		if err != nil {
			a.log.Error("permission check failed", zap.String("permission", permission), zap.Error(err))
			forbid(c)
			return
		}
		if !ok {
			forbid(c)
			return
		}
		c.Next()
	}
}
