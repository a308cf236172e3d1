package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/serializer"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/service"
)

// abortWithServiceErr maps service errors onto HTTP statuses.
func abortWithServiceErr(c *gin.Context, err error) {
	_ = c.Error(err)

	var fe *service.FailedDependencyError
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, serializer.Err(serializer.CodeNotFound, err.Error(), nil))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, serializer.Err(serializer.CodeConflict, err.Error(), nil))
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, serializer.ParamErr(err.Error(), nil))
	case errors.Is(err, service.ErrInvalidSignature):
		c.JSON(http.StatusForbidden, serializer.Err(serializer.CodeForbidden, err.Error(), nil))
	case errors.As(err, &fe):
		c.JSON(http.StatusFailedDependency, serializer.Err(serializer.CodeFailedDependency, fe.Error(), nil))
	default:
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
	}
}
