package httpclient

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/patrickmn/go-cache"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/config"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/infra/metrics"
)

const permissionsQueryEP = "/auth/permissions/query"

// PortalAuthClient checks bearer tokens against the portal's permission
// endpoint. Verdicts are cached per token, resource and permission for
// auth.cache_ttl; a zero TTL disables the cache.
type PortalAuthClient struct {
	baseURL string
	hc      *http.Client
	cache   *cache.Cache
	metrics *metrics.Metrics
}

func NewPortalAuthClient(cfg *config.Config, m *metrics.Metrics) *PortalAuthClient {
	c := &PortalAuthClient{
		baseURL: strings.TrimRight(cfg.Auth.PortalURL, "/"),
		hc:      &http.Client{Timeout: 10 * time.Second},
		metrics: m,
	}
	// go-cache reads a zero TTL as "never expire"
	if ttl := cfg.Auth.CacheTTL; ttl > 0 {
		c.cache = cache.New(ttl, 2*ttl)
	}
	return c
}

func (c *PortalAuthClient) cached(key string) (allowed, ok bool) {
	if c.cache == nil {
		return false, false
	}
	v, ok := c.cache.Get(key)
	if !ok {
		return false, false
	}
	return v.(bool), true
}

func (c *PortalAuthClient) remember(key string, allowed bool) {
	if c.cache != nil {
		c.cache.SetDefault(key, allowed)
	}
}

func (c *PortalAuthClient) HTTPClient() *http.Client { return c.hc }

func verdictKey(token, resourceType, resourceID, permission string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:]) + "|" + resourceType + "|" + resourceID + "|" + permission
}

// ValidatePermissions reports whether token grants permission on the resource.
// A 401/403 from the portal is a negative verdict, not an error.
func (c *PortalAuthClient) ValidatePermissions(ctx context.Context, token, resourceType, resourceID, permission string) (allowed bool, err error) {
	key := verdictKey(token, resourceType, resourceID, permission)
	if v, ok := c.cached(key); ok {
		return v, nil
	}

	start := time.Now()
	defer func() { c.metrics.ObserveDependency("auth_portal", "validate_permissions", err, time.Since(start)) }()

	q := url.Values{}
	q.Set("resourceType", resourceType)
	q.Set("resourceID", resourceID)
	q.Set("permissions", permission)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+permissionsQueryEP+"?"+q.Encode(), nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return false, fmt.Errorf("query permissions: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.remember(key, false)
		return false, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return false, fmt.Errorf("query permissions: unexpected status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("read permissions response: %w", err)
	}
	if err := sonic.Unmarshal(raw, &allowed); err != nil {
		return false, fmt.Errorf("decode permissions response: %w", err)
	}

	c.remember(key, allowed)
	return allowed, nil
}
