package httpclient

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const portalBase = "http://portal.local"

func newTestAuthClient(t *testing.T) (*PortalAuthClient, *httpmock.MockTransport) {
	t.Helper()
	return newTestAuthClientTTL(t, time.Minute)
}

func newTestAuthClientTTL(t *testing.T, ttl time.Duration) (*PortalAuthClient, *httpmock.MockTransport) {
	t.Helper()
	cfg := &config.Config{Auth: config.AuthCfg{Active: true, PortalURL: portalBase, CacheTTL: ttl}}
	c := NewPortalAuthClient(cfg, nil)
	transport := httpmock.NewMockTransport()
	c.HTTPClient().Transport = transport
	return c, transport
}

func TestPortalAuthClient_ValidatePermissions(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		want      bool
		expectErr bool
	}{
		{name: "granted", status: http.StatusOK, body: `true`, want: true},
		{name: "denied by verdict", status: http.StatusOK, body: `false`, want: false},
		{name: "unauthorized token", status: http.StatusUnauthorized, body: ``, want: false},
		{name: "portal failure", status: http.StatusBadGateway, body: ``, expectErr: true},
		{name: "garbage body", status: http.StatusOK, body: `{"x":1}`, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, transport := newTestAuthClient(t)
			transport.RegisterResponder(http.MethodGet, portalBase+"/auth/permissions/query",
				func(req *http.Request) (*http.Response, error) {
					assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
					assert.Equal(t, "Workspace", req.URL.Query().Get("resourceType"))
					assert.Equal(t, "ws-1", req.URL.Query().Get("resourceID"))
					assert.Equal(t, "Update", req.URL.Query().Get("permissions"))
					return httpmock.NewStringResponse(tt.status, tt.body), nil
				})

			got, err := c.ValidatePermissions(context.Background(), "tok", "Workspace", "ws-1", "Update")
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPortalAuthClient_CachesVerdicts(t *testing.T) {
	c, transport := newTestAuthClient(t)
	transport.RegisterResponder(http.MethodGet, portalBase+"/auth/permissions/query",
		httpmock.NewStringResponder(http.StatusOK, `true`))

	for i := 0; i < 3; i++ {
		ok, err := c.ValidatePermissions(context.Background(), "tok", "Workspace", "ws-1", "Read")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 1, transport.GetTotalCallCount())

	// a different permission is a different verdict
	_, err := c.ValidatePermissions(context.Background(), "tok", "Workspace", "ws-1", "Update")
	require.NoError(t, err)
	assert.Equal(t, 2, transport.GetTotalCallCount())
}

func TestPortalAuthClient_ZeroTTLDoesNotCache(t *testing.T) {
	c, transport := newTestAuthClientTTL(t, 0)
	granted := true
	transport.RegisterResponder(http.MethodGet, portalBase+"/auth/permissions/query",
		func(*http.Request) (*http.Response, error) {
			if granted {
				return httpmock.NewStringResponse(http.StatusOK, `true`), nil
			}
			return httpmock.NewStringResponse(http.StatusForbidden, ``), nil
		})

	ok, err := c.ValidatePermissions(context.Background(), "tok", "Workspace", "ws-1", "Read")
	require.NoError(t, err)
	assert.True(t, ok)

	// revoked at the portal: the next check must see it
	granted = false
	ok, err = c.ValidatePermissions(context.Background(), "tok", "Workspace", "ws-1", "Read")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, transport.GetTotalCallCount())
}
