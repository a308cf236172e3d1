package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/model"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestLinkHandler(t *testing.T) {
	link := &model.Link{
		ID:    "l1",
		URL:   "https://grafana.example.com/d/abc",
		Label: "Dashboard",
	}

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		setup          func(*MockLinkService)
		expectedStatus int
	}{
		{
			name:   "add",
			method: http.MethodPost,
			path:   "/tests/T1/links",
			body:   `{"url":"https://grafana.example.com/d/abc","label":"Dashboard"}`,
			setup: func(svc *MockLinkService) {
				svc.On("Add", mock.Anything, "T1", "https://grafana.example.com/d/abc", "Dashboard").Return(link, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "add without label",
			method:         http.MethodPost,
			path:           "/tests/T1/links",
			body:           `{"url":"https://grafana.example.com/d/abc"}`,
			setup:          func(svc *MockLinkService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "add to missing test",
			method: http.MethodPost,
			path:   "/tests/T9/links",
			body:   `{"url":"https://x","label":"x"}`,
			setup: func(svc *MockLinkService) {
				svc.On("Add", mock.Anything, "T9", "https://x", "x").Return(nil, fmt.Errorf("Test %w", service.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "list",
			method: http.MethodGet,
			path:   "/tests/T1/links",
			setup: func(svc *MockLinkService) {
				svc.On("List", mock.Anything, "T1").Return([]model.Link{*link}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "delete",
			method: http.MethodDelete,
			path:   "/tests/T1/links/l1",
			setup: func(svc *MockLinkService) {
				svc.On("Delete", mock.Anything, "T1", "l1").Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:   "delete missing link",
			method: http.MethodDelete,
			path:   "/tests/T1/links/l9",
			setup: func(svc *MockLinkService) {
				svc.On("Delete", mock.Anything, "T1", "l9").Return(fmt.Errorf("Link %w", service.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockLinkService{}
			tt.setup(svc)
			h := NewLinkHandler(svc)

			r := setupRouter()
			r.POST("/tests/:test_id/links", h.AddLink)
			r.GET("/tests/:test_id/links", h.ListLinks)
			r.DELETE("/tests/:test_id/links/:link_id", h.DeleteLink)

			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}
