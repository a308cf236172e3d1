package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/model"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/repo"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func createTestTest() *model.Test {
	sensors := model.NewSensors()
	sensors.Set("T1", model.SensorProps{"unit": "C"})
	return &model.Test{
		TestID:        "T1",
		CampaignID:    "C1",
		SampleID:      "S1",
		EnvironmentID: "E1",
		Operator:      "Alice",
		Sensors:       sensors,
		ConfigID:      "cfg-1",
		Status:        model.TestStatusDraft,
		Files:         map[string]model.File{},
		Links:         []model.Link{},
		CreatedAt:     time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

const validCreateBody = `{
	"test_id": "T1",
	"campaign_id": "C1",
	"sample_id": "S1",
	"environment_id": "E1",
	"operator": "Alice",
	"sensors": {"T1": {"unit": "C", "max": 120}, "P1": {"unit": "bar"}}
}`

func TestTestHandler_CreateTest(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setup          func(*MockTestService)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name: "successful creation",
			body: validCreateBody,
			setup: func(svc *MockTestService) {
				svc.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreateTestInput) bool {
					return in.TestID == "T1" && in.Operator == "Alice" &&
						len(in.Sensors.Keys()) == 2 && in.Sensors.Keys()[0] == "T1"
				})).Return(createTestTest(), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing required field",
			body:           `{"test_id": "T1"}`,
			setup:          func(svc *MockTestService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "nested sensor value rejected",
			body:           `{"test_id":"T1","campaign_id":"C1","sample_id":"S1","environment_id":"E1","operator":"A","sensors":{"T1":{"range":{"min":0}}}}`,
			setup:          func(svc *MockTestService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown status",
			body:           `{"test_id":"T1","campaign_id":"C1","sample_id":"S1","environment_id":"E1","operator":"A","sensors":{},"status":"archived"}`,
			setup:          func(svc *MockTestService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate test id",
			body: validCreateBody,
			setup: func(svc *MockTestService) {
				svc.On("Create", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("Test with this ID already exists: %w", service.ErrConflict))
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "config api failure",
			body: validCreateBody,
			setup: func(svc *MockTestService) {
				svc.On("Create", mock.Anything, mock.Anything).Return(nil, &service.FailedDependencyError{
					StatusCode: 500,
					Body:       "boom",
					Err:        errors.New("Failed to create configuration: 500 boom"),
				})
			},
			expectedStatus: http.StatusFailedDependency,
			expectedMsg:    "Failed to create configuration: 500 boom",
		},
		{
			name: "unexpected failure",
			body: validCreateBody,
			setup: func(svc *MockTestService) {
				svc.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("mongo down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockTestService{}
			tt.setup(svc)
			h := NewTestHandler(svc)

			r := setupRouter()
			r.POST("/tests", h.CreateTest)

			req := httptest.NewRequest(http.MethodPost, "/tests", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedMsg != "" {
				var resp map[string]interface{}
				assert.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedMsg, resp["message"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestTestHandler_CreateTestKeepsSensorOrder(t *testing.T) {
	svc := &MockTestService{}
	created := createTestTest()
	sensors := model.NewSensors()
	sensors.Set("Z", model.SensorProps{})
	sensors.Set("A", model.SensorProps{})
	created.Sensors = sensors
	svc.On("Create", mock.Anything, mock.Anything).Return(created, nil)

	r := setupRouter()
	r.POST("/tests", NewTestHandler(svc).CreateTest)

	req := httptest.NewRequest(http.MethodPost, "/tests", bytes.NewBufferString(validCreateBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"sensors":{"Z":{},"A":{}}`)
}

func TestTestHandler_ListTests(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		setup          func(*MockTestService)
		expectedStatus int
	}{
		{
			name:  "filters are forwarded",
			query: "?operator=Alice&status=draft&q=alice",
			setup: func(svc *MockTestService) {
				svc.On("List", mock.Anything, repo.TestFilter{
					Operator: "Alice",
					Status:   model.TestStatusDraft,
					Q:        "alice",
				}).Return([]*model.Test{createTestTest()}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "no filters",
			query: "",
			setup: func(svc *MockTestService) {
				svc.On("List", mock.Anything, repo.TestFilter{}).Return([]*model.Test{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid status",
			query:          "?status=paused",
			setup:          func(svc *MockTestService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockTestService{}
			tt.setup(svc)

			r := setupRouter()
			r.GET("/tests", NewTestHandler(svc).ListTests)

			req := httptest.NewRequest(http.MethodGet, "/tests"+tt.query, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestTestHandler_GetUpdateDelete(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		setup          func(*MockTestService)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:   "get existing",
			method: http.MethodGet,
			path:   "/tests/T1",
			setup: func(svc *MockTestService) {
				svc.On("Get", mock.Anything, "T1").Return(createTestTest(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "get missing",
			method: http.MethodGet,
			path:   "/tests/T9",
			setup: func(svc *MockTestService) {
				svc.On("Get", mock.Anything, "T9").Return(nil, fmt.Errorf("Test %w", service.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "Test not found",
		},
		{
			name:   "partial update",
			method: http.MethodPut,
			path:   "/tests/T1",
			body:   `{"operator":"Bob","status":"in_progress"}`,
			setup: func(svc *MockTestService) {
				svc.On("Update", mock.Anything, "T1", mock.MatchedBy(func(in service.UpdateTestInput) bool {
					return in.Operator != nil && *in.Operator == "Bob" &&
						in.Status != nil && *in.Status == model.TestStatusInProgress &&
						in.CampaignID == nil && in.Sensors == nil
				})).Return(createTestTest(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "null clears optional fields",
			method: http.MethodPut,
			path:   "/tests/T1",
			body:   `{"grafana_url":null,"end":null,"start":"2026-03-01T09:30:00Z"}`,
			setup: func(svc *MockTestService) {
				svc.On("Update", mock.Anything, "T1", mock.MatchedBy(func(in service.UpdateTestInput) bool {
					return in.GrafanaURL.Set && in.GrafanaURL.Value == nil &&
						in.End.Set && in.End.Value == nil &&
						in.Start.Set && in.Start.Value != nil &&
						in.Start.Value.Equal(time.Date(2026, time.March, 1, 9, 30, 0, 0, time.UTC)) &&
						in.Operator == nil
				})).Return(createTestTest(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "malformed start",
			method:         http.MethodPut,
			path:           "/tests/T1",
			body:           `{"start":"yesterday"}`,
			setup:          func(svc *MockTestService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "empty update",
			method: http.MethodPut,
			path:   "/tests/T1",
			body:   `{}`,
			setup: func(svc *MockTestService) {
				svc.On("Update", mock.Anything, "T1", service.UpdateTestInput{}).
					Return(nil, fmt.Errorf("At least one field must be provided for update: %w", service.ErrValidation))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "update with invalid status",
			method:         http.MethodPut,
			path:           "/tests/T1",
			body:           `{"status":"paused"}`,
			setup:          func(svc *MockTestService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "delete",
			method: http.MethodDelete,
			path:   "/tests/T1",
			setup: func(svc *MockTestService) {
				svc.On("Delete", mock.Anything, "T1").Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:   "delete blocked by config api",
			method: http.MethodDelete,
			path:   "/tests/T1",
			setup: func(svc *MockTestService) {
				svc.On("Delete", mock.Anything, "T1").Return(&service.FailedDependencyError{
					Err: errors.New("Failed to delete configuration: 502 bad gateway"),
				})
			},
			expectedStatus: http.StatusFailedDependency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockTestService{}
			tt.setup(svc)
			h := NewTestHandler(svc)

			r := setupRouter()
			r.GET("/tests/:test_id", h.GetTest)
			r.PUT("/tests/:test_id", h.UpdateTest)
			r.DELETE("/tests/:test_id", h.DeleteTest)

			var body *bytes.Buffer
			if tt.body != "" {
				body = bytes.NewBufferString(tt.body)
			} else {
				body = &bytes.Buffer{}
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedMsg != "" {
				var resp map[string]interface{}
				assert.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedMsg, resp["message"])
			}
			svc.AssertExpectations(t)
		})
	}
}
