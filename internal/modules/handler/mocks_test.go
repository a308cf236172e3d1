package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/model"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/repo"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/service"
	"github.com/stretchr/testify/mock"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
	return gin.New()
}

// MockTestService is a mock implementation of service.TestService
type MockTestService struct {
	mock.Mock
}

func (m *MockTestService) Create(ctx context.Context, in service.CreateTestInput) (*model.Test, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Test), args.Error(1)
}

func (m *MockTestService) Get(ctx context.Context, testID string) (*model.Test, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Test), args.Error(1)
}

func (m *MockTestService) List(ctx context.Context, f repo.TestFilter) ([]*model.Test, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Test), args.Error(1)
}

func (m *MockTestService) Update(ctx context.Context, testID string, in service.UpdateTestInput) (*model.Test, error) {
	args := m.Called(ctx, testID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Test), args.Error(1)
}

func (m *MockTestService) Delete(ctx context.Context, testID string) error {
	args := m.Called(ctx, testID)
	return args.Error(0)
}

// MockFileService is a mock implementation of service.FileService
type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) IssueGrant(ctx context.Context, testID, filename, host string) (string, error) {
	args := m.Called(ctx, testID, filename, host)
	return args.String(0), args.Error(1)
}

func (m *MockFileService) AcceptUpload(ctx context.Context, in service.UploadInput) (*model.File, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) ListFiles(ctx context.Context, testID string) ([]model.File, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.File), args.Error(1)
}

func (m *MockFileService) GetFile(ctx context.Context, testID, fileID string) (*model.File, error) {
	args := m.Called(ctx, testID, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) Download(ctx context.Context, testID, fileID string) (*model.File, []byte, error) {
	args := m.Called(ctx, testID, fileID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.File), args.Get(1).([]byte), args.Error(2)
}

func (m *MockFileService) Delete(ctx context.Context, testID, fileID string) error {
	args := m.Called(ctx, testID, fileID)
	return args.Error(0)
}

// MockLogbookService is a mock implementation of service.LogbookService
type MockLogbookService struct {
	mock.Mock
}

func (m *MockLogbookService) Create(ctx context.Context, testID string, in service.CreateLogbookInput) (*model.LogbookEntry, error) {
	args := m.Called(ctx, testID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LogbookEntry), args.Error(1)
}

func (m *MockLogbookService) Get(ctx context.Context, testID, entryID string) (*model.LogbookEntry, error) {
	args := m.Called(ctx, testID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LogbookEntry), args.Error(1)
}

func (m *MockLogbookService) List(ctx context.Context, testID string) ([]*model.LogbookEntry, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.LogbookEntry), args.Error(1)
}

func (m *MockLogbookService) Update(ctx context.Context, testID, entryID string, in service.UpdateLogbookInput) (*model.LogbookEntry, error) {
	args := m.Called(ctx, testID, entryID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LogbookEntry), args.Error(1)
}

func (m *MockLogbookService) Delete(ctx context.Context, testID, entryID string) error {
	args := m.Called(ctx, testID, entryID)
	return args.Error(0)
}

func (m *MockLogbookService) Resync(ctx context.Context, testID, entryID string) (*model.LogbookEntry, error) {
	args := m.Called(ctx, testID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LogbookEntry), args.Error(1)
}

// MockLinkService is a mock implementation of service.LinkService
type MockLinkService struct {
	mock.Mock
}

func (m *MockLinkService) Add(ctx context.Context, testID, url, label string) (*model.Link, error) {
	args := m.Called(ctx, testID, url, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Link), args.Error(1)
}

func (m *MockLinkService) List(ctx context.Context, testID string) ([]model.Link, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Link), args.Error(1)
}

func (m *MockLinkService) Delete(ctx context.Context, testID, linkID string) error {
	args := m.Called(ctx, testID, linkID)
	return args.Error(0)
}
