package service

import (
	"context"

	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/infra/blob"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/model"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/repo"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
)

// MockTestRepo is a mock implementation of repo.TestRepo
type MockTestRepo struct {
	mock.Mock
}

func (m *MockTestRepo) Create(ctx context.Context, t *model.Test) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTestRepo) Exists(ctx context.Context, testID string) (bool, error) {
	args := m.Called(ctx, testID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTestRepo) GetByID(ctx context.Context, testID string) (*model.Test, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Test), args.Error(1)
}

func (m *MockTestRepo) List(ctx context.Context, f repo.TestFilter) ([]*model.Test, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Test), args.Error(1)
}

func (m *MockTestRepo) Update(ctx context.Context, testID string, fields bson.M) (*model.Test, error) {
	args := m.Called(ctx, testID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Test), args.Error(1)
}

func (m *MockTestRepo) Delete(ctx context.Context, testID string) error {
	args := m.Called(ctx, testID)
	return args.Error(0)
}

func (m *MockTestRepo) SetFile(ctx context.Context, testID string, f model.File) error {
	args := m.Called(ctx, testID, f)
	return args.Error(0)
}

func (m *MockTestRepo) UnsetFile(ctx context.Context, testID string, fileID string) (bool, error) {
	args := m.Called(ctx, testID, fileID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTestRepo) PushLink(ctx context.Context, testID string, l model.Link) error {
	args := m.Called(ctx, testID, l)
	return args.Error(0)
}

func (m *MockTestRepo) PullLink(ctx context.Context, testID string, linkID string) (bool, error) {
	args := m.Called(ctx, testID, linkID)
	return args.Bool(0), args.Error(1)
}

// MockLogbookRepo is a mock implementation of repo.LogbookRepo
type MockLogbookRepo struct {
	mock.Mock
}

func (m *MockLogbookRepo) Create(ctx context.Context, e *model.LogbookEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockLogbookRepo) GetByID(ctx context.Context, testID string, entryID string) (*model.LogbookEntry, error) {
	args := m.Called(ctx, testID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LogbookEntry), args.Error(1)
}

func (m *MockLogbookRepo) ListByTest(ctx context.Context, testID string) ([]*model.LogbookEntry, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.LogbookEntry), args.Error(1)
}

func (m *MockLogbookRepo) Update(ctx context.Context, testID string, entryID string, fields bson.M) (*model.LogbookEntry, error) {
	args := m.Called(ctx, testID, entryID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LogbookEntry), args.Error(1)
}

func (m *MockLogbookRepo) Delete(ctx context.Context, testID string, entryID string) error {
	args := m.Called(ctx, testID, entryID)
	return args.Error(0)
}

func (m *MockLogbookRepo) DeleteByTest(ctx context.Context, testID string) (int64, error) {
	args := m.Called(ctx, testID)
	return args.Get(0).(int64), args.Error(1)
}

// MockSeriesRepo is a mock implementation of repo.LogbookSeriesRepo
type MockSeriesRepo struct {
	mock.Mock
}

func (m *MockSeriesRepo) Write(ctx context.Context, e *model.LogbookEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockSeriesRepo) Delete(ctx context.Context, entryID string) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}

// MockBlobStore is a mock implementation of BlobStore
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) WriteBytes(ctx context.Context, key string, data []byte) (*blob.UploadedMeta, error) {
	args := m.Called(ctx, key, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blob.UploadedMeta), args.Error(1)
}

func (m *MockBlobStore) ReadBytes(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBlobStore) RemoveFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockConfigAPI is a mock implementation of ConfigAPI
type MockConfigAPI struct {
	mock.Mock
}

func (m *MockConfigAPI) Create(ctx context.Context, content model.ConfigContent) (string, error) {
	args := m.Called(ctx, content)
	return args.String(0), args.Error(1)
}

func (m *MockConfigAPI) Update(ctx context.Context, configID string, content model.ConfigContent) error {
	args := m.Called(ctx, configID, content)
	return args.Error(0)
}

func (m *MockConfigAPI) Delete(ctx context.Context, configID string) error {
	args := m.Called(ctx, configID)
	return args.Error(0)
}

// MockPublisher is a mock implementation of EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(ctx context.Context, routingKey string, body any) error {
	args := m.Called(ctx, routingKey, body)
	return args.Error(0)
}
