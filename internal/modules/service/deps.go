package service

import (
	"context"
	"time"

	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/infra/blob"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/model"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("test-manager/service")

// BlobStore is the subset of blob.S3Deps the services use.
type BlobStore interface {
	WriteBytes(ctx context.Context, key string, data []byte) (*blob.UploadedMeta, error)
	ReadBytes(ctx context.Context, key string) ([]byte, error)
	RemoveFile(ctx context.Context, key string) error
}

// ConfigAPI mirrors a Test's descriptive content into the external
// Configuration API.
type ConfigAPI interface {
	Create(ctx context.Context, content model.ConfigContent) (string, error)
	Update(ctx context.Context, configID string, content model.ConfigContent) error
	Delete(ctx context.Context, configID string) error
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, body any) error
}

// now is UTC truncated to whole seconds, the resolution of every stored
// system timestamp.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// emitter publishes lifecycle events. A nil publisher disables it; failures
// are logged and never returned.
type emitter struct {
	pub EventPublisher
	log *zap.Logger
}

func (e emitter) emit(ctx context.Context, typ model.EventType, testID, entityID string) {
	if e.pub == nil {
		return
	}
	ev := model.Event{Type: typ, TestID: testID, EntityID: entityID, At: now()}
	if err := e.pub.PublishJSON(ctx, string(typ), ev); err != nil {
		e.log.Warn("publish event failed",
			zap.String("type", string(typ)),
			zap.String("test_id", testID),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}
