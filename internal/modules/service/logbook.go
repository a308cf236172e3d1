package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/model"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/repo"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type CreateLogbookInput struct {
	Operator  string
	Content   string
	SensorIDs []string
	// Timestamp defaults to now when nil.
	Timestamp *time.Time
}

type UpdateLogbookInput struct {
	Operator  *string
	Content   *string
	SensorIDs *[]string
	Timestamp *time.Time
}

func (in UpdateLogbookInput) fields() bson.M {
	f := bson.M{}
	if in.Operator != nil {
		f["operator"] = *in.Operator
	}
	if in.Content != nil {
		f["content"] = *in.Content
	}
	if in.SensorIDs != nil {
		ids := *in.SensorIDs
		if ids == nil {
			ids = []string{}
		}
		f["sensor_ids"] = ids
	}
	if in.Timestamp != nil {
		f["timestamp"] = in.Timestamp.UTC()
	}
	return f
}

// LogbookService keeps logbook documents and their time-series points in
// step. The document store is the source of truth for content.
type LogbookService interface {
	Create(ctx context.Context, testID string, in CreateLogbookInput) (*model.LogbookEntry, error)
	Get(ctx context.Context, testID, entryID string) (*model.LogbookEntry, error)
	List(ctx context.Context, testID string) ([]*model.LogbookEntry, error)
	Update(ctx context.Context, testID, entryID string, in UpdateLogbookInput) (*model.LogbookEntry, error)
	Delete(ctx context.Context, testID, entryID string) error
	Resync(ctx context.Context, testID, entryID string) (*model.LogbookEntry, error)
}

type logbookService struct {
	tests   repo.TestRepo
	entries repo.LogbookRepo
	series  repo.LogbookSeriesRepo
	events  emitter
	log     *zap.Logger
}

func NewLogbookService(tests repo.TestRepo, entries repo.LogbookRepo, series repo.LogbookSeriesRepo, pub EventPublisher, log *zap.Logger) LogbookService {
	return &logbookService{
		tests:   tests,
		entries: entries,
		series:  series,
		events:  emitter{pub: pub, log: log},
		log:     log,
	}
}

func (s *logbookService) requireTest(ctx context.Context, testID string) error {
	exists, err := s.tests.Exists(ctx, testID)
	if err != nil {
		return fmt.Errorf("check test existence: %w", err)
	}
	if !exists {
		return notFound("Test")
	}
	return nil
}

func (s *logbookService) Create(ctx context.Context, testID string, in CreateLogbookInput) (*model.LogbookEntry, error) {
	if err := s.requireTest(ctx, testID); err != nil {
		return nil, err
	}

	created := now()
	ts := created
	if in.Timestamp != nil {
		ts = in.Timestamp.UTC()
	}
	sensorIDs := in.SensorIDs
	if sensorIDs == nil {
		sensorIDs = []string{}
	}

	e := &model.LogbookEntry{
		ID:        uuid.New().String(),
		TestID:    testID,
		Operator:  in.Operator,
		Content:   in.Content,
		SensorIDs: sensorIDs,
		Timestamp: ts,
		CreatedAt: created,
	}
	if err := s.entries.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create logbook entry: %w", err)
	}

	if err := s.series.Write(ctx, e); err != nil {
		if derr := s.entries.Delete(ctx, testID, e.ID); derr != nil {
			s.log.Error("compensate logbook entry",
				zap.String("test_id", testID), zap.String("entry_id", e.ID), zap.Error(derr))
		}
		return nil, fmt.Errorf("write logbook point: %w", err)
	}

	s.events.emit(ctx, model.EventLogbookCreated, testID, e.ID)
	return e, nil
}

func (s *logbookService) Get(ctx context.Context, testID, entryID string) (*model.LogbookEntry, error) {
	e, err := s.entries.GetByID(ctx, testID, entryID)
	if err != nil {
		return nil, mapRepoErr(err, "Logbook entry")
	}
	return e, nil
}

func (s *logbookService) List(ctx context.Context, testID string) ([]*model.LogbookEntry, error) {
	if err := s.requireTest(ctx, testID); err != nil {
		return nil, err
	}
	return s.entries.ListByTest(ctx, testID)
}

func (s *logbookService) Update(ctx context.Context, testID, entryID string, in UpdateLogbookInput) (*model.LogbookEntry, error) {
	fields := in.fields()
	if len(fields) == 0 {
		return nil, validation("At least one field must be provided for update")
	}

	e, err := s.entries.Update(ctx, testID, entryID, fields)
	if err != nil {
		return nil, mapRepoErr(err, "Logbook entry")
	}

	// a new event time is a different point; drop the old one first
	if in.Timestamp != nil {
		if err := s.series.Delete(ctx, entryID); err != nil {
			return nil, fmt.Errorf("delete logbook point: %w", err)
		}
	}
	if err := s.series.Write(ctx, e); err != nil {
		return nil, fmt.Errorf("write logbook point: %w", err)
	}

	s.events.emit(ctx, model.EventLogbookUpdated, testID, entryID)
	return e, nil
}

func (s *logbookService) Delete(ctx context.Context, testID, entryID string) error {
	if err := s.entries.Delete(ctx, testID, entryID); err != nil {
		return mapRepoErr(err, "Logbook entry")
	}
	if err := s.series.Delete(ctx, entryID); err != nil {
		return fmt.Errorf("delete logbook point: %w", err)
	}

	s.events.emit(ctx, model.EventLogbookDeleted, testID, entryID)
	return nil
}

// Resync rewrites the entry's point from the stored document.
func (s *logbookService) Resync(ctx context.Context, testID, entryID string) (*model.LogbookEntry, error) {
	e, err := s.entries.GetByID(ctx, testID, entryID)
	if err != nil {
		return nil, mapRepoErr(err, "Logbook entry")
	}
	if err := s.series.Delete(ctx, entryID); err != nil {
		return nil, fmt.Errorf("delete logbook point: %w", err)
	}
	if err := s.series.Write(ctx, e); err != nil {
		return nil, fmt.Errorf("write logbook point: %w", err)
	}
	s.log.Info("logbook point resynced", zap.String("test_id", testID), zap.String("entry_id", entryID))
	return e, nil
}
