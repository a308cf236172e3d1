package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/infra/blob"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/model"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/repo"
	"go.mongodb.org/mongo-driver/bson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type CreateTestInput struct {
	TestID        string
	CampaignID    string
	SampleID      string
	EnvironmentID string
	Operator      string
	Sensors       model.Sensors
	GrafanaURL    *string
	Status        model.TestStatus
	Start         *time.Time
	End           *time.Time
}

// UpdateTestInput is a partial update; nil fields are left untouched.
// GrafanaURL, Start and End can also be cleared with an explicit null.
type UpdateTestInput struct {
	CampaignID    *string
	SampleID      *string
	EnvironmentID *string
	Operator      *string
	Sensors       *model.Sensors
	GrafanaURL    model.Nullable[string]
	Status        *model.TestStatus
	Start         model.Nullable[time.Time]
	End           model.Nullable[time.Time]
}

func (in UpdateTestInput) fields() bson.M {
	f := bson.M{}
	setStr := func(key string, v *string) {
		if v != nil {
			f[key] = *v
		}
	}
	setStr("campaign_id", in.CampaignID)
	setStr("sample_id", in.SampleID)
	setStr("environment_id", in.EnvironmentID)
	setStr("operator", in.Operator)
	if in.GrafanaURL.Set {
		f["grafana_url"] = in.GrafanaURL.Value
	}
	if in.Sensors != nil {
		f["sensors"] = *in.Sensors
	}
	if in.Status != nil {
		f["status"] = *in.Status
	}
	setTime := func(key string, v model.Nullable[time.Time]) {
		if v.Set {
			f[key] = utcPtr(v.Value)
		}
	}
	setTime("start", in.Start)
	setTime("end", in.End)
	return f
}

type TestService interface {
	Create(ctx context.Context, in CreateTestInput) (*model.Test, error)
	Get(ctx context.Context, testID string) (*model.Test, error)
	List(ctx context.Context, f repo.TestFilter) ([]*model.Test, error)
	Update(ctx context.Context, testID string, in UpdateTestInput) (*model.Test, error)
	Delete(ctx context.Context, testID string) error
}

type testService struct {
	tests       repo.TestRepo
	logbook     repo.LogbookRepo
	series      repo.LogbookSeriesRepo
	blob        BlobStore
	configs     ConfigAPI
	workspaceID string
	events      emitter
	log         *zap.Logger
}

func NewTestService(
	tests repo.TestRepo,
	logbook repo.LogbookRepo,
	series repo.LogbookSeriesRepo,
	blobStore BlobStore,
	configs ConfigAPI,
	workspaceID string,
	pub EventPublisher,
	log *zap.Logger,
) TestService {
	return &testService{
		tests:       tests,
		logbook:     logbook,
		series:      series,
		blob:        blobStore,
		configs:     configs,
		workspaceID: workspaceID,
		events:      emitter{pub: pub, log: log},
		log:         log,
	}
}

func (s *testService) Create(ctx context.Context, in CreateTestInput) (_ *model.Test, err error) {
	ctx, span := tracer.Start(ctx, "TestService.Create", trace.WithAttributes(attribute.String("test_id", in.TestID)))
	defer endSpan(span, &err)

	if in.TestID == "" {
		return nil, validation("test_id is required")
	}
	if in.Status == "" {
		in.Status = model.TestStatusDraft
	}
	if !in.Status.Valid() {
		return nil, validation(fmt.Sprintf("invalid status %q", in.Status))
	}

	exists, err := s.tests.Exists(ctx, in.TestID)
	if err != nil {
		return nil, fmt.Errorf("check test existence: %w", err)
	}
	if exists {
		return nil, conflict("Test with this ID already exists")
	}

	ts := now()
	t := &model.Test{
		TestID:        in.TestID,
		CampaignID:    in.CampaignID,
		SampleID:      in.SampleID,
		EnvironmentID: in.EnvironmentID,
		Operator:      in.Operator,
		Sensors:       in.Sensors,
		Status:        in.Status,
		GrafanaURL:    in.GrafanaURL,
		Start:         utcPtr(in.Start),
		End:           utcPtr(in.End),
		Files:         map[string]model.File{},
		Links:         []model.Link{},
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}

	configID, err := s.configs.Create(ctx, t.ConfigContent())
	if err != nil {
		return nil, failedDependency(err)
	}
	t.ConfigID = configID

	if err := s.tests.Create(ctx, t); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			// lost a create race; drop the configuration registered above
			if derr := s.configs.Delete(ctx, configID); derr != nil {
				s.log.Error("remove orphaned configuration",
					zap.String("test_id", in.TestID), zap.String("config_id", configID), zap.Error(derr))
			}
			return nil, conflict("Test with this ID already exists")
		}
		return nil, fmt.Errorf("create test record: %w", err)
	}

	s.events.emit(ctx, model.EventTestCreated, t.TestID, "")
	return t, nil
}

func (s *testService) Get(ctx context.Context, testID string) (*model.Test, error) {
	t, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return nil, mapRepoErr(err, "Test")
	}
	return t, nil
}

func (s *testService) List(ctx context.Context, f repo.TestFilter) ([]*model.Test, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, validation(fmt.Sprintf("invalid status %q", f.Status))
	}
	return s.tests.List(ctx, f)
}

func (s *testService) Update(ctx context.Context, testID string, in UpdateTestInput) (_ *model.Test, err error) {
	ctx, span := tracer.Start(ctx, "TestService.Update", trace.WithAttributes(attribute.String("test_id", testID)))
	defer endSpan(span, &err)

	fields := in.fields()
	if len(fields) == 0 {
		return nil, validation("At least one field must be provided for update")
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, validation(fmt.Sprintf("invalid status %q", *in.Status))
	}
	fields["updated_at"] = now()

	t, err := s.tests.Update(ctx, testID, fields)
	if err != nil {
		return nil, mapRepoErr(err, "Test")
	}

	// the document change stays committed even if the mirror fails
	if err := s.configs.Update(ctx, t.ConfigID, t.ConfigContent()); err != nil {
		return nil, failedDependency(err)
	}

	s.events.emit(ctx, model.EventTestUpdated, testID, "")
	return t, nil
}

func (s *testService) Delete(ctx context.Context, testID string) (err error) {
	ctx, span := tracer.Start(ctx, "TestService.Delete", trace.WithAttributes(attribute.String("test_id", testID)))
	defer endSpan(span, &err)

	t, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return mapRepoErr(err, "Test")
	}

	if err := s.configs.Delete(ctx, t.ConfigID); err != nil {
		return failedDependency(err)
	}

	for _, f := range t.Files {
		key := model.BlobKey(s.workspaceID, testID, f.Name)
		if err := s.blob.RemoveFile(ctx, key); err != nil {
			if errors.Is(err, blob.ErrObjectNotFound) {
				continue
			}
			s.log.Warn("remove test file", zap.String("test_id", testID), zap.String("file_id", f.ID), zap.Error(err))
		}
	}

	entries, err := s.logbook.ListByTest(ctx, testID)
	if err != nil {
		return fmt.Errorf("list logbook entries: %w", err)
	}
	for _, e := range entries {
		if err := s.series.Delete(ctx, e.ID); err != nil {
			return fmt.Errorf("delete logbook point %s: %w", e.ID, err)
		}
	}
	if _, err := s.logbook.DeleteByTest(ctx, testID); err != nil {
		return fmt.Errorf("delete logbook entries: %w", err)
	}

	if err := s.tests.Delete(ctx, testID); err != nil {
		return mapRepoErr(err, "Test")
	}

	s.events.emit(ctx, model.EventTestDeleted, testID, "")
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func endSpan(span trace.Span, err *error) {
	if *err != nil {
		span.RecordError(*err)
		span.SetStatus(codes.Error, (*err).Error())
	}
	span.End()
}
