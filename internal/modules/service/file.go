package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/infra/blob"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/model"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/repo"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/pkg/signedurl"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/pkg/utils/path"
	"go.uber.org/zap"
)

// UploadPath is the route a grant is signed for.
func UploadPath(testID string) string {
	return "/api/v1/tests/" + testID + "/files/upload"
}

func DownloadPath(testID, fileID string) string {
	return "/api/v1/tests/" + testID + "/files/" + fileID + "/download"
}

// httpsURL builds an absolute URL on host. The scheme is always https
// regardless of how the request reached us.
func httpsURL(host, p string, q url.Values) string {
	u := url.URL{Scheme: "https", Host: host, Path: p}
	if q != nil {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

type FileOptions struct {
	WorkspaceID  string
	SecretKey    string
	SignatureTTL time.Duration
}

type UploadInput struct {
	TestID    string
	Expires   int64
	Signature string
	Filename  string
	Body      []byte
	Host      string
}

type FileService interface {
	IssueGrant(ctx context.Context, testID, filename, host string) (string, error)
	AcceptUpload(ctx context.Context, in UploadInput) (*model.File, error)
	ListFiles(ctx context.Context, testID string) ([]model.File, error)
	GetFile(ctx context.Context, testID, fileID string) (*model.File, error)
	Download(ctx context.Context, testID, fileID string) (*model.File, []byte, error)
	Delete(ctx context.Context, testID, fileID string) error
}

type fileService struct {
	tests  repo.TestRepo
	blob   BlobStore
	opts   FileOptions
	events emitter
	log    *zap.Logger
	clock  func() time.Time
}

func NewFileService(tests repo.TestRepo, blobStore BlobStore, opts FileOptions, pub EventPublisher, log *zap.Logger) FileService {
	return &fileService{
		tests:  tests,
		blob:   blobStore,
		opts:   opts,
		events: emitter{pub: pub, log: log},
		log:    log,
		clock:  time.Now,
	}
}

func (s *fileService) IssueGrant(ctx context.Context, testID, filename, host string) (string, error) {
	if err := path.ValidateFilename(filename); err != nil {
		return "", validation(err.Error())
	}

	exists, err := s.tests.Exists(ctx, testID)
	if err != nil {
		return "", fmt.Errorf("check test existence: %w", err)
	}
	if !exists {
		return "", notFound("Test")
	}

	expires := s.clock().Unix() + int64(s.opts.SignatureTTL/time.Second)
	p := UploadPath(testID)
	q := signedurl.Query(expires, filename)
	q.Set("signature", signedurl.Sign(p, expires, s.opts.SecretKey, filename))
	return httpsURL(host, p, q), nil
}

func (s *fileService) AcceptUpload(ctx context.Context, in UploadInput) (*model.File, error) {
	if !signedurl.VerifyAt(s.clock(), in.Signature, UploadPath(in.TestID), in.Expires, s.opts.SecretKey, in.Filename) {
		return nil, ErrInvalidSignature
	}

	exists, err := s.tests.Exists(ctx, in.TestID)
	if err != nil {
		return nil, fmt.Errorf("check test existence: %w", err)
	}
	if !exists {
		return nil, notFound("Test")
	}
	if err := path.ValidateFilename(in.Filename); err != nil {
		return nil, validation(err.Error())
	}

	meta, err := s.blob.WriteBytes(ctx, model.BlobKey(s.opts.WorkspaceID, in.TestID, in.Filename), in.Body)
	if err != nil {
		return nil, fmt.Errorf("write blob: %w", err)
	}

	fileID := uuid.New().String()
	f := model.File{
		ID:         fileID,
		Name:       in.Filename,
		URL:        httpsURL(in.Host, DownloadPath(in.TestID, fileID), nil),
		Size:       int64(len(in.Body)),
		MIME:       meta.MIME,
		SHA256:     meta.SHA256,
		ETag:       meta.ETag,
		UploadedAt: now(),
	}
	if err := s.tests.SetFile(ctx, in.TestID, f); err != nil {
		// the blob stays; a later upload of the same name overwrites it
		return nil, mapRepoErr(err, "Test")
	}

	s.events.emit(ctx, model.EventFileUploaded, in.TestID, fileID)
	return &f, nil
}

func (s *fileService) ListFiles(ctx context.Context, testID string) ([]model.File, error) {
	t, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return nil, mapRepoErr(err, "Test")
	}
	files := make([]model.File, 0, len(t.Files))
	for _, f := range t.Files {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool {
		if !files[i].UploadedAt.Equal(files[j].UploadedAt) {
			return files[i].UploadedAt.Before(files[j].UploadedAt)
		}
		return files[i].ID < files[j].ID
	})
	return files, nil
}

func (s *fileService) GetFile(ctx context.Context, testID, fileID string) (*model.File, error) {
	t, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return nil, mapRepoErr(err, "Test")
	}
	f, ok := t.Files[fileID]
	if !ok {
		return nil, notFound("File")
	}
	return &f, nil
}

func (s *fileService) Download(ctx context.Context, testID, fileID string) (*model.File, []byte, error) {
	f, err := s.GetFile(ctx, testID, fileID)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.blob.ReadBytes(ctx, model.BlobKey(s.opts.WorkspaceID, testID, f.Name))
	if err != nil {
		if errors.Is(err, blob.ErrObjectNotFound) {
			return nil, nil, &kindError{kind: ErrNotFound, msg: "File not found in storage"}
		}
		return nil, nil, fmt.Errorf("read blob: %w", err)
	}
	return f, data, nil
}

func (s *fileService) Delete(ctx context.Context, testID, fileID string) error {
	f, err := s.GetFile(ctx, testID, fileID)
	if err != nil {
		return err
	}

	if err := s.blob.RemoveFile(ctx, model.BlobKey(s.opts.WorkspaceID, testID, f.Name)); err != nil {
		if !errors.Is(err, blob.ErrObjectNotFound) {
			return fmt.Errorf("remove blob: %w", err)
		}
		s.log.Debug("blob already absent", zap.String("test_id", testID), zap.String("file_id", fileID))
	}

	removed, err := s.tests.UnsetFile(ctx, testID, fileID)
	if err != nil {
		return mapRepoErr(err, "Test")
	}
	if !removed {
		return notFound("File")
	}

	s.events.emit(ctx, model.EventFileDeleted, testID, fileID)
	return nil
}
