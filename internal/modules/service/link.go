package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/model"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/repo"
)

type LinkService interface {
	Add(ctx context.Context, testID, url, label string) (*model.Link, error)
	List(ctx context.Context, testID string) ([]model.Link, error)
	Delete(ctx context.Context, testID, linkID string) error
}

type linkService struct {
	tests repo.TestRepo
}

func NewLinkService(tests repo.TestRepo) LinkService {
	return &linkService{tests: tests}
}

func (s *linkService) Add(ctx context.Context, testID, url, label string) (*model.Link, error) {
	if url == "" {
		return nil, validation("url is required")
	}
	l := model.Link{ID: uuid.New().String(), URL: url, Label: label}
	if err := s.tests.PushLink(ctx, testID, l); err != nil {
		return nil, mapRepoErr(err, "Test")
	}
	return &l, nil
}

func (s *linkService) List(ctx context.Context, testID string) ([]model.Link, error) {
	t, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return nil, mapRepoErr(err, "Test")
	}
	if t.Links == nil {
		return []model.Link{}, nil
	}
	return t.Links, nil
}

func (s *linkService) Delete(ctx context.Context, testID, linkID string) error {
	removed, err := s.tests.PullLink(ctx, testID, linkID)
	if err != nil {
		return mapRepoErr(err, "Test")
	}
	if !removed {
		return notFound("Link")
	}
	return nil
}
