package service

import (
	"errors"

	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/infra/httpclient"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/repo"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("already exists")
	ErrValidation       = errors.New("validation failed")
	ErrInvalidSignature = errors.New("Invalid signature")
)

// kindError carries a client-facing message and matches one of the
// sentinels above through errors.Is.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Is(target error) bool { return target == e.kind }

// notFound yields e.g. "Test not found".
func notFound(resource string) error {
	return &kindError{kind: ErrNotFound, msg: resource + " not found"}
}

func conflict(msg string) error {
	return &kindError{kind: ErrConflict, msg: msg}
}

func validation(msg string) error {
	return &kindError{kind: ErrValidation, msg: msg}
}

// mapRepoErr turns a repo miss into a NotFound for resource.
func mapRepoErr(err error, resource string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return notFound(resource)
	}
	return err
}

// FailedDependencyError reports a rejected or unreachable Configuration API
// call. StatusCode is zero when no response was received.
type FailedDependencyError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *FailedDependencyError) Error() string { return e.Err.Error() }

func (e *FailedDependencyError) Unwrap() error { return e.Err }

func failedDependency(err error) error {
	fe := &FailedDependencyError{Err: err}
	var up *httpclient.UpstreamError
	if errors.As(err, &up) {
		fe.StatusCode = up.StatusCode
		fe.Body = up.Body
	}
	return fe
}
