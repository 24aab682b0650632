package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/forkmonkey/internal/domain/model"
)

// Sentinel errors returned by RepositoryClient implementations.
var (
	// ErrRepositoryNotFound indicates the requested repository does not exist
	// or is not visible with the configured credential.
	ErrRepositoryNotFound = errors.New("repository not found")

	// ErrFileNotFound indicates the requested path does not exist in the
	// repository or is not a regular file.
	ErrFileNotFound = errors.New("file not found")
)

// RepositoryClient defines the driven port for reading the fork network from
// the hosting API. Every call may fail transiently; callers decide how much of
// a failure to tolerate.
type RepositoryClient interface {
	// GetRepository fetches a repository by its owner/name full name.
	GetRepository(ctx context.Context, fullName string) (*model.RepositoryRef, error)
	// ListForks returns one page of the repository's direct forks and the
	// number of the next page, or 0 when page is the last one.
	ListForks(ctx context.Context, fullName string, page, perPage int) ([]model.RepositoryRef, int, error)
	// GetFile returns the raw bytes of the file at path on the default branch.
	GetFile(ctx context.Context, fullName, path string) ([]byte, error)
}
