package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/temirov/reposcm/internal/manifest"
	"github.com/temirov/reposcm/internal/snapshot"
)

const (
	recordNotFoundMessageConstant      = "build record not found"
	unsupportedBackendTemplateConstant = "unsupported state backend %q"
	recordLoadErrorTemplateConstant    = "load build %d: %w"
	backendFileConstant                = "file"
	backendPostgresConstant            = "postgres"
	backendMemoryConstant              = "memory"
)

// ErrRecordNotFound indicates no record exists for the requested build number.
var ErrRecordNotFound = errors.New(recordNotFoundMessageConstant)

// Backend names a Store implementation.
type Backend string

// Supported backends.
const (
	BackendFile     Backend = Backend(backendFileConstant)
	BackendPostgres Backend = Backend(backendPostgresConstant)
	BackendMemory   Backend = Backend(backendMemoryConstant)
)

// BuildRecord is the snapshot recorded by one build.
type BuildRecord struct {
	Number     int
	RecordedAt time.Time
	Snapshot   *snapshot.RepositorySnapshot
}

// Store persists build records. Build numbers start at 1 and increase by one per append.
type Store interface {
	// Append records the snapshot under the next build number.
	Append(executionContext context.Context, recordedAt time.Time, repositorySnapshot *snapshot.RepositorySnapshot) (BuildRecord, error)
	// Load returns the record of a build or ErrRecordNotFound.
	Load(executionContext context.Context, number int) (BuildRecord, error)
	// LatestNumber returns the highest recorded build number, or zero when empty.
	LatestNumber(executionContext context.Context) (int, error)
	// List returns every record, newest first.
	List(executionContext context.Context) ([]BuildRecord, error)
	Close() error
}

// Configuration selects and configures a Store.
type Configuration struct {
	Backend Backend
	// Path is the directory of the file backend.
	Path string
	// DSN is the connection string of the postgres backend.
	DSN string
}

// OpenStore constructs the configured Store.
func OpenStore(executionContext context.Context, configuration Configuration, pool *manifest.EntryPool) (Store, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(string(configuration.Backend)))) {
	case "", BackendFile:
		fileStore, fileError := NewFileStore(configuration.Path, pool)
		if fileError != nil {
			return nil, fileError
		}
		return fileStore, nil
	case BackendPostgres:
		postgresStore, postgresError := NewPostgresStore(executionContext, configuration.DSN, pool)
		if postgresError != nil {
			return nil, postgresError
		}
		return postgresStore, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf(unsupportedBackendTemplateConstant, configuration.Backend)
	}
}

// FindLastState walks back from startNumber to build 1 and returns the first
// snapshot recorded for the branch. Missing records are skipped. A nil snapshot
// means no earlier build matches.
func FindLastState(executionContext context.Context, store Store, startNumber int, branch string) (*snapshot.RepositorySnapshot, error) {
	for number := startNumber; number > 0; number-- {
		if contextError := executionContext.Err(); contextError != nil {
			return nil, contextError
		}
		record, loadError := store.Load(executionContext, number)
		if errors.Is(loadError, ErrRecordNotFound) {
			continue
		}
		if loadError != nil {
			return nil, fmt.Errorf(recordLoadErrorTemplateConstant, number, loadError)
		}
		if record.Snapshot != nil && record.Snapshot.Branch() == branch {
			return record.Snapshot, nil
		}
	}
	return nil, nil
}
