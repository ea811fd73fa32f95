package history

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/temirov/reposcm/internal/manifest"
	"github.com/temirov/reposcm/internal/snapshot"
)

const (
	recordFilePrefixConstant             = "build-"
	recordFileSuffixConstant             = ".yaml"
	recordFileNameTemplateConstant       = "build-%08d.yaml"
	temporaryFilePatternConstant         = ".build-*.tmp"
	stateDirectoryPermissionsConstant    = 0o755
	recordFilePermissionsConstant        = 0o644
	fileStorePathRequiredMessageConstant = "state directory path is required"
	createDirectoryErrorTemplateConstant = "create state directory %s: %w"
	readRecordErrorTemplateConstant      = "read build record %s: %w"
	decodeRecordErrorTemplateConstant    = "decode build record %s: %w"
	encodeRecordErrorTemplateConstant    = "encode build record %d: %w"
	writeRecordErrorTemplateConstant     = "write build record %s: %w"
	listRecordsErrorTemplateConstant     = "list build records in %s: %w"
)

// ErrStatePathRequired indicates the file store was configured without a directory.
var ErrStatePathRequired = errors.New(fileStorePathRequiredMessageConstant)

type fileRecord struct {
	Number     int             `yaml:"number"`
	RecordedAt time.Time       `yaml:"recorded_at"`
	State      snapshot.Record `yaml:"state"`
}

// FileStore keeps one YAML document per build in a directory.
type FileStore struct {
	directory string
	pool      *manifest.EntryPool
	mutex     sync.Mutex
}

// NewFileStore creates the directory when needed and constructs a FileStore.
func NewFileStore(directory string, pool *manifest.EntryPool) (*FileStore, error) {
	if len(strings.TrimSpace(directory)) == 0 {
		return nil, ErrStatePathRequired
	}
	if directoryError := os.MkdirAll(directory, stateDirectoryPermissionsConstant); directoryError != nil {
		return nil, fmt.Errorf(createDirectoryErrorTemplateConstant, directory, directoryError)
	}
	return &FileStore{directory: directory, pool: pool}, nil
}

// Append writes the snapshot under the next build number. The document is
// written to a temporary file and renamed into place.
func (store *FileStore) Append(executionContext context.Context, recordedAt time.Time, repositorySnapshot *snapshot.RepositorySnapshot) (BuildRecord, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	numbers, listError := store.recordNumbers()
	if listError != nil {
		return BuildRecord{}, listError
	}
	nextNumber := 1
	if len(numbers) > 0 {
		nextNumber = numbers[len(numbers)-1] + 1
	}

	encodedRecord, encodeError := yaml.Marshal(fileRecord{
		Number:     nextNumber,
		RecordedAt: recordedAt.UTC(),
		State:      repositorySnapshot.Record(),
	})
	if encodeError != nil {
		return BuildRecord{}, fmt.Errorf(encodeRecordErrorTemplateConstant, nextNumber, encodeError)
	}

	recordPath := store.recordPath(nextNumber)
	if writeError := writeFileAtomically(store.directory, recordPath, encodedRecord); writeError != nil {
		return BuildRecord{}, fmt.Errorf(writeRecordErrorTemplateConstant, recordPath, writeError)
	}

	return BuildRecord{Number: nextNumber, RecordedAt: recordedAt.UTC(), Snapshot: repositorySnapshot}, nil
}

// Load reads the record of a build.
func (store *FileStore) Load(executionContext context.Context, number int) (BuildRecord, error) {
	recordPath := store.recordPath(number)
	encodedRecord, readError := os.ReadFile(recordPath)
	if errors.Is(readError, fs.ErrNotExist) {
		return BuildRecord{}, ErrRecordNotFound
	}
	if readError != nil {
		return BuildRecord{}, fmt.Errorf(readRecordErrorTemplateConstant, recordPath, readError)
	}

	var decodedRecord fileRecord
	if decodeError := yaml.Unmarshal(encodedRecord, &decodedRecord); decodeError != nil {
		return BuildRecord{}, fmt.Errorf(decodeRecordErrorTemplateConstant, recordPath, decodeError)
	}

	return BuildRecord{
		Number:     number,
		RecordedAt: decodedRecord.RecordedAt,
		Snapshot:   snapshot.Restore(decodedRecord.State, store.pool),
	}, nil
}

// LatestNumber returns the highest build number found in the directory.
func (store *FileStore) LatestNumber(executionContext context.Context) (int, error) {
	numbers, listError := store.recordNumbers()
	if listError != nil {
		return 0, listError
	}
	if len(numbers) == 0 {
		return 0, nil
	}
	return numbers[len(numbers)-1], nil
}

// List loads every record, newest first.
func (store *FileStore) List(executionContext context.Context) ([]BuildRecord, error) {
	numbers, listError := store.recordNumbers()
	if listError != nil {
		return nil, listError
	}

	records := make([]BuildRecord, 0, len(numbers))
	for index := len(numbers) - 1; index >= 0; index-- {
		record, loadError := store.Load(executionContext, numbers[index])
		if loadError != nil {
			return nil, loadError
		}
		records = append(records, record)
	}
	return records, nil
}

// Close is a no-op.
func (store *FileStore) Close() error {
	return nil
}

func (store *FileStore) recordPath(number int) string {
	return filepath.Join(store.directory, fmt.Sprintf(recordFileNameTemplateConstant, number))
}

func (store *FileStore) recordNumbers() ([]int, error) {
	directoryEntries, readError := os.ReadDir(store.directory)
	if readError != nil {
		return nil, fmt.Errorf(listRecordsErrorTemplateConstant, store.directory, readError)
	}

	numbers := make([]int, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		name := directoryEntry.Name()
		if directoryEntry.IsDir() || !strings.HasPrefix(name, recordFilePrefixConstant) || !strings.HasSuffix(name, recordFileSuffixConstant) {
			continue
		}
		number, parseError := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, recordFilePrefixConstant), recordFileSuffixConstant))
		if parseError != nil || number < 1 {
			continue
		}
		numbers = append(numbers, number)
	}
	sort.Ints(numbers)
	return numbers, nil
}

func writeFileAtomically(directory string, targetPath string, content []byte) error {
	temporaryFile, createError := os.CreateTemp(directory, temporaryFilePatternConstant)
	if createError != nil {
		return createError
	}
	temporaryPath := temporaryFile.Name()

	if _, writeError := temporaryFile.Write(content); writeError != nil {
		_ = temporaryFile.Close()
		_ = os.Remove(temporaryPath)
		return writeError
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		_ = os.Remove(temporaryPath)
		return closeError
	}
	if chmodError := os.Chmod(temporaryPath, recordFilePermissionsConstant); chmodError != nil {
		_ = os.Remove(temporaryPath)
		return chmodError
	}
	if renameError := os.Rename(temporaryPath, targetPath); renameError != nil {
		_ = os.Remove(temporaryPath)
		return renameError
	}
	return nil
}
