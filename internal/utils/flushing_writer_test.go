package utils_test

import (
	"bytes"
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/reposcm/internal/utils"
)

type flushRecordingWriter struct {
	bytes.Buffer
	flushCount int
}

func (writer *flushRecordingWriter) Flush() error {
	writer.flushCount++
	return nil
}

type syncingWriter struct {
	bytes.Buffer
	syncError error
}

func (writer *syncingWriter) Sync() error {
	return writer.syncError
}

func TestFlushingWriterFlushesAfterEveryWrite(testInstance *testing.T) {
	destination := &flushRecordingWriter{}
	writer := utils.NewFlushingWriter(destination)

	_, firstError := writer.Write([]byte("Fetching projects: 50%\n"))
	require.NoError(testInstance, firstError)
	_, secondError := writer.Write([]byte("Fetching projects: 100%\n"))
	require.NoError(testInstance, secondError)

	require.Equal(testInstance, 2, destination.flushCount)
	require.Equal(testInstance, "Fetching projects: 50%\nFetching projects: 100%\n", destination.String())
}

func TestFlushingWriterSyncErrors(testInstance *testing.T) {
	testCases := []struct {
		name        string
		syncError   error
		expectError bool
	}{
		{name: "sync_succeeds"},
		{name: "terminal_sync_unsupported", syncError: syscall.ENOTTY},
		{name: "pipe_sync_invalid", syncError: syscall.EINVAL},
		{name: "disk_failure_surfaces", syncError: errors.New("input/output error"), expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			writer := utils.NewFlushingWriter(&syncingWriter{syncError: testCase.syncError})
			_, writeError := writer.Write([]byte("repo sync\n"))
			if testCase.expectError {
				require.Error(testInstance, writeError)
				return
			}
			require.NoError(testInstance, writeError)
		})
	}
}

func TestNewFlushingWriterHandlesNilAndWrapped(testInstance *testing.T) {
	require.Nil(testInstance, utils.NewFlushingWriter(nil))

	wrapped := utils.NewFlushingWriter(&bytes.Buffer{})
	require.Same(testInstance, wrapped, utils.NewFlushingWriter(wrapped))
}
