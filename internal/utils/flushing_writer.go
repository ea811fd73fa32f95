package utils

import (
	"errors"
	"io"
	"sync"
	"syscall"
)

// FlushingWriter serializes writes to a shared destination and makes each write visible immediately
// by invoking Flush or Sync when the destination supports either.
type FlushingWriter struct {
	writer io.Writer
	mutex  sync.Mutex
}

// NewFlushingWriter wraps the provided writer. Wrapping an existing FlushingWriter returns it unchanged.
func NewFlushingWriter(writer io.Writer) io.Writer {
	if writer == nil {
		return nil
	}
	if _, alreadyWrapped := writer.(*FlushingWriter); alreadyWrapped {
		return writer
	}
	return &FlushingWriter{writer: writer}
}

// Write delegates to the underlying writer and flushes it when possible.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	if flushingWriter == nil || flushingWriter.writer == nil {
		return 0, nil
	}

	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	bytesWritten, writeError := flushingWriter.writer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}

	return bytesWritten, flushingWriter.flushLocked()
}

// Sync flushes the underlying writer, satisfying zapcore.WriteSyncer.
func (flushingWriter *FlushingWriter) Sync() error {
	if flushingWriter == nil || flushingWriter.writer == nil {
		return nil
	}

	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	return flushingWriter.flushLocked()
}

func (flushingWriter *FlushingWriter) flushLocked() error {
	switch destination := flushingWriter.writer.(type) {
	case interface{ Flush() error }:
		return destination.Flush()
	case interface{ Sync() error }:
		return ignoreUnsupportedSync(destination.Sync())
	default:
		return nil
	}
}

func ignoreUnsupportedSync(syncError error) error {
	if errors.Is(syncError, syscall.EINVAL) || errors.Is(syncError, syscall.ENOTSUP) || errors.Is(syncError, syscall.ENOTTY) {
		return nil
	}
	return syncError
}
