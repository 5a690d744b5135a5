package trace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrClosed is returned by Export after Close.
var ErrClosed = errors.New("trace exporter closed")

const (
	defaultMaxSize       = 10 * 1024 * 1024
	defaultRetainedFiles = 5
)

// FileExporter writes one session's operation traces to a JSON Lines file.
//
// Each exporter starts a fresh file: traces left by an earlier session are
// shifted to path.1, path.2 and so on. Within a session the file is also
// rotated before a record would push it past the size limit, so a record is
// never split across files. At most the configured number of older files is
// kept.
type FileExporter struct {
	path     string
	maxSize  int64
	retained int

	mu      sync.Mutex
	file    *os.File
	written int64
	closed  bool
}

// WithMaxSize sets the size at which the current file is rotated (default 10MB).
func WithMaxSize(bytes int64) FileExporterOption {
	return func(fe *FileExporter) { fe.maxSize = bytes }
}

// WithRetainedFiles sets how many rotated files are kept (default 5).
func WithRetainedFiles(n int) FileExporterOption {
	return func(fe *FileExporter) { fe.retained = n }
}

// NewFileExporter opens a session trace file at path. An empty path disables
// tracing and returns a NoopExporter.
func NewFileExporter(path string, opts ...FileExporterOption) (Exporter, error) {
	if path == "" {
		return NoopExporter{}, nil
	}

	fe := &FileExporter{path: path, maxSize: defaultMaxSize, retained: defaultRetainedFiles}
	for _, opt := range opts {
		opt(fe)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create trace directory: %w", err)
	}
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		if err := fe.shift(); err != nil {
			return nil, err
		}
	}
	if err := fe.open(); err != nil {
		return nil, err
	}
	return fe, nil
}

// Export validates record and appends it as one line.
func (fe *FileExporter) Export(ctx context.Context, record *TraceRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode trace record: %w", err)
	}
	line = append(line, '\n')

	fe.mu.Lock()
	defer fe.mu.Unlock()

	if fe.closed {
		return ErrClosed
	}
	if fe.written > 0 && fe.written+int64(len(line)) > fe.maxSize {
		if err := fe.rotate(); err != nil {
			return err
		}
	}

	n, err := fe.file.Write(line)
	fe.written += int64(n)
	if err != nil {
		return fmt.Errorf("failed to write trace record: %w", err)
	}
	return nil
}

// Close syncs and closes the session file. Further calls are no-ops.
func (fe *FileExporter) Close() error {
	fe.mu.Lock()
	defer fe.mu.Unlock()

	if fe.closed {
		return nil
	}
	fe.closed = true

	syncErr := fe.file.Sync()
	closeErr := fe.file.Close()
	if syncErr != nil {
		return fmt.Errorf("failed to sync trace file: %w", syncErr)
	}
	return closeErr
}

// rotate closes the current file, shifts it out and opens a new one.
// Called with fe.mu held.
func (fe *FileExporter) rotate() error {
	if err := fe.file.Close(); err != nil {
		return fmt.Errorf("failed to close trace file for rotation: %w", err)
	}
	if err := fe.shift(); err != nil {
		return err
	}
	return fe.open()
}

// shift renames path.N-1 to path.N down to path to path.1, dropping whatever
// falls past the retention limit.
func (fe *FileExporter) shift() error {
	if fe.retained < 1 {
		if err := os.Remove(fe.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to discard trace file: %w", err)
		}
		return nil
	}

	if err := os.Remove(fe.rotatedPath(fe.retained)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove oldest trace file: %w", err)
	}
	for i := fe.retained - 1; i >= 0; i-- {
		from := fe.rotatedPath(i)
		if err := os.Rename(from, fe.rotatedPath(i+1)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to rotate %s: %w", from, err)
		}
	}
	return nil
}

func (fe *FileExporter) open() error {
	f, err := os.OpenFile(fe.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	fe.file = f
	fe.written = 0
	return nil
}

// rotatedPath returns the i-th rotated file; 0 is the live file.
func (fe *FileExporter) rotatedPath(i int) string {
	if i == 0 {
		return fe.path
	}
	return fmt.Sprintf("%s.%d", fe.path, i)
}
