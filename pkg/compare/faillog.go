package compare

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FailureLog appends failing fixture paths to a file, one per line. The
// file is never truncated. Safe for concurrent use.
type FailureLog struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
}

// OpenFailureLog opens path for appending, creating it and its directory.
func OpenFailureLog(path string) (*FailureLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open failure log: %w", err)
	}
	return &FailureLog{file: f, writer: bufio.NewWriter(f)}, nil
}

// Append records one failing fixture path and flushes it to disk.
func (l *FailureLog) Append(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.writer.WriteString(path + "\n"); err != nil {
		return fmt.Errorf("write failure log: %w", err)
	}
	if err := l.writer.Flush(); err != nil {
		return fmt.Errorf("flush failure log: %w", err)
	}
	return nil
}

// Close flushes and closes the log.
func (l *FailureLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.writer.Flush(); err != nil {
		return err
	}
	return l.file.Close()
}
