package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/stride/internal/ports"
	"github.com/google/uuid"
)

// Logger writes component-tagged lines to the per-process log file
// <dir>/<session-id>-stride.log. A nil *Logger discards everything.
type Logger struct {
	sessionID string
	component string
	file      *os.File
	logger    *log.Logger
	mu        *sync.Mutex
	logPath   string
	closeOnce *sync.Once
}

var _ ports.Logger = (*Logger)(nil)

var (
	sessionID     string
	sessionIDOnce sync.Once

	filesMu sync.Mutex
	files   = map[string]*os.File{}
)

// SessionID identifies this process in log file names.
func SessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

// New opens (or shares) the session log file under dir. When the file cannot
// be opened a stderr logger is returned together with the error.
func New(dir, component string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return newFallback(component, fmt.Errorf("create log directory: %w", err))
	}

	logPath := filepath.Join(dir, fmt.Sprintf("%s-stride.log", SessionID()))
	file, err := openShared(logPath)
	if err != nil {
		return newFallback(component, fmt.Errorf("open log file: %w", err))
	}

	return &Logger{
		sessionID: SessionID(),
		component: component,
		file:      file,
		logger:    log.New(file, "", 0),
		mu:        &sync.Mutex{},
		logPath:   logPath,
		closeOnce: &sync.Once{},
	}, nil
}

// NewWriter logs to w. Used by tests and by commands that want stderr output.
func NewWriter(w io.Writer, component string) *Logger {
	return &Logger{
		sessionID: SessionID(),
		component: component,
		logger:    log.New(w, "", 0),
		mu:        &sync.Mutex{},
		closeOnce: &sync.Once{},
	}
}

func newFallback(component string, cause error) (*Logger, error) {
	l := NewWriter(os.Stderr, component)
	l.Warnf("file logging unavailable, using stderr: %v", cause)
	return l, cause
}

func openShared(path string) (*os.File, error) {
	filesMu.Lock()
	defer filesMu.Unlock()

	if f, ok := files[path]; ok {
		return f, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, err
	}
	files[path] = f
	return f, nil
}

// With returns a logger for another component sharing the same output.
func (l *Logger) With(component string) *Logger {
	if l == nil {
		return nil
	}

	clone := *l
	clone.component = component
	return &clone
}

func (l *Logger) write(level, format string, v ...any) {
	if l == nil || l.logger == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	l.logger.Printf("[%s] [%s] [%s] %s", timestamp, l.component, level, fmt.Sprintf(format, v...))
}

func (l *Logger) Debugf(format string, v ...any) { l.write("DEBUG", format, v...) }
func (l *Logger) Infof(format string, v ...any)  { l.write("INFO", format, v...) }
func (l *Logger) Warnf(format string, v ...any)  { l.write("WARN", format, v...) }
func (l *Logger) Errorf(format string, v ...any) { l.write("ERROR", format, v...) }

func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.logPath
}

// Close releases the shared log file. Safe to call more than once.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	var err error
	l.closeOnce.Do(func() {
		filesMu.Lock()
		defer filesMu.Unlock()

		if files[l.logPath] == l.file {
			delete(files, l.logPath)
		}
		err = l.file.Close()
	})
	return err
}
