package sink

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ErrClosed is returned when writing to a closed File.
var ErrClosed = errors.New("sink closed")

// File is a buffered, append-only output file.
type File struct {
	path   string
	f      *os.File
	w      *bufio.Writer
	closed bool
}

// Open opens path for appending, creating it if needed.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open sink %s: %w", path, err)
	}
	return &File{path: path, f: f, w: bufio.NewWriter(f)}, nil
}

// Path returns the file's path.
func (s *File) Path() string {
	return s.path
}

// Write implements io.Writer.
func (s *File) Write(p []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	return s.w.Write(p)
}

// Flush writes buffered data to the file.
func (s *File) Flush() error {
	if s.closed {
		return nil
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("flush sink %s: %w", s.path, err)
	}
	return nil
}

// Close flushes and closes the file. Later calls return nil.
func (s *File) Close() error {
	if s.closed {
		return nil
	}
	ferr := s.w.Flush()
	s.closed = true
	cerr := s.f.Close()
	if err := errors.Join(ferr, cerr); err != nil {
		return fmt.Errorf("close sink %s: %w", s.path, err)
	}
	return nil
}

// Paths names the three files of a Set.
type Paths struct {
	Results string
	Log     string
	Stats   string
}

// Set groups the output files of one run.
type Set struct {
	Results *File
	Log     *File
	Stats   *File
}

// OpenSet opens all three files. If any fails, the ones already opened are
// closed again.
func OpenSet(p Paths) (*Set, error) {
	s := &Set{}
	var err error
	if s.Results, err = Open(p.Results); err != nil {
		return nil, err
	}
	if s.Log, err = Open(p.Log); err != nil {
		_ = s.Close()
		return nil, err
	}
	if s.Stats, err = Open(p.Stats); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Logger returns a text logger writing to the log file.
func (s *Set) Logger() *slog.Logger {
	return NewLogger(s.Log)
}

// NewLogger builds the log sink's logger over w.
func NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// Close closes every open file, returning all errors joined.
func (s *Set) Close() error {
	var errs []error
	for _, f := range []*File{s.Results, s.Log, s.Stats} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
