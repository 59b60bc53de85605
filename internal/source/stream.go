package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/roach88/naiveq22/internal/tuple"
)

// maxLineBytes bounds a single record. TPC-H lines are well under 1 KiB.
const maxLineBytes = 1 << 20

// Stream decodes one relation's records from a reader, line by line.
type Stream struct {
	name     string
	relation tuple.Relation
	scanner  *bufio.Scanner
	closer   io.Closer
	line     int
}

// NewStream reads rel records from r. name is used in error messages.
func NewStream(name string, rel tuple.Relation, r io.Reader) *Stream {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	s := &Stream{name: name, relation: rel, scanner: sc}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// OpenStream opens a .tbl file of rel records.
func OpenStream(path string, rel tuple.Relation) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s stream: %w", rel, err)
	}
	return NewStream(path, rel, f), nil
}

// Relation reports which relation the stream carries.
func (s *Stream) Relation() tuple.Relation {
	return s.relation
}

// Next decodes the next non-blank line.
func (s *Stream) Next() (tuple.Event, error) {
	for s.scanner.Scan() {
		s.line++
		text := s.scanner.Text()
		if len(text) > 0 && text[len(text)-1] == '\r' {
			text = text[:len(text)-1]
		}
		if text == "" {
			continue
		}
		ev, err := DecodeEvent(s.relation, text)
		if err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				de.Stream = s.name
				de.Line = s.line
				return nil, de
			}
			return nil, fmt.Errorf("%s:%d: %w", s.name, s.line, err)
		}
		return ev, nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, &DecodeError{Code: ErrCodeRead, Stream: s.name, Line: s.line, Err: err}
	}
	return nil, io.EOF
}

// Close releases the underlying reader if it is closable. Safe to call
// more than once.
func (s *Stream) Close() error {
	if s.closer == nil {
		return nil
	}
	c := s.closer
	s.closer = nil
	return c.Close()
}
