package bulkdata

import (
	"bufio"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/idyllic-ai/trademark-indexer/internal/logger"
)

// DefaultRecordTag delimits one application record in the bulk XML
const DefaultRecordTag = "case-file"

// splitter states
const (
	stateWaiting = iota
	stateSaving
)

// Splitter cuts a bulk XML stream into individual record fragments without
// loading the whole file into memory. It reads line by line: outside a record
// it discards lines until one contains the opening tag, then accumulates
// lines until one contains the closing tag and emits the fragment. The
// sequence is finite, lazy and non-restartable.
type Splitter struct {
	scanner  *bufio.Scanner
	openTag  string
	closeTag string
	state    int
	current  strings.Builder
	source   string
}

// NewSplitter creates a splitter over r emitting fragments delimited by tag.
// source names the stream for log traceability.
func NewSplitter(r io.Reader, tag string, source string) *Splitter {
	if tag == "" {
		tag = DefaultRecordTag
	}

	scanner := bufio.NewScanner(r)
	// Statement texts can make individual lines large
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	return &Splitter{
		scanner:  scanner,
		openTag:  "<" + tag + ">",
		closeTag: "</" + tag + ">",
		state:    stateWaiting,
		source:   source,
	}
}

// Next returns the next complete record fragment. It returns io.EOF when the
// stream is exhausted. A record whose closing tag never arrives is dropped
// with a warning rather than emitted truncated.
func (s *Splitter) Next() (string, error) {
	for s.scanner.Scan() {
		line := s.scanner.Text()

		switch s.state {
		case stateWaiting:
			if strings.Contains(line, s.openTag) {
				s.current.WriteString(line)
				s.current.WriteByte('\n')
				s.state = stateSaving
			}
		case stateSaving:
			s.current.WriteString(line)
			s.current.WriteByte('\n')
			if strings.Contains(line, s.closeTag) {
				record := s.current.String()
				s.current.Reset()
				s.state = stateWaiting
				return record, nil
			}
		}
	}

	if err := s.scanner.Err(); err != nil {
		return "", err
	}

	if s.state == stateSaving {
		logger.Warn("Dropping truncated trailing record",
			zap.String("file", s.source),
			zap.Int("bytes", s.current.Len()),
		)
		s.current.Reset()
		s.state = stateWaiting
	}

	return "", io.EOF
}
