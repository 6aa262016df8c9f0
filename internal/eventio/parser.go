// Package eventio reads log events from their JSON wire form.
package eventio

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tkingovr/logfilter/api"
)

// Parse decodes a single JSON event record. The level must be a known level
// name; a missing level is read as TRACE.
func Parse(data []byte) (*api.EventRecord, error) {
	var rec api.EventRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("invalid event record: %w", err)
	}
	return &rec, nil
}

// Reader reads JSONL event records, one per line. Blank lines are skipped.
type Reader struct {
	scanner *bufio.Scanner
	line    int
	done    bool
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024) // 10MB max event
	return &Reader{scanner: scanner}
}

// Next returns the next record together with its raw line. It returns
// io.EOF once the input is exhausted. Errors carry the line number.
func (r *Reader) Next() (*api.EventRecord, []byte, error) {
	if r.done {
		return nil, nil, io.EOF
	}
	for r.scanner.Scan() {
		r.line++
		raw := bytes.TrimSpace(r.scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		rec, err := Parse(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		return rec, append([]byte(nil), raw...), nil
	}
	r.done = true
	if err := r.scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("line %d: %w", r.line+1, err)
	}
	return nil, nil, io.EOF
}

// Line returns the number of the line last read.
func (r *Reader) Line() int { return r.line }

// ForEach calls fn for every record in r until the input is exhausted or fn
// returns an error. Parse errors are passed to onErr; if onErr returns nil
// reading continues, otherwise ForEach stops with that error.
func ForEach(r *Reader, fn func(rec *api.EventRecord, raw []byte) error, onErr func(error) error) error {
	for {
		rec, raw, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if onErr == nil {
				return err
			}
			if err := onErr(err); err != nil {
				return err
			}
			continue
		}
		if err := fn(rec, raw); err != nil {
			return err
		}
	}
}
