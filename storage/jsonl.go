// Package storage provides telemetry input and recommendation persistence:
// a JSONL reader that groups lap records into field-per-lap batches for
// replay, and (in the sqlite subpackage) a durable store for tick results.
package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/racelab/pitwall/core"
)

// JSONLSource reads lap records from a JSON-lines stream, one record per
// line, and yields them grouped by lap number. Records must be sorted by lap;
// a lap number going backwards is treated as corrupt input.
type JSONLSource struct {
	r       io.Closer
	scanner *bufio.Scanner
	line    int
	pending *core.LapRecord
	lastLap int
	done    bool
}

// OpenJSONL opens a telemetry file for replay.
func OpenJSONL(path string) (*JSONLSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open telemetry: %w", err)
	}
	return NewJSONLSource(f), nil
}

// NewJSONLSource wraps an open stream. The source closes r at EOF if it
// implements io.Closer.
func NewJSONLSource(r io.Reader) *JSONLSource {
	s := &JSONLSource{scanner: bufio.NewScanner(r)}
	s.scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	if c, ok := r.(io.Closer); ok {
		s.r = c
	}
	return s
}

// Next returns every record for the next lap, or io.EOF after the last lap.
func (s *JSONLSource) Next(ctx context.Context) ([]core.LapRecord, error) {
	if s.done {
		return nil, io.EOF
	}

	var field []core.LapRecord
	if s.pending != nil {
		field = append(field, *s.pending)
		s.lastLap = s.pending.Lap
		s.pending = nil
	}

	for s.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.line++
		line := s.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec core.LapRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("telemetry line %d: %w", s.line, err)
		}

		if len(field) == 0 {
			s.lastLap = rec.Lap
			field = append(field, rec)
			continue
		}
		if rec.Lap != s.lastLap {
			if rec.Lap < s.lastLap {
				return nil, fmt.Errorf("telemetry line %d: lap %d after lap %d", s.line, rec.Lap, s.lastLap)
			}
			// First record of the next lap; hold it for the next call.
			s.pending = &rec
			return field, nil
		}
		field = append(field, rec)
	}

	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read telemetry: %w", err)
	}
	s.done = true
	s.close()
	if len(field) == 0 {
		return nil, io.EOF
	}
	return field, nil
}

func (s *JSONLSource) close() {
	if s.r != nil {
		s.r.Close()
		s.r = nil
	}
}
