package session

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/suderio/quantum-dungeon/internal/engine"
	"github.com/suderio/quantum-dungeon/internal/parser"
)

// Record types written to the journal.
const (
	RecordHeader = "header"
	RecordInput  = "input"
	RecordTick   = "tick"
)

// ErrCorrupt is returned for journals that cannot be replayed.
var ErrCorrupt = errors.New("corrupt journal")

// Record serializes one journal line to JSONL.
type Record struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Header is always the first record. It carries everything needed to
// rebuild the starting model.
type Header struct {
	ID      string        `json:"id"`
	Created time.Time     `json:"created"`
	Seed    int64         `json:"seed"`
	Catalog string        `json:"catalog"`
	Level   string        `json:"level"`
	Config  engine.Config `json:"config"`
}

// InputRecord is an accepted input in its canonical text form.
type InputRecord struct {
	Line string `json:"line"`
}

// TickRecord is a run of Count updates of DT seconds each.
type TickRecord struct {
	DT    float64 `json:"dt"`
	Count int     `json:"count"`
}

// Entry is a decoded journal line after the header.
type Entry struct {
	Type  string
	Input engine.Input
	Tick  TickRecord
}

// Journal handles append-only storage of a session as JSONL.
type Journal struct {
	file *os.File
}

// CreateJournal creates (or truncates) the journal at path and writes h.
func CreateJournal(path string, h Header) (*Journal, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	j := &Journal{file: file}
	if err := j.append(RecordHeader, h); err != nil {
		file.Close()
		return nil, err
	}
	return j, nil
}

// AppendInput records an accepted input.
func (j *Journal) AppendInput(in engine.Input) error {
	return j.append(RecordInput, InputRecord{Line: in.String()})
}

// AppendTick records n updates of dt seconds.
func (j *Journal) AppendTick(dt float64, n int) error {
	return j.append(RecordTick, TickRecord{DT: dt, Count: n})
}

func (j *Journal) append(typ string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s record: %w", typ, err)
	}
	line, err := json.Marshal(Record{Type: typ, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if _, err := j.file.Write(append(line, '\n')); err != nil {
		return err
	}
	return j.file.Sync()
}

// Close flushes and closes the underlying file.
func (j *Journal) Close() error {
	return j.file.Close()
}

// ReadJournal loads the header and every entry of a journal.
func ReadJournal(path string) (*Header, []Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer file.Close()

	var (
		header  *Header
		entries []Entry
		lineNo  int
	)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lineNo++
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, nil, fmt.Errorf("%w: line %d: %v", ErrCorrupt, lineNo, err)
		}
		if header == nil {
			if rec.Type != RecordHeader {
				return nil, nil, fmt.Errorf("%w: line %d: expected header, got %q", ErrCorrupt, lineNo, rec.Type)
			}
			header = &Header{}
			if err := json.Unmarshal(rec.Data, header); err != nil {
				return nil, nil, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
			}
			continue
		}
		e, err := decodeEntry(rec)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: line %d: %v", ErrCorrupt, lineNo, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	if header == nil {
		return nil, nil, fmt.Errorf("%w: empty journal", ErrCorrupt)
	}
	return header, entries, nil
}

// decodeEntry reconstructs an entry from its type discriminator and data.
func decodeEntry(rec Record) (Entry, error) {
	switch rec.Type {
	case RecordInput:
		var in InputRecord
		if err := json.Unmarshal(rec.Data, &in); err != nil {
			return Entry{}, err
		}
		parsed, err := parser.Parse(in.Line)
		if err != nil {
			return Entry{}, err
		}
		return Entry{Type: RecordInput, Input: parsed}, nil
	case RecordTick:
		var t TickRecord
		if err := json.Unmarshal(rec.Data, &t); err != nil {
			return Entry{}, err
		}
		if t.Count <= 0 || t.DT < 0 {
			return Entry{}, fmt.Errorf("bad tick run %+v", t)
		}
		return Entry{Type: RecordTick, Tick: t}, nil
	}
	return Entry{}, fmt.Errorf("unknown record type: %s", rec.Type)
}
