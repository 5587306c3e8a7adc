// Package session drives one run of the game: it owns the model, journals
// every accepted input and every tick, and can replay a journal.
package session

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suderio/quantum-dungeon/internal/data"
	"github.com/suderio/quantum-dungeon/internal/engine"
	"github.com/suderio/quantum-dungeon/internal/parser"
	"github.com/suderio/quantum-dungeon/internal/script"
)

// Options describes how to start a session.
type Options struct {
	CatalogPath string
	// LevelPath is a level file or a level name looked up in DataDirs.
	LevelPath string
	DataDirs  []string
	Seed      int64
	Config    engine.Config
	// JournalPath is where the session is recorded. Empty disables it.
	JournalPath string
	Logger      *zap.Logger
}

// Session manages the loop of taking inputs, applying them to the model
// and persisting them.
type Session struct {
	id      string
	seed    int64
	model   *engine.Model
	journal *Journal
	logger  *zap.Logger

	// pending is the current run of equal ticks not yet journaled.
	pending TickRecord
}

// LoadCatalog reads a catalog file and compiles its scripts.
func LoadCatalog(path string, logger *zap.Logger) (*engine.Catalog, error) {
	doc, err := data.LoadCatalogFile(path)
	if err != nil {
		return nil, err
	}
	ev, err := data.NewEvaluator()
	if err != nil {
		return nil, fmt.Errorf("failed to create evaluator: %w", err)
	}
	host := script.NewHost(logger, ev)
	return engine.LoadCatalog(doc, host, ev, logger), nil
}

// New bootstraps a session from the catalog and level files in opts.
func New(opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loader := data.NewLoader(opts.DataDirs)
	catalogPath, err := loader.ResolveCatalog(opts.CatalogPath)
	if err != nil {
		return nil, err
	}
	levelPath, err := loader.ResolveLevel(opts.LevelPath)
	if err != nil {
		return nil, err
	}
	catalog, err := LoadCatalog(catalogPath, logger)
	if err != nil {
		return nil, err
	}
	level, err := data.LoadLevelFile(levelPath)
	if err != nil {
		return nil, err
	}
	model, err := engine.New(catalog, level,
		engine.WithConfig(opts.Config),
		engine.WithSeed(opts.Seed),
		engine.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start level: %w", err)
	}

	s := &Session{
		id:     uuid.NewString(),
		seed:   opts.Seed,
		model:  model,
		logger: logger.Named("session"),
	}
	if opts.JournalPath != "" {
		h := Header{
			ID:      s.id,
			Created: time.Now().UTC(),
			Seed:    opts.Seed,
			Catalog: absPath(catalogPath),
			Level:   absPath(levelPath),
			Config:  opts.Config,
		}
		if s.journal, err = CreateJournal(opts.JournalPath, h); err != nil {
			return nil, err
		}
	}
	s.logger.Info("session started",
		zap.String("id", s.id),
		zap.Int64("seed", opts.Seed),
		zap.String("level", level.Name),
		zap.Int("diagnostics", len(catalog.Diagnostics)),
	)
	return s, nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// Seed returns the seed the model was started with.
func (s *Session) Seed() int64 { return s.seed }

// Model returns the underlying model.
func (s *Session) Model() *engine.Model { return s.model }

// Execute parses a raw line and applies it.
func (s *Session) Execute(line string) (engine.Input, error) {
	in, err := parser.Parse(line)
	if err != nil {
		return nil, err
	}
	return in, s.Apply(in)
}

// Apply hands an input to the model. Only accepted inputs are journaled;
// a rejected input leaves the model unchanged.
func (s *Session) Apply(in engine.Input) error {
	if err := s.model.HandleInput(in); err != nil {
		return err
	}
	if s.journal == nil {
		return nil
	}
	if err := s.flush(); err != nil {
		return err
	}
	return s.journal.AppendInput(in)
}

// Tick advances the model by dt seconds.
func (s *Session) Tick(dt float64) error {
	s.model.Update(dt)
	if s.journal == nil {
		return nil
	}
	if s.pending.Count > 0 && s.pending.DT != dt {
		if err := s.flush(); err != nil {
			return err
		}
	}
	s.pending.DT = dt
	s.pending.Count++
	return nil
}

func (s *Session) flush() error {
	if s.pending.Count == 0 {
		return nil
	}
	run := s.pending
	s.pending = TickRecord{}
	return s.journal.AppendTick(run.DT, run.Count)
}

// Snapshot returns a read-only copy of the model.
func (s *Session) Snapshot() engine.Snapshot { return s.model.Snapshot() }

// Close writes any buffered ticks and closes the journal.
func (s *Session) Close() error {
	if s.journal == nil {
		return nil
	}
	err := s.flush()
	if cerr := s.journal.Close(); err == nil {
		err = cerr
	}
	s.journal = nil
	return err
}
