package session

import (
	"fmt"

	"go.uber.org/zap"
)

// ReplayOptions tune Replay.
type ReplayOptions struct {
	Logger *zap.Logger
	// Progress is called after each entry with the number applied so far.
	Progress func(done, total int)
}

// Replay rebuilds the session recorded at path by starting a fresh model
// from the header and re-applying every entry. The returned session has
// no journal of its own.
func Replay(path string, opts ReplayOptions) (*Session, error) {
	h, entries, err := ReadJournal(path)
	if err != nil {
		return nil, err
	}
	s, err := New(Options{
		CatalogPath: h.Catalog,
		LevelPath:   h.Level,
		Seed:        h.Seed,
		Config:      h.Config,
		Logger:      opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	s.id = h.ID

	for i, e := range entries {
		switch e.Type {
		case RecordInput:
			if err := s.Apply(e.Input); err != nil {
				return nil, fmt.Errorf("%w: entry %d (%s) rejected: %v", ErrCorrupt, i+1, e.Input, err)
			}
		case RecordTick:
			for n := 0; n < e.Tick.Count; n++ {
				s.model.Update(e.Tick.DT)
			}
		}
		if opts.Progress != nil {
			opts.Progress(i+1, len(entries))
		}
	}
	s.logger.Info("journal replayed", zap.String("id", s.id), zap.Int("entries", len(entries)))
	return s, nil
}
