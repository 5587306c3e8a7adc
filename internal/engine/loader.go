package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/suderio/quantum-dungeon/internal/data"
	"github.com/suderio/quantum-dungeon/internal/script"
)

// Kind is an immutable item kind shared by all of its instances.
type Kind struct {
	Config data.ItemConfig
	Unit   *script.Unit
}

// Name returns the kind's unique name.
func (k *Kind) Name() string { return k.Config.Name }

// Animation returns the presentation delay registered for trigger t.
func (k *Kind) Animation(t script.Trigger) (float64, bool) {
	d, ok := k.Config.Animations[string(t)]
	return d, ok && d > 0
}

// Catalog holds every loaded kind plus the collaborators that run them.
type Catalog struct {
	Host *script.Host
	Eval *data.Evaluator

	kinds map[string]*Kind
	order []string
	// Diagnostics collects script and formula errors found at load.
	// Affected kinds stay usable: a broken script leaves the kind inert,
	// a broken spawn weight keeps it out of random offers.
	Diagnostics []error
}

// LoadCatalog compiles every item kind in doc.
func LoadCatalog(doc *data.CatalogDocument, host *script.Host, eval *data.Evaluator, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{Host: host, Eval: eval, kinds: make(map[string]*Kind)}
	for _, cfg := range doc.Items {
		unit, err := host.Compile(cfg.Name, cfg.Script)
		if err != nil {
			c.Diagnostics = append(c.Diagnostics, err)
		}
		if cfg.SpawnWeight != "" && eval != nil {
			if err := eval.Compile(cfg.SpawnWeight); err != nil {
				c.Diagnostics = append(c.Diagnostics, fmt.Errorf("%s spawn_weight: %w", cfg.Name, err))
				logger.Warn("spawn weight rejected", zap.String("kind", cfg.Name), zap.Error(err))
			}
		}
		c.kinds[cfg.Name] = &Kind{Config: cfg, Unit: unit}
		c.order = append(c.order, cfg.Name)
	}
	logger.Debug("catalog loaded", zap.Int("kinds", len(c.order)), zap.Int("diagnostics", len(c.Diagnostics)))
	return c
}

// Kind looks a kind up by name.
func (c *Catalog) Kind(name string) (*Kind, bool) {
	k, ok := c.kinds[name]
	return k, ok
}

// Names lists kinds in catalog order.
func (c *Catalog) Names() []string { return append([]string(nil), c.order...) }

// WithCategory lists kinds tagged with category, in catalog order.
func (c *Catalog) WithCategory(category string) []*Kind {
	var out []*Kind
	for _, name := range c.order {
		if k := c.kinds[name]; k.Config.HasCategory(category) {
			out = append(out, k)
		}
	}
	return out
}
