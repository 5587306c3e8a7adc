package data

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader handles reading catalog and level files from the data layer.
type Loader struct {
	dataDirs []string
}

// NewLoader initializes a Loader with the given data directory fallback hierarchy.
func NewLoader(dataDirs []string) *Loader {
	return &Loader{
		dataDirs: dataDirs,
	}
}

// LoadCatalog reads items.yaml from the first data directory that has one.
func (l *Loader) LoadCatalog() (*CatalogDocument, error) {
	path, err := l.find("items.yaml")
	if err != nil {
		return nil, err
	}
	return LoadCatalogFile(path)
}

// LoadLevel reads levels/<name>.yaml by searching the data directories sequentially.
func (l *Loader) LoadLevel(name string) (*LevelConfig, error) {
	path, err := l.LevelPath(name)
	if err != nil {
		return nil, err
	}
	return LoadLevelFile(path)
}

// LevelPath locates the file of a level given by name. "First Room" is
// looked up as levels/first-room.yaml.
func (l *Loader) LevelPath(name string) (string, error) {
	dashName := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
	return l.find(filepath.Join("levels", fmt.Sprintf("%s.yaml", dashName)))
}

// ResolveLevel accepts either a path to a level file or a level name.
func (l *Loader) ResolveLevel(ref string) (string, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return ref, nil
	}
	return l.LevelPath(strings.TrimSuffix(filepath.Base(ref), ".yaml"))
}

// ResolveCatalog returns ref, or the first items.yaml in the data
// directories when ref is empty.
func (l *Loader) ResolveCatalog(ref string) (string, error) {
	if ref != "" {
		return ref, nil
	}
	return l.find("items.yaml")
}

func (l *Loader) find(ref string) (string, error) {
	for _, dir := range l.dataDirs {
		path := filepath.Join(dir, ref)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("could not find or open reference %s in any available data directory", ref)
}

// LoadCatalogFile reads and validates an item catalog YAML file.
func LoadCatalogFile(path string) (*CatalogDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	doc, err := ParseCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog %s: %w", path, err)
	}
	return doc, nil
}

// ParseCatalog decodes catalog YAML and checks that item names are unique.
func ParseCatalog(raw []byte) (*CatalogDocument, error) {
	var doc CatalogDocument
	if err := yaml.NewDecoder(bytes.NewReader(raw)).Decode(&doc); err != nil {
		return nil, err
	}
	return normalizeCatalog(&doc)
}

// LoadLevelFile reads and validates a level YAML file.
func LoadLevelFile(path string) (*LevelConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open level %s: %w", path, err)
	}
	lvl, err := ParseLevel(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode level %s: %w", path, err)
	}
	return lvl, nil
}

// ParseLevel decodes level YAML and fills defaults.
func ParseLevel(raw []byte) (*LevelConfig, error) {
	var lvl LevelConfig
	if err := yaml.NewDecoder(bytes.NewReader(raw)).Decode(&lvl); err != nil {
		return nil, err
	}
	return normalizeLevel(&lvl)
}

func normalizeCatalog(doc *CatalogDocument) (*CatalogDocument, error) {
	seen := make(map[string]bool, len(doc.Items))
	for i := range doc.Items {
		item := &doc.Items[i]
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			return nil, fmt.Errorf("item #%d has no name", i+1)
		}
		if seen[item.Name] {
			return nil, fmt.Errorf("duplicate item name %q", item.Name)
		}
		seen[item.Name] = true

		// Ensure all maps are initialized
		if item.Stats == nil {
			item.Stats = make(Stats)
		}
		if item.Animations == nil {
			item.Animations = make(map[string]float64)
		}
		if item.Categories == nil {
			item.Categories = make([]string, 0)
		}
	}
	return doc, nil
}

func normalizeLevel(lvl *LevelConfig) (*LevelConfig, error) {
	if len(lvl.Tiles) == 0 && (lvl.Width <= 0 || lvl.Height <= 0) {
		return nil, fmt.Errorf("level %q needs tiles or a positive width and height", lvl.Name)
	}
	if lvl.PlayerHealth <= 0 {
		lvl.PlayerHealth = 10
	}
	if !lvl.Grid().Exists(lvl.PlayerStart) {
		return nil, fmt.Errorf("level %q: player start %v is not a tile", lvl.Name, lvl.PlayerStart)
	}
	return lvl, nil
}
