// Package catalog indexes vendor-bundled slicer profiles and resolves
// profile inheritance chains against that index.
//
// The index is built once at startup by scanning the bundled profiles
// directory and is read-only afterwards, so lookups require no locking.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// Subdirs are the fixed per-vendor category subdirectories the slicing
// engine ships bundled profiles under.
var Subdirs = []string{"machine", "process", "filament"}

// Config configures a catalog scan.
type Config struct {
	// BundledDir is the root of the vendor profile tree. The expected
	// layout is <BundledDir>/<vendor>/<subdir>/**/*.json.
	BundledDir string

	// Logger receives scan diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.BundledDir) == "" {
		return fmt.Errorf("bundled profiles dir is required")
	}
	return nil
}

// Catalog maps engine subdir -> profile display name -> file path.
type Catalog struct {
	index  map[string]map[string]string
	logger *zap.Logger
}

// Build scans the bundled profile tree and returns the populated catalog.
//
// Individual malformed profile files are skipped; the scan is best effort
// and only a missing or unreadable root is worth reporting. Duplicate
// names within a subdir keep the first occurrence found.
func Build(cfg Config) (*Catalog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Catalog{
		index:  make(map[string]map[string]string, len(Subdirs)),
		logger: logger,
	}
	for _, sub := range Subdirs {
		c.index[sub] = make(map[string]string)
	}

	root := filepath.Clean(cfg.BundledDir)
	vendors, err := os.ReadDir(root)
	if err != nil {
		logger.Warn("Bundled profiles dir not readable",
			zap.String("dir", root),
			zap.Error(err))
		return c, nil
	}

	count := 0
	for _, vendor := range vendors {
		if !vendor.IsDir() {
			continue
		}
		for _, sub := range Subdirs {
			catDir := filepath.Join(root, vendor.Name(), sub)
			if fi, err := os.Stat(catDir); err != nil || !fi.IsDir() {
				continue
			}
			matches, err := doublestar.Glob(os.DirFS(catDir), "**/*.json")
			if err != nil {
				continue
			}
			for _, rel := range matches {
				path := filepath.Join(catDir, filepath.FromSlash(rel))
				name, ok := readProfileName(path)
				if !ok {
					continue
				}
				if _, exists := c.index[sub][name]; exists {
					// First vendor wins; later duplicates are ignored.
					logger.Debug("Duplicate bundled profile name",
						zap.String("subdir", sub),
						zap.String("name", name),
						zap.String("path", path))
					continue
				}
				c.index[sub][name] = path
				count++
			}
		}
	}

	logger.Info("Indexed bundled system profiles", zap.Int("count", count))
	return c, nil
}

// readProfileName parses the file and extracts a non-empty name field.
func readProfileName(path string) (string, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return "", false
	}
	if obj.Name == "" {
		return "", false
	}
	return obj.Name, true
}

// Len returns the number of indexed profiles in the given subdir.
func (c *Catalog) Len(subdir string) int {
	return len(c.index[subdir])
}

// Names returns the indexed profile names for the given subdir.
func (c *Catalog) Names(subdir string) []string {
	names := make([]string, 0, len(c.index[subdir]))
	for name := range c.index[subdir] {
		names = append(names, name)
	}
	return names
}

// Lookup returns the file path indexed for (subdir, name), if any.
func (c *Catalog) Lookup(subdir, name string) (string, bool) {
	path, ok := c.index[subdir][name]
	return path, ok
}
