package profile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gowebpki/jcs"
)

// maxNameLength caps sanitized profile names.
const maxNameLength = 100

var (
	invalidNameChars = regexp.MustCompile(`[^a-z0-9-]`)
	dashRuns         = regexp.MustCompile(`-+`)
)

// SanitizeName normalizes a user-supplied profile name into the on-disk
// form: lowercase, a-z0-9 and single dashes only, at most 100 characters.
// Returns an empty string when nothing survives.
func SanitizeName(name string) string {
	name = strings.ToLower(name)
	name = invalidNameChars.ReplaceAllString(name, "-")
	name = dashRuns.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}
	return name
}

// Info describes a stored profile for listings and write responses.
type Info struct {
	Name     string    `json:"name"`
	Category Category  `json:"category"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`

	// Digest is a sha256 hex digest of the document's RFC 8785 canonical
	// form, stable across key ordering and whitespace differences.
	Digest string `json:"digest,omitempty"`
}

// Store is a filesystem-backed profile store.
//
// Directory layout:
//
//	<root>/printer/<name>.json
//	<root>/process/<name>.json
//	<root>/filament/<name>.json
//
// Writes use an atomic replace (temp file + rename) so concurrent readers
// never observe partial content. Writes to distinct names are otherwise
// unsynchronized; the store targets a single-operator usage model.
type Store struct {
	root string
}

// NewStore returns a store rooted at the given directory.
func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

// RootDir returns the store root.
func (s *Store) RootDir() string {
	return s.root
}

// EnsureLayout creates the per-category directories.
func (s *Store) EnsureLayout() error {
	for _, cat := range Categories() {
		if err := os.MkdirAll(s.categoryDir(cat), 0755); err != nil {
			return fmt.Errorf("create category dir %s: %w", cat, err)
		}
	}
	return nil
}

func (s *Store) categoryDir(cat Category) string {
	return filepath.Join(s.root, string(cat))
}

// Path returns the on-disk path for (category, name).
func (s *Store) Path(cat Category, name string) string {
	return filepath.Join(s.categoryDir(cat), name+".json")
}

// Exists reports whether the named profile is stored.
func (s *Store) Exists(cat Category, name string) bool {
	_, err := os.Stat(s.Path(cat, name))
	return err == nil
}

// Info returns listing metadata for a stored profile.
func (s *Store) Info(cat Category, name string) (Info, error) {
	path := s.Path(cat, name)
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, &StoreError{Op: "Info", Category: cat, Name: name, Err: ErrNotFound}
		}
		return Info{}, &StoreError{Op: "Info", Category: cat, Name: name, Err: err}
	}
	info := Info{
		Name:     name,
		Category: cat,
		Size:     fi.Size(),
		Modified: fi.ModTime(),
	}
	if b, err := os.ReadFile(path); err == nil {
		info.Digest = digestDocument(b)
	}
	return info, nil
}

// List returns stored profiles in a category sorted by name.
func (s *Store) List(cat Category) ([]Info, error) {
	dir := s.categoryDir(cat)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &StoreError{Op: "List", Category: cat, Err: err}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &StoreError{Op: "List", Category: cat, Err: err}
	}

	infos := make([]Info, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		info, err := s.Info(cat, name)
		if err != nil {
			continue
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Read returns the stored document bytes.
func (s *Store) Read(cat Category, name string) ([]byte, error) {
	b, err := os.ReadFile(s.Path(cat, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &StoreError{Op: "Read", Category: cat, Name: name, Err: ErrNotFound}
		}
		return nil, &StoreError{Op: "Read", Category: cat, Name: name, Err: err}
	}
	return b, nil
}

// Create stores a new profile, failing if the name is already taken.
func (s *Store) Create(cat Category, name string, data []byte) (Info, error) {
	if s.Exists(cat, name) {
		return Info{}, &StoreError{Op: "Create", Category: cat, Name: name, Err: ErrConflict}
	}
	if err := s.write(cat, name, data); err != nil {
		return Info{}, &StoreError{Op: "Create", Category: cat, Name: name, Err: err}
	}
	return s.Info(cat, name)
}

// Put stores a profile, replacing any existing document under the name.
func (s *Store) Put(cat Category, name string, data []byte) (Info, error) {
	if err := s.write(cat, name, data); err != nil {
		return Info{}, &StoreError{Op: "Put", Category: cat, Name: name, Err: err}
	}
	return s.Info(cat, name)
}

// Rename moves a profile to a new name within its category.
func (s *Store) Rename(cat Category, name, newName string) (Info, error) {
	if !s.Exists(cat, name) {
		return Info{}, &StoreError{Op: "Rename", Category: cat, Name: name, Err: ErrNotFound}
	}
	if newName == name {
		return s.Info(cat, name)
	}
	if s.Exists(cat, newName) {
		return Info{}, &StoreError{Op: "Rename", Category: cat, Name: newName, Err: ErrConflict}
	}
	if err := os.Rename(s.Path(cat, name), s.Path(cat, newName)); err != nil {
		return Info{}, &StoreError{Op: "Rename", Category: cat, Name: name, Err: err}
	}
	return s.Info(cat, newName)
}

// Delete removes a stored profile.
func (s *Store) Delete(cat Category, name string) error {
	if !s.Exists(cat, name) {
		return &StoreError{Op: "Delete", Category: cat, Name: name, Err: ErrNotFound}
	}
	if err := os.Remove(s.Path(cat, name)); err != nil {
		return &StoreError{Op: "Delete", Category: cat, Name: name, Err: err}
	}
	return nil
}

// write performs an atomic replace of the profile file.
func (s *Store) write(cat Category, name string, data []byte) error {
	dir := s.categoryDir(cat)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create category dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, name+".json.tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.Path(cat, name)); err != nil {
		return fmt.Errorf("rename profile file: %w", err)
	}
	return nil
}

// digestDocument returns the canonical-form sha256 of a JSON document, or
// empty when the document cannot be canonicalized.
func digestDocument(data []byte) string {
	canonical, err := jcs.Transform(data)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}
