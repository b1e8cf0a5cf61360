// Package profile implements the named configuration profile store and the
// metadata normalization applied to uploaded profile documents.
//
// Profiles are opaque JSON documents keyed by (category, name). The store
// keeps them on the filesystem, one category directory per kind, which
// matches the single-operator deployment model this service targets.
package profile

import "fmt"

// Category is a user-facing profile kind.
type Category string

const (
	CategoryPrinter  Category = "printer"
	CategoryProcess  Category = "process"
	CategoryFilament Category = "filament"
)

// Categories returns all valid categories in stable order.
func Categories() []Category {
	return []Category{CategoryPrinter, CategoryProcess, CategoryFilament}
}

// ParseCategory validates a user-supplied category string.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryPrinter, CategoryProcess, CategoryFilament:
		return Category(s), nil
	}
	return "", fmt.Errorf("%w: %s (must be one of: filament, printer, process)", ErrInvalidCategory, s)
}

// EngineType returns the category tag the slicing engine expects in a
// profile document's type field. The engine calls printer profiles
// "machine"; the other two map identically.
func (c Category) EngineType() string {
	if c == CategoryPrinter {
		return "machine"
	}
	return string(c)
}

// Subdir returns the bundled-profile subdirectory for this category. It
// uses the same vocabulary as EngineType.
func (c Category) Subdir() string {
	return c.EngineType()
}
