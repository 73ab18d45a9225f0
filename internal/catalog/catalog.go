// Package catalog loads the read-only category catalog the pipeline
// iterates. The catalog file is owned by the presentation layer and is
// never modified here.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrNoCategories is returned when the catalog file contains no entries.
	ErrNoCategories = errors.New("catalog contains no categories")
	// ErrDuplicateID is returned when two catalog entries share an ID.
	ErrDuplicateID = errors.New("duplicate category id")
)

// Category identifies one content partition.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// Load reads and validates the category catalog from path.
func Load(path string) ([]Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var categories []Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(categories) == 0 {
		return nil, ErrNoCategories
	}

	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		if c.ID == "" || c.Name == "" {
			return nil, fmt.Errorf("invalid catalog entry %q: id and name are required", c.ID)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, c.ID)
		}
		seen[c.ID] = struct{}{}
	}

	return categories, nil
}

// Filter applies include and exclude selectors (comma-separated category
// IDs) to the catalog, preserving order. Empty selectors select everything.
func Filter(categories []Category, include, exclude string) []Category {
	included := selectorSet(include)
	excluded := selectorSet(exclude)

	var out []Category
	for _, c := range categories {
		if included != nil {
			if _, ok := included[c.ID]; !ok {
				continue
			}
		}
		if _, ok := excluded[c.ID]; ok {
			continue
		}
		out = append(out, c)
	}

	return out
}

// selectorSet parses a comma-separated selector into a set, or nil when
// the selector is empty.
func selectorSet(s string) map[string]struct{} {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	set := make(map[string]struct{})
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			set[part] = struct{}{}
		}
	}
	return set
}
