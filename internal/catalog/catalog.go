// Package catalog holds the immutable in-memory phone snapshot and its loaders.
package catalog

import (
	"regexp"
	"strings"

	"phonefinder/internal/model"
)

// Catalog is a read-only snapshot of phone records.
// It is safe for concurrent use because nothing mutates it after New.
type Catalog struct {
	phones []model.Phone
	slugs  map[string]int
}

// New builds a catalog from a copy of phones
func New(phones []model.Phone) *Catalog {
	c := &Catalog{
		phones: make([]model.Phone, len(phones)),
		slugs:  make(map[string]int, len(phones)),
	}
	copy(c.phones, phones)
	for i, p := range c.phones {
		key := strings.ToLower(p.Slug)
		if key == "" {
			continue
		}
		if _, seen := c.slugs[key]; !seen {
			c.slugs[key] = i
		}
	}
	return c
}

// Phones returns the records in catalog order. The slice is a fresh copy.
func (c *Catalog) Phones() []model.Phone {
	if c == nil {
		return nil
	}
	out := make([]model.Phone, len(c.phones))
	copy(out, c.phones)
	return out
}

// Len returns the number of records
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.phones)
}

// BySlug looks a phone up by slug, case-insensitively
func (c *Catalog) BySlug(slug string) (model.Phone, bool) {
	if c == nil {
		return model.Phone{}, false
	}
	i, ok := c.slugs[strings.ToLower(strings.TrimSpace(slug))]
	if !ok {
		return model.Phone{}, false
	}
	return c.phones[i], true
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases s and collapses every non-alphanumeric run into a dash
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlug.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
