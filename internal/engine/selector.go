package engine

import (
	"strings"

	"phonefinder/internal/model"
)

// DedupeTopN keeps the first occurrence of each phone and returns at most n.
// Phones are keyed by slug when any candidate carries one, otherwise by
// brand and model.
func DedupeTopN(ranked []model.Candidate, n int) []model.Candidate {
	if n <= 0 || len(ranked) == 0 {
		return []model.Candidate{}
	}

	bySlug := false
	for _, c := range ranked {
		if strings.TrimSpace(c.Slug) != "" {
			bySlug = true
			break
		}
	}

	out := make([]model.Candidate, 0, min(n, len(ranked)))
	seen := make(map[string]bool, len(ranked))
	for _, c := range ranked {
		key := dedupeKey(c.Phone, bySlug)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
		if len(out) == n {
			break
		}
	}
	return out
}

func dedupeKey(p model.Phone, bySlug bool) string {
	if slug := strings.ToLower(strings.TrimSpace(p.Slug)); bySlug && slug != "" {
		return "slug:" + slug
	}
	return "name:" + strings.ToLower(strings.TrimSpace(p.Brand)) + "\x00" + strings.ToLower(strings.TrimSpace(p.Model))
}
