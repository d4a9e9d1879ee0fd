package utils

import (
	"regexp"
	"strings"
)

// canonical feature tags and the phrases that imply them
var featureAliases = []struct {
	tag     string
	aliases []string
}{
	{"wireless charging", []string{"wireless charging", "wireless", "qi charging", "magsafe"}},
	{"ip68", []string{"ip68", "waterproof", "water resistant", "water-resistant", "dustproof"}},
	{"esim", []string{"esim", "e-sim"}},
	{"5g", []string{"5g"}},
	{"fast charging", []string{"fast charging", "quick charge", "fast charge"}},
	{"telephoto", []string{"telephoto", "zoom lens", "periscope"}},
	{"ultrawide", []string{"ultrawide", "ultra-wide", "ultra wide"}},
	{"120hz", []string{"120hz", "high refresh", "smooth screen"}},
}

// word-boundary matchers for short aliases such as "5g"
var aliasPatterns = func() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp)
	for _, f := range featureAliases {
		for _, a := range f.aliases {
			out[a] = regexp.MustCompile(`\b` + regexp.QuoteMeta(a) + `\b`)
		}
	}
	return out
}()

// NormalizeFeature maps a feature phrase to its canonical tag.
// Unknown phrases are returned lower-cased and trimmed.
func NormalizeFeature(term string) string {
	t := strings.ToLower(strings.TrimSpace(term))
	for _, f := range featureAliases {
		for _, a := range f.aliases {
			if t == a {
				return f.tag
			}
		}
	}
	return t
}

// DetectFeatures returns the canonical tags mentioned anywhere in text,
// in a fixed order and without duplicates
func DetectFeatures(text string) []string {
	t := strings.ToLower(text)
	var out []string
	for _, f := range featureAliases {
		for _, a := range f.aliases {
			if aliasPatterns[a].MatchString(t) {
				out = append(out, f.tag)
				break
			}
		}
	}
	return out
}
