package service

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"phonefinder/internal/engine"
	"phonefinder/internal/utils"
)

var knownBrands = []string{
	"apple", "samsung", "google", "oneplus", "xiaomi", "sony", "motorola", "nothing", "asus",
	"oppo", "vivo", "realme", "honor", "huawei", "nokia", "lenovo", "tecno", "infinix",
}

var (
	budgetCapped = regexp.MustCompile(`(?:under|below|less\s*than|max|at\s*most|up\s*to|<=)\s*\$?\s*(\d{2,5})\b\s*([a-z]*)`)
	budgetAround = regexp.MustCompile(`(?:around|about|roughly|~)\s*\$?\s*(\d{2,5})\b\s*([a-z]*)`)
	budgetBare   = regexp.MustCompile(`(\$\s*)?\b(\d{2,5})\b(\.\d+)?\s*([a-z]*)`)

	smallWords = regexp.MustCompile(`\b(?:compact|small|smaller|mini|one[- ]handed)\b|\b6\.[01]\b`)
	largeWords = regexp.MustCompile(`\b(?:large|big|bigger|plus|pro max|ultra)\b|\b6\.[789]\b`)

	batteryRe = regexp.MustCompile(`(\d{3,5})\s*mah`)
	ramRe     = regexp.MustCompile(`(\d{1,2})\s*gb\s*(?:of\s*)?ram`)
	storageRe = regexp.MustCompile(`(\d{2,4})\s*gb`)
	ramSuffix = regexp.MustCompile(`^\s*(?:of\s*)?ram`)
	cameraRe  = regexp.MustCompile(`(\d{2,3})\s*mp`)

	iosWords      = regexp.MustCompile(`\biphone|\bios\b`)
	androidWords  = regexp.MustCompile(`\bandroid\b`)
	cameraFocused = regexp.MustCompile(`\b(?:best|great|good|excellent|strong)\s+cameras?\b|\bphotography\b`)

	specUnits = map[string]bool{
		"mah": true, "gb": true, "tb": true, "mb": true, "mp": true, "hz": true,
		"w": true, "mm": true, "g": true, "grams": true, "inch": true, "inches": true,
	}

	avoidPrefix = `\b(?:avoid|no|not|without|except)\s+(?:an?\s+)?`
)

// product-line names that imply a brand. "nothing" only counts as a brand
// when followed by "phone".
var likeOverrides = map[string]string{
	"google":  `\b(?:google|pixel)\b`,
	"samsung": `\b(?:samsung|galaxy)\b`,
	"nothing": `\bnothing\s+phone\b`,
}

// brand matchers, built once: [0] mentions the brand, [1] avoids it
var brandPatterns = func() map[string][2]*regexp.Regexp {
	out := make(map[string][2]*regexp.Regexp, len(knownBrands))
	for _, b := range knownBrands {
		q := regexp.QuoteMeta(b)
		like := `\b` + q + `\b`
		if o, ok := likeOverrides[b]; ok {
			like = o
		}
		out[b] = [2]*regexp.Regexp{
			regexp.MustCompile(like),
			regexp.MustCompile(avoidPrefix + q + `\b`),
		}
	}
	return out
}()

// RuleExtractor pulls an intent delta out of free text with keyword and
// regex rules. It never fails and needs no network.
type RuleExtractor struct {
	title cases.Caser
}

// NewRuleExtractor creates a rule-based extractor
func NewRuleExtractor() *RuleExtractor {
	return &RuleExtractor{title: cases.Title(language.English)}
}

// Name identifies the extractor in logs and metrics
func (r *RuleExtractor) Name() string {
	return "rules"
}

// Extract returns the fields it can recognise in text. Unrecognised fields are
// absent from the result.
func (r *RuleExtractor) Extract(_ context.Context, text string) (engine.RawIntent, error) {
	t := strings.ToLower(strings.TrimSpace(text))
	out := engine.RawIntent{}
	if t == "" {
		return out, nil
	}

	if budget, ok := extractBudget(t); ok {
		out[engine.KeyBudget] = budget
	}

	likes, avoids := r.extractBrands(t)
	if len(likes) > 0 {
		out[engine.KeyBrands] = likes
	}
	if len(avoids) > 0 {
		out[engine.KeyAvoidBrands] = avoids
	}

	appleAvoided := false
	for _, b := range avoids {
		if strings.EqualFold(b, "apple") {
			appleAvoided = true
		}
	}
	switch {
	case iosWords.MatchString(t) || (brandPatterns["apple"][0].MatchString(t) && !appleAvoided):
		out[engine.KeyOS] = "ios"
	case androidWords.MatchString(t):
		out[engine.KeyOS] = "android"
	}

	// both flags may be set here; Normalize clears a conflicting pair
	if smallWords.MatchString(t) {
		out[engine.KeyPreferSmall] = true
	}
	if largeWords.MatchString(t) {
		out[engine.KeyPreferLarge] = true
	}

	if m := batteryRe.FindStringSubmatch(t); m != nil {
		out[engine.KeyMinBattery] = atoi(m[1])
	}
	if m := ramRe.FindStringSubmatch(t); m != nil {
		out[engine.KeyMinRAM] = atoi(m[1])
	}
	if gb, ok := extractStorage(t); ok {
		out[engine.KeyMinStorage] = gb
	}
	if m := cameraRe.FindStringSubmatch(t); m != nil {
		out[engine.KeyMinCamera] = atoi(m[1])
	}
	if cameraFocused.MatchString(t) {
		out[engine.KeyCameraPriority] = true
	}

	if feats := utils.DetectFeatures(t); len(feats) > 0 {
		out[engine.KeyMustHave] = feats
	}

	return out, nil
}

// extractBrands returns liked and avoided brands. A brand that is avoided is
// never also reported as liked.
func (r *RuleExtractor) extractBrands(t string) (likes, avoids []string) {
	for _, b := range knownBrands {
		p := brandPatterns[b]
		switch {
		case p[1].MatchString(t):
			avoids = append(avoids, r.title.String(b))
		case p[0].MatchString(t):
			likes = append(likes, r.title.String(b))
		}
	}
	sort.Strings(likes)
	sort.Strings(avoids)
	return likes, avoids
}

// extractBudget tries capped phrases, then approximate phrases, then a bare
// amount. Numbers followed by a hardware unit are skipped. Without a "$"
// prefix, bare years and amounts under 100 are skipped too.
func extractBudget(t string) (float64, bool) {
	for _, re := range []*regexp.Regexp{budgetCapped, budgetAround} {
		for _, m := range re.FindAllStringSubmatch(t, -1) {
			if specUnits[m[2]] {
				continue
			}
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return v, true
			}
		}
	}

	for _, idx := range budgetBare.FindAllStringSubmatchIndex(t, -1) {
		dollar := idx[2] >= 0
		num := t[idx[4]:idx[5]]
		unit := ""
		if idx[8] >= 0 {
			unit = t[idx[8]:idx[9]]
		}
		if idx[4] > 0 && t[idx[4]-1] == '.' {
			continue
		}
		if specUnits[unit] {
			continue
		}
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			continue
		}
		if !dollar && (looksLikeYear(num) || v < 100) {
			continue
		}
		return v, true
	}
	return 0, false
}

// extractStorage finds the first "<n> gb" that is not a RAM amount
func extractStorage(t string) (int, bool) {
	for _, idx := range storageRe.FindAllStringSubmatchIndex(t, -1) {
		if ramSuffix.MatchString(t[idx[1]:]) {
			continue
		}
		return atoi(t[idx[2]:idx[3]]), true
	}
	return 0, false
}

func looksLikeYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	return strings.HasPrefix(s, "19") || strings.HasPrefix(s, "20")
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
