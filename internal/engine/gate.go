package engine

import (
	"strings"

	"phonefinder/internal/model"
)

// Enforce drops every candidate that violates a hard constraint of in:
// the budget ceiling, avoided brands and OS exclusivity. Nothing relaxes it.
func Enforce(cands []model.Candidate, in model.Intent) []model.Candidate {
	out := make([]model.Candidate, 0, len(cands))
	for _, c := range cands {
		if allowed(c.Phone, in) {
			out = append(out, c)
		}
	}
	return out
}

func allowed(p model.Phone, in model.Intent) bool {
	if in.Budget != nil && (p.PriceUSD == nil || *p.PriceUSD <= 0 || *p.PriceUSD > *in.Budget) {
		return false
	}
	if containsFold(in.AvoidBrands, p.Brand) {
		return false
	}

	apple := strings.Contains(strings.ToLower(p.OS), "ios") || isAppleBrand(p.Brand)
	switch in.OS {
	case model.OSIOS:
		return apple
	case model.OSAndroid:
		return !apple
	}
	return true
}
