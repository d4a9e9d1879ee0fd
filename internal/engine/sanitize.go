package engine

import (
	"strings"

	"phonefinder/internal/model"
)

// Sanitize resolves self-contradicting preferences that would otherwise
// filter everything out on a technicality. The rules are applied in order
// and are not symmetric: an Android request drops Apple from liked brands,
// while an iOS request with only non-Apple liked brands drops the OS.
func Sanitize(in model.Intent) model.Intent {
	out := in.Clone()

	if out.OS == model.OSAndroid && len(out.Brands) > 0 {
		kept := out.Brands[:0]
		for _, b := range out.Brands {
			if !isAppleBrand(b) {
				kept = append(kept, b)
			}
		}
		out.Brands = nilIfEmpty(kept)
	}

	if out.OS == model.OSIOS && len(out.Brands) > 0 && !containsFunc(out.Brands, isAppleBrand) {
		out.OS = model.OSAny
	}

	if len(out.Brands) > 0 && len(out.AvoidBrands) > 0 {
		covered := true
		for _, b := range out.Brands {
			if !containsFold(out.AvoidBrands, b) {
				covered = false
				break
			}
		}
		if covered {
			out.AvoidBrands = nil
		}
	}

	return out
}

func isAppleBrand(brand string) bool {
	return strings.Contains(strings.ToLower(brand), "apple")
}

func containsFold(list []string, s string) bool {
	s = strings.TrimSpace(s)
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), s) {
			return true
		}
	}
	return false
}

func containsFunc(list []string, fn func(string) bool) bool {
	for _, v := range list {
		if fn(v) {
			return true
		}
	}
	return false
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
