package engine

import (
	"sort"
	"strings"

	"phonefinder/internal/model"
)

// Catalog is the read-only phone source the engine filters
type Catalog interface {
	Phones() []model.Phone
}

// Filter returns the phones satisfying every constraint of in, newest first
// and cheapest within a year. With strictPrice a budget only admits phones
// with a known price; otherwise unknown prices pass too.
func Filter(cat Catalog, in model.Intent, strictPrice bool) []model.Phone {
	if cat == nil {
		return nil
	}
	return filterPhones(cat.Phones(), in, strictPrice)
}

// LiveCount is the number of phones matching in with a soft budget
func LiveCount(cat Catalog, in model.Intent) int {
	return len(Filter(cat, in, false))
}

func filterPhones(phones []model.Phone, in model.Intent, strictPrice bool) []model.Phone {
	var out []model.Phone
	for _, p := range phones {
		if matches(p, in, strictPrice) {
			out = append(out, p)
		}
	}
	sortNewestCheapest(out)
	return out
}

func matches(p model.Phone, in model.Intent, strictPrice bool) bool {
	return priceOK(p, in.Budget, strictPrice) &&
		osOK(p, in.OS) &&
		yearOK(p, in.MinYear, in.MaxYear) &&
		sizeOK(p, in) &&
		minimumsOK(p, in) &&
		brandOK(p, in) &&
		featuresOK(p, in.MustHave)
}

func priceOK(p model.Phone, budget *float64, strict bool) bool {
	if budget == nil {
		return true
	}
	if p.PriceUSD == nil {
		return !strict
	}
	return *p.PriceUSD > 0 && *p.PriceUSD <= *budget
}

func osOK(p model.Phone, os model.OS) bool {
	if os == model.OSAny {
		return true
	}
	return strings.Contains(strings.ToLower(p.OS), string(os))
}

func yearOK(p model.Phone, minYear, maxYear *int) bool {
	if p.ReleaseYear == nil {
		return true
	}
	y := *p.ReleaseYear
	if minYear != nil && y < *minYear {
		return false
	}
	if maxYear != nil && y > *maxYear {
		return false
	}
	return true
}

func sizeOK(p model.Phone, in model.Intent) bool {
	if p.DisplayInches == nil {
		return true
	}
	if isTrue(in.PreferSmall) && *p.DisplayInches > CompactMaxInches {
		return false
	}
	if isTrue(in.PreferLarge) && *p.DisplayInches < LargeMinInches {
		return false
	}
	return true
}

func minimumsOK(p model.Phone, in model.Intent) bool {
	if in.MinBattery != nil && p.BatteryMAh != nil && *p.BatteryMAh < *in.MinBattery {
		return false
	}
	return atLeast(p.RAMGB, in.MinRAM) &&
		atLeast(p.StorageGB, in.MinStorage) &&
		atLeast(p.MainCameraMP, in.MinCamera)
}

func atLeast(v, minimum *float64) bool {
	return minimum == nil || v == nil || *v >= *minimum
}

func brandOK(p model.Phone, in model.Intent) bool {
	if len(in.Brands) > 0 && !containsFold(in.Brands, p.Brand) {
		return false
	}
	return !containsFold(in.AvoidBrands, p.Brand)
}

func featuresOK(p model.Phone, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	blob := strings.ToLower(p.NotableFeatures)
	for _, tag := range tags {
		if !strings.Contains(blob, strings.ToLower(tag)) {
			return false
		}
	}
	return true
}

func sortNewestCheapest(phones []model.Phone) {
	sort.SliceStable(phones, func(i, j int) bool {
		a, b := phones[i], phones[j]
		if c := compareDesc(a.ReleaseYear, b.ReleaseYear); c != 0 {
			return c < 0
		}
		return compareAsc(a.PriceUSD, b.PriceUSD) < 0
	})
}

// compareDesc orders larger values first and unknown values last
func compareDesc(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a > *b:
		return -1
	case *a < *b:
		return 1
	}
	return 0
}

// compareAsc orders smaller values first and unknown values last
func compareAsc(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}
