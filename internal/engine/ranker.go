package engine

import (
	"math"
	"sort"
	"strings"

	"phonefinder/internal/model"
)

// Highlight constants
const (
	ProLargeDisplay = "Large, immersive display"
	ProCompact      = "Compact size"
	ProBattery      = "Long battery life"
	ProRAM          = "Plenty of RAM"
	ProStorage      = "Large storage"
	ProBalanced     = "Balanced specs for the price"
	ConOverBudget   = "Over your budget"
)

// Neutral values substituted for unknown attributes when scoring
const (
	neutralYear    = 2018
	neutralBattery = 3000
	neutralCamera  = 12.0
	neutralRAM     = 4.0
	neutralStorage = 64.0
)

// featureLabels are the feature tags surfaced as pros, in display order
var featureLabels = []struct{ tag, label string }{
	{"ip68", "IP68"},
	{"wireless charging", "Wireless Charging"},
	{"fast charging", "Fast Charging"},
	{"esim", "eSIM"},
	{"5g", "5G"},
	{"telephoto", "Telephoto"},
	{"ultrawide", "Ultrawide"},
	{"120hz", "120Hz"},
}

// Ranker scores candidates with a weighted linear model
type Ranker struct {
	weightRecency        float64
	weightBattery        float64
	weightCamera         float64
	weightCameraPriority float64
	weightRAM            float64
	weightStorage        float64
}

// NewRanker creates a ranker with the given weights
func NewRanker(recency, battery, camera, cameraPriority, ram, storage float64) *Ranker {
	return &Ranker{
		weightRecency:        recency,
		weightBattery:        battery,
		weightCamera:         camera,
		weightCameraPriority: cameraPriority,
		weightRAM:            ram,
		weightStorage:        storage,
	}
}

// DefaultRanker returns the stock weights
func DefaultRanker() *Ranker {
	return NewRanker(1.0, 0.8, 0.4, 1.0, 0.3, 0.3)
}

// Rank scores cands against in with the default weights
func Rank(cands []model.Phone, in model.Intent) []model.Candidate {
	return DefaultRanker().Rank(cands, in)
}

// Rank scores and sorts candidates, best first. Ties go to the newer phone,
// then to the earlier input position.
func (r *Ranker) Rank(cands []model.Phone, in model.Intent) []model.Candidate {
	results := make([]model.Candidate, 0, len(cands))
	for _, p := range cands {
		pros, cons := r.highlights(p, in)
		results = append(results, model.Candidate{
			Phone: p,
			Score: r.Score(p, in),
			Pros:  pros,
			Cons:  cons,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return compareDesc(results[i].ReleaseYear, results[j].ReleaseYear) < 0
	})

	return results
}

// Score computes the fit of one phone. Unknown attributes score as neutral defaults.
func (r *Ranker) Score(p model.Phone, in model.Intent) float64 {
	year := float64(neutralYear)
	if p.ReleaseYear != nil {
		year = float64(*p.ReleaseYear)
	}
	battery := float64(neutralBattery)
	if p.BatteryMAh != nil {
		battery = float64(*p.BatteryMAh)
	}

	cameraWeight := r.weightCamera
	if isTrue(in.CameraPriority) {
		cameraWeight = r.weightCameraPriority
	}

	score := (year-2017)*r.weightRecency +
		(battery/1000)*r.weightBattery +
		(valueOr(p.MainCameraMP, neutralCamera)/neutralCamera)*cameraWeight +
		(valueOr(p.RAMGB, neutralRAM)/neutralRAM)*r.weightRAM +
		(valueOr(p.StorageGB, neutralStorage)/neutralStorage)*r.weightStorage

	if in.Budget != nil {
		budget := *in.Budget
		fit := budget - valueOr(p.PriceUSD, budget)
		score += math.Max(-999, math.Min(500, fit)) / 500
	}

	return score
}

func (r *Ranker) highlights(p model.Phone, in model.Intent) (pros, cons []string) {
	display := valueOr(p.DisplayInches, 0)
	if display >= LargeMinInches {
		pros = append(pros, ProLargeDisplay)
	}
	if p.DisplayInches != nil && display <= CompactMaxInches {
		pros = append(pros, ProCompact)
	}
	if p.BatteryMAh != nil && *p.BatteryMAh >= 5000 {
		pros = append(pros, ProBattery)
	}
	if valueOr(p.RAMGB, 0) >= 8 {
		pros = append(pros, ProRAM)
	}
	if valueOr(p.StorageGB, 0) >= 256 {
		pros = append(pros, ProStorage)
	}

	feats := strings.ToLower(p.NotableFeatures)
	for _, f := range featureLabels {
		if strings.Contains(feats, f.tag) {
			pros = append(pros, f.label)
		}
	}

	if len(pros) == 0 {
		pros = append(pros, ProBalanced)
	}

	if in.Budget != nil && p.PriceUSD != nil && *p.PriceUSD > *in.Budget {
		cons = append(cons, ConOverBudget)
	}

	return pros, cons
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
