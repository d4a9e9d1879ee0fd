package engine

import (
	"math"

	"phonefinder/internal/model"
)

// Strategy names the ladder stage that produced a candidate set.
// It is diagnostic only.
type Strategy string

const (
	StrategyStrictBudget    Strategy = "strict budget"
	StrategySoftBudget      Strategy = "soft budget"
	StrategyDroppedMustHave Strategy = "dropped must-have"
	StrategyRelaxedBudget   Strategy = "relaxed budget +15%"
	StrategyRemovedSize     Strategy = "removed size constraint"
	StrategyRelaxedMinimums Strategy = "relaxed minimums"
	StrategyIgnoredBudget   Strategy = "ignored budget"
	StrategyFallbackNewest  Strategy = "fallback newest"
)

// SearchResult is the outcome of the relaxation ladder
type SearchResult struct {
	Candidates []model.Phone
	// Intent is the intent the winning stage filtered with
	Intent   model.Intent
	Strategy Strategy
}

// stage derives a relaxed probe from the original intent.
// ok is false when the stage has nothing to relax.
type stage struct {
	strategy Strategy
	strict   bool
	relax    func(in model.Intent, p Params) (out model.Intent, ok bool)
}

var ladder = []stage{
	{StrategyStrictBudget, true, keep},
	{StrategySoftBudget, false, keep},
	{StrategyDroppedMustHave, false, dropMustHave},
	{StrategyRelaxedBudget, true, raiseBudget},
	{StrategyRemovedSize, false, dropSize},
	{StrategyRelaxedMinimums, false, lowerMinimums},
	{StrategyIgnoredBudget, false, dropBudget},
}

// Search walks the relaxation ladder and returns the first stage that yields
// at least p.MinResults phones. Every stage relaxes the original intent, never
// a previous stage's output. in must already be normalized. When no stage
// qualifies, the newest phones of the whole catalog are returned.
func Search(cat Catalog, in model.Intent, p Params) SearchResult {
	p = p.orDefault()
	var phones []model.Phone
	if cat != nil {
		phones = cat.Phones()
	}

	for _, s := range ladder {
		probe, ok := s.relax(in.Clone(), p)
		if !ok {
			continue
		}
		found := filterPhones(phones, probe, s.strict)
		if len(found) >= p.MinResults {
			return SearchResult{Candidates: found, Intent: probe, Strategy: s.strategy}
		}
	}

	return SearchResult{
		Candidates: newest(phones, p.FallbackLimit),
		Intent:     in.Clone(),
		Strategy:   StrategyFallbackNewest,
	}
}

func newest(phones []model.Phone, limit int) []model.Phone {
	out := make([]model.Phone, len(phones))
	copy(out, phones)
	sortNewestCheapest(out)
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func keep(in model.Intent, _ Params) (model.Intent, bool) {
	return in, true
}

func dropMustHave(in model.Intent, _ Params) (model.Intent, bool) {
	if len(in.MustHave) == 0 {
		return in, false
	}
	in.MustHave = nil
	return in, true
}

func raiseBudget(in model.Intent, p Params) (model.Intent, bool) {
	if in.Budget == nil {
		return in, false
	}
	b := *in.Budget * p.BudgetRelaxFactor
	in.Budget = &b
	return in, true
}

func dropSize(in model.Intent, _ Params) (model.Intent, bool) {
	if !in.HasSizePreference() {
		return in, false
	}
	in.PreferSmall, in.PreferLarge = nil, nil
	return in, true
}

func lowerMinimums(in model.Intent, p Params) (model.Intent, bool) {
	changed := false
	if in.MinBattery != nil && *in.MinBattery != 0 {
		battery := int(math.Max(0, float64(*in.MinBattery)*p.BatteryRelaxFactor))
		in.MinBattery = &battery
		changed = true
	}
	if v, ok := relaxed(in.MinRAM, func(x float64) float64 { return lowerToFloor(x, p.RAMRelaxStep, p.RAMFloor) }); ok {
		in.MinRAM = v
		changed = true
	}
	if v, ok := relaxed(in.MinStorage, func(x float64) float64 { return lowerToFloor(x, p.StorageRelaxStep, p.StorageFloor) }); ok {
		in.MinStorage = v
		changed = true
	}
	if v, ok := relaxed(in.MinCamera, func(x float64) float64 { return math.Max(0, x*p.CameraRelaxFactor) }); ok {
		in.MinCamera = v
		changed = true
	}
	return in, changed
}

// lowerToFloor subtracts step without going below floor. A minimum already
// at or under the floor is kept as is.
func lowerToFloor(x, step, floor float64) float64 {
	if x <= floor {
		return x
	}
	return math.Max(floor, x-step)
}

func relaxed(v *float64, fn func(float64) float64) (*float64, bool) {
	if v == nil || *v == 0 {
		return v, false
	}
	r := fn(*v)
	return &r, true
}

func dropBudget(in model.Intent, _ Params) (model.Intent, bool) {
	if in.Budget == nil {
		return in, false
	}
	in.Budget = nil
	return in, true
}
