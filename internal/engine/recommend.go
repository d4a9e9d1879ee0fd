package engine

import "phonefinder/internal/model"

// Result is the outcome of one recommendation pass
type Result struct {
	Picks []model.Candidate
	// Intent is the effective, possibly relaxed, intent
	Intent model.Intent
	// Count is the number of unique candidates that passed the hard gate
	Count    int
	Strategy Strategy
}

// Recommend runs the whole pipeline for a raw intent and returns at most n picks.
// Relaxation only widens the candidate pool. The hard gate always checks the
// caller's sanitized intent, so relaxed budgets and brands never leak into picks.
func Recommend(cat Catalog, raw RawIntent, n int, p Params) Result {
	base := Sanitize(Normalize(raw))

	found := Search(cat, base, p)
	effective := found.Intent
	strategy := found.Strategy
	gated := Enforce(Rank(found.Candidates, effective), base)

	if len(gated) == 0 && cat != nil {
		gated = Enforce(Rank(newest(cat.Phones(), -1), base), base)
		effective = base.Clone()
		strategy = StrategyFallbackNewest
	}

	unique := DedupeTopN(gated, len(gated))
	picks := Enforce(DedupeTopN(unique, n), base)

	return Result{
		Picks:    picks,
		Intent:   effective,
		Count:    len(unique),
		Strategy: strategy,
	}
}
