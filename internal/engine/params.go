// Package engine is the recommendation core: intent normalization, constraint
// filtering, the relaxation ladder, ranking, selection and the hard gate.
//
// Every function here is pure. Nothing logs, performs I/O or mutates its
// inputs, so a single catalog snapshot can serve any number of concurrent
// requests without locking.
package engine

import "fmt"

// Fixed thresholds used by the filter and ranking stages
const (
	// DefaultMinYear is applied when an intent sets neither year bound
	DefaultMinYear = 2018

	// CompactMaxInches is the largest display that still counts as compact
	CompactMaxInches = 6.2

	// LargeMinInches is the smallest display that counts as large
	LargeMinInches = 6.7
)

// Params tunes the relaxation ladder
type Params struct {
	// MinResults is the candidate count a stage must reach to stop the ladder
	MinResults int

	// BudgetRelaxFactor multiplies the budget in the relaxed-budget stage
	BudgetRelaxFactor float64

	// BatteryRelaxFactor multiplies the battery minimum in the relaxed-minimums stage
	BatteryRelaxFactor float64

	// RAMRelaxStep is subtracted from the RAM minimum, never below RAMFloor
	RAMRelaxStep float64
	RAMFloor     float64

	// StorageRelaxStep is subtracted from the storage minimum, never below StorageFloor
	StorageRelaxStep float64
	StorageFloor     float64

	// CameraRelaxFactor multiplies the camera minimum
	CameraRelaxFactor float64

	// FallbackLimit caps the newest-first fallback stage
	FallbackLimit int
}

// DefaultParams returns the stock ladder tuning
func DefaultParams() Params {
	return Params{
		MinResults:         3,
		BudgetRelaxFactor:  1.15,
		BatteryRelaxFactor: 0.9,
		RAMRelaxStep:       1,
		RAMFloor:           1,
		StorageRelaxStep:   64,
		StorageFloor:       16,
		CameraRelaxFactor:  0.8,
		FallbackLimit:      30,
	}
}

// Validate reports the first out-of-range parameter
func (p Params) Validate() error {
	switch {
	case p.MinResults < 1:
		return fmt.Errorf("min results must be at least 1, got %d", p.MinResults)
	case p.BudgetRelaxFactor < 1:
		return fmt.Errorf("budget relax factor must be >= 1, got %.2f", p.BudgetRelaxFactor)
	case p.BatteryRelaxFactor <= 0 || p.BatteryRelaxFactor > 1:
		return fmt.Errorf("battery relax factor must be in (0, 1], got %.2f", p.BatteryRelaxFactor)
	case p.CameraRelaxFactor <= 0 || p.CameraRelaxFactor > 1:
		return fmt.Errorf("camera relax factor must be in (0, 1], got %.2f", p.CameraRelaxFactor)
	case p.RAMRelaxStep < 0 || p.StorageRelaxStep < 0:
		return fmt.Errorf("relax steps must not be negative")
	case p.RAMFloor < 0 || p.StorageFloor < 0:
		return fmt.Errorf("relax floors must not be negative")
	case p.FallbackLimit < p.MinResults:
		return fmt.Errorf("fallback limit %d is below min results %d", p.FallbackLimit, p.MinResults)
	}
	return nil
}

// orDefault swaps an unusable parameter set for DefaultParams
func (p Params) orDefault() Params {
	if p.Validate() != nil {
		return DefaultParams()
	}
	return p
}
