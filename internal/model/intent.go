package model

import "slices"

// OS is the operating system family an intent can ask for
type OS string

const (
	OSAny     OS = ""
	OSAndroid OS = "android"
	OSIOS     OS = "ios"
)

// Intent is a normalized phone-shopping preference profile.
// Nil pointers mean "no preference".
type Intent struct {
	Budget         *float64 `json:"budget"`
	OS             OS       `json:"os"`
	PreferSmall    *bool    `json:"prefer_small"`
	PreferLarge    *bool    `json:"prefer_large"`
	MinBattery     *int     `json:"min_battery"`
	MinRAM         *float64 `json:"min_ram"`
	MinStorage     *float64 `json:"min_storage"`
	MinCamera      *float64 `json:"min_camera"`
	Brands         []string `json:"brands"`
	AvoidBrands    []string `json:"avoid_brands"`
	MustHave       []string `json:"must_have"`
	MinYear        *int     `json:"min_year"`
	MaxYear        *int     `json:"max_year"`
	CameraPriority *bool    `json:"camera_priority"`
}

// Clone returns a deep copy so relaxation never aliases the caller's intent
func (i Intent) Clone() Intent {
	out := i
	out.Budget = clonePtr(i.Budget)
	out.PreferSmall = clonePtr(i.PreferSmall)
	out.PreferLarge = clonePtr(i.PreferLarge)
	out.MinBattery = clonePtr(i.MinBattery)
	out.MinRAM = clonePtr(i.MinRAM)
	out.MinStorage = clonePtr(i.MinStorage)
	out.MinCamera = clonePtr(i.MinCamera)
	out.MinYear = clonePtr(i.MinYear)
	out.MaxYear = clonePtr(i.MaxYear)
	out.CameraPriority = clonePtr(i.CameraPriority)
	out.Brands = slices.Clone(i.Brands)
	out.AvoidBrands = slices.Clone(i.AvoidBrands)
	out.MustHave = slices.Clone(i.MustHave)
	return out
}

// Raw renders the intent back into its untyped form.
// Unset fields are omitted.
func (i Intent) Raw() map[string]any {
	raw := map[string]any{}
	putPtr(raw, "budget", i.Budget)
	if i.OS != OSAny {
		raw["os"] = string(i.OS)
	}
	putPtr(raw, "prefer_small", i.PreferSmall)
	putPtr(raw, "prefer_large", i.PreferLarge)
	putPtr(raw, "min_battery", i.MinBattery)
	putPtr(raw, "min_ram", i.MinRAM)
	putPtr(raw, "min_storage", i.MinStorage)
	putPtr(raw, "min_camera", i.MinCamera)
	putPtr(raw, "min_year", i.MinYear)
	putPtr(raw, "max_year", i.MaxYear)
	putPtr(raw, "camera_priority", i.CameraPriority)
	if len(i.Brands) > 0 {
		raw["brands"] = slices.Clone(i.Brands)
	}
	if len(i.AvoidBrands) > 0 {
		raw["avoid_brands"] = slices.Clone(i.AvoidBrands)
	}
	if len(i.MustHave) > 0 {
		raw["must_have"] = slices.Clone(i.MustHave)
	}
	return raw
}

// HasSizePreference reports whether either size flag is set to true
func (i Intent) HasSizePreference() bool {
	return isTrue(i.PreferSmall) || isTrue(i.PreferLarge)
}

func isTrue(b *bool) bool {
	return b != nil && *b
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func putPtr[T any](raw map[string]any, key string, p *T) {
	if p != nil {
		raw[key] = *p
	}
}
