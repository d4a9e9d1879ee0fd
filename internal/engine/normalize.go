package engine

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"phonefinder/internal/model"
)

// RawIntent is an untyped, possibly contradictory preference record
type RawIntent map[string]any

// Raw intent keys
const (
	KeyBudget         = "budget"
	KeyOS             = "os"
	KeyPreferSmall    = "prefer_small"
	KeyPreferLarge    = "prefer_large"
	KeyMinBattery     = "min_battery"
	KeyMinRAM         = "min_ram"
	KeyMinStorage     = "min_storage"
	KeyMinCamera      = "min_camera"
	KeyBrands         = "brands"
	KeyAvoidBrands    = "avoid_brands"
	KeyMustHave       = "must_have"
	KeyMinYear        = "min_year"
	KeyMaxYear        = "max_year"
	KeyCameraPriority = "camera_priority"
)

// Integer fields above these are treated as unset
const (
	maxBatteryMAh = 100000
	maxYear       = 9999
)

var (
	firstNumber   = regexp.MustCompile(`\d+(?:\.\d+)?`)
	listSeparator = regexp.MustCompile(`[,;\n]+`)
)

// Normalize turns a raw record into a typed intent. It never fails:
// unusable values become unset.
func Normalize(raw RawIntent) model.Intent {
	var out model.Intent

	if b, ok := toFloat(raw[KeyBudget]); ok && b > 0 {
		out.Budget = &b
	}
	out.OS = toOS(raw[KeyOS])

	out.PreferSmall = toBool(raw[KeyPreferSmall])
	out.PreferLarge = toBool(raw[KeyPreferLarge])
	if isTrue(out.PreferSmall) && isTrue(out.PreferLarge) {
		out.PreferSmall, out.PreferLarge = nil, nil
	}

	if v, ok := toFloat(raw[KeyMinBattery]); ok && v <= maxBatteryMAh {
		battery := int(v)
		out.MinBattery = &battery
	}
	out.MinRAM = toMinimum(raw[KeyMinRAM])
	out.MinStorage = toMinimum(raw[KeyMinStorage])
	out.MinCamera = toMinimum(raw[KeyMinCamera])

	title := cases.Title(language.English)
	out.Brands = toList(raw[KeyBrands], title.String)
	out.AvoidBrands = toList(raw[KeyAvoidBrands], title.String)
	out.MustHave = toList(raw[KeyMustHave], strings.ToLower)

	out.MinYear = toYear(raw[KeyMinYear])
	out.MaxYear = toYear(raw[KeyMaxYear])
	switch {
	case out.MinYear == nil && out.MaxYear == nil:
		minYear := DefaultMinYear
		out.MinYear = &minYear
	case out.MinYear != nil && out.MaxYear != nil && *out.MinYear > *out.MaxYear:
		out.MinYear, out.MaxYear = out.MaxYear, out.MinYear
	}

	out.CameraPriority = toBool(raw[KeyCameraPriority])

	return out
}

type floater interface {
	Float64() (float64, error)
}

// toFloat coerces numbers and numeric strings. Strings yield their first number.
func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case nil, bool:
		return 0, false
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		m := firstNumber.FindString(strings.ReplaceAll(x, ",", ""))
		if m == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case floater:
		parsed, err := x.Float64()
		if err != nil {
			return toFloat(fmt.Sprint(x))
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

func toMinimum(v any) *float64 {
	f, ok := toFloat(v)
	if !ok {
		return nil
	}
	return &f
}

func toYear(v any) *int {
	f, ok := toFloat(v)
	if !ok || f > maxYear {
		return nil
	}
	y := int(f)
	return &y
}

func toBool(v any) *bool {
	var b bool
	switch x := v.(type) {
	case bool:
		b = x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "yes", "y", "true", "1", "on":
			b = true
		case "no", "n", "false", "0", "off":
			b = false
		default:
			return nil
		}
	case float64, int, int64:
		f, _ := toFloat(x)
		switch f {
		case 1:
			b = true
		case 0:
			b = false
		default:
			return nil
		}
	default:
		return nil
	}
	return &b
}

func toOS(v any) model.OS {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case model.OS:
		s = string(x)
	default:
		return model.OSAny
	}
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "ios"), strings.Contains(s, "iphone"), strings.Contains(s, "apple"):
		return model.OSIOS
	case strings.Contains(s, "android"):
		return model.OSAndroid
	}
	return model.OSAny
}

// toList splits, trims, transforms and de-duplicates a list value case-insensitively.
// The first spelling of each entry wins.
func toList(v any, transform func(string) string) []string {
	var items []string
	switch x := v.(type) {
	case string:
		items = listSeparator.Split(x, -1)
	case []string:
		items = x
	case []any:
		for _, e := range x {
			if s, ok := e.(string); ok {
				items = append(items, s)
			}
		}
	default:
		return nil
	}

	var out []string
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		item = transform(item)
		key := strings.ToLower(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

func isTrue(b *bool) bool {
	return b != nil && *b
}
