package model

import (
	"database/sql/driver"
	"fmt"

	"github.com/goccy/go-json"
)

// Phone represents one catalog record
type Phone struct {
	ID              string   `json:"id" db:"id"`
	Brand           string   `json:"brand" db:"brand"`
	Model           string   `json:"model" db:"model"`
	Slug            string   `json:"slug" db:"slug"`
	ReleaseYear     *int     `json:"release_year,omitempty" db:"release_year"`
	PriceUSD        *float64 `json:"price_usd,omitempty" db:"price_usd"`
	DisplayInches   *float64 `json:"display_inches,omitempty" db:"display_inches"`
	BatteryMAh      *int     `json:"battery_mah,omitempty" db:"battery_mah"`
	RAMGB           *float64 `json:"ram_gb,omitempty" db:"ram_gb"`
	StorageGB       *float64 `json:"storage_gb,omitempty" db:"storage_gb"`
	MainCameraMP    *float64 `json:"main_camera_mp,omitempty" db:"main_camera_mp"`
	OS              string   `json:"os" db:"os"`
	WeightG         *float64 `json:"weight_g,omitempty" db:"weight_g"`
	NotableFeatures string   `json:"notable_features,omitempty" db:"notable_features"`
}

// Candidate is a phone annotated with its fit score and short highlights
type Candidate struct {
	Phone
	Score float64  `json:"score"`
	Pros  []string `json:"pros"`
	Cons  []string `json:"cons"`
}

// JSONArray represents a JSON array column
type JSONArray []string

// Value implements driver.Valuer interface
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface
func (j *JSONArray) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("unsupported JSONArray source %T", value)
	}
}
