package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"phonefinder/internal/model"
)

// Columns is the header layout produced by the dataset pipeline
var Columns = []string{
	"ID", "Brand", "Model", "Slug", "ReleaseYear", "PriceUSD", "DisplayInches",
	"Battery_mAh", "RAM_GB", "Storage_GB", "MainCameraMP", "OS", "Weight_g",
	"NotableFeatures", "SourceFiles",
}

// minPlausiblePrice is the price at or below which a listed price is treated as unknown
const minPlausiblePrice = 20.0

var premiumBrands = map[string]bool{
	"apple": true, "samsung": true, "google": true, "sony": true, "asus": true, "oneplus": true,
}

// LoadOptions configures catalog loading
type LoadOptions struct {
	// EstimateMissingPrices fills unknown prices with a heuristic estimate
	EstimateMissingPrices bool
}

// LoadFile loads a catalog from a CSV file. A missing file yields an empty catalog.
func LoadFile(path string, opts LoadOptions) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(nil), nil
		}
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return LoadCSV(f, opts)
}

// LoadCSV parses a phone CSV. Columns may be missing or reordered; malformed cells become unknown.
func LoadCSV(r io.Reader, opts LoadOptions) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return New(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}

	var phones []model.Phone
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog line %d: %w", line, err)
		}

		row := csvRow{index: index, record: record}
		phone := row.phone()
		if phone.Brand == "" && phone.Model == "" {
			continue
		}
		if opts.EstimateMissingPrices && phone.PriceUSD == nil {
			est := EstimatePrice(phone)
			phone.PriceUSD = &est
		}
		phones = append(phones, phone)
	}

	return New(phones), nil
}

type csvRow struct {
	index  map[string]int
	record []string
}

func (r csvRow) str(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.record) {
		return ""
	}
	v := strings.TrimSpace(r.record[i])
	if strings.EqualFold(v, "nan") || strings.EqualFold(v, "none") {
		return ""
	}
	return v
}

func (r csvRow) float(col string) *float64 {
	v, err := strconv.ParseFloat(r.str(col), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func (r csvRow) int(col string) *int {
	f := r.float(col)
	if f == nil {
		return nil
	}
	v := int(*f)
	return &v
}

func (r csvRow) phone() model.Phone {
	p := model.Phone{
		ID:              r.str("ID"),
		Brand:           r.str("Brand"),
		Model:           r.str("Model"),
		Slug:            r.str("Slug"),
		ReleaseYear:     r.int("ReleaseYear"),
		PriceUSD:        r.float("PriceUSD"),
		DisplayInches:   r.float("DisplayInches"),
		BatteryMAh:      r.int("Battery_mAh"),
		RAMGB:           r.float("RAM_GB"),
		StorageGB:       r.float("Storage_GB"),
		MainCameraMP:    r.float("MainCameraMP"),
		OS:              r.str("OS"),
		WeightG:         r.float("Weight_g"),
		NotableFeatures: r.str("NotableFeatures"),
	}
	if p.PriceUSD != nil && *p.PriceUSD <= minPlausiblePrice {
		p.PriceUSD = nil
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Brand + "-" + p.Model)
	}
	if p.ID == "" {
		p.ID = p.Slug
	}
	return p
}

// EstimatePrice returns a rough USD price from release year, memory, storage and brand tier
func EstimatePrice(p model.Phone) float64 {
	base := 250.0
	year := 0
	if p.ReleaseYear != nil {
		year = *p.ReleaseYear
	}
	switch {
	case year >= 2024:
		base += 150
	case year >= 2022:
		base += 80
	}
	if p.RAMGB != nil {
		base += *p.RAMGB * 18.0
	}
	if p.StorageGB != nil {
		base += *p.StorageGB / 128.0 * 50.0
	}
	if premiumBrands[strings.ToLower(p.Brand)] {
		base *= 1.2
	}
	return math.Round(math.Max(base, 120.0)*100) / 100
}
