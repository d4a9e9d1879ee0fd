package engine

import (
	"phonefinder/internal/catalog"
	"phonefinder/internal/model"
)

func ip(v int) *int         { return &v }
func fp(v float64) *float64 { return &v }
func bp(v bool) *bool       { return &v }

func phone(brand, name string, year int, price *float64, display float64, battery int, ram, storage, camera float64, os, feats string) model.Phone {
	return model.Phone{
		ID:              catalog.Slugify(brand + "-" + name),
		Brand:           brand,
		Model:           name,
		Slug:            catalog.Slugify(brand + "-" + name),
		ReleaseYear:     ip(year),
		PriceUSD:        price,
		DisplayInches:   fp(display),
		BatteryMAh:      ip(battery),
		RAMGB:           fp(ram),
		StorageGB:       fp(storage),
		MainCameraMP:    fp(camera),
		OS:              os,
		NotableFeatures: feats,
	}
}

func fixturePhones() []model.Phone {
	return []model.Phone{
		phone("Samsung", "Galaxy A55", 2024, fp(450), 6.6, 5000, 8, 128, 50, "Android 14", "5G; IP67"),
		phone("Google", "Pixel 8a", 2024, fp(499), 6.1, 4492, 8, 128, 64, "Android 14", "5G; eSIM"),
		phone("Samsung", "Galaxy S23", 2023, fp(550), 6.1, 3900, 8, 128, 50, "Android 13", "5G; IP68; wireless charging"),
		phone("Sony", "Xperia 10 V", 2023, fp(399), 6.1, 5000, 6, 128, 48, "Android 13", "5G; IP68"),
		phone("Apple", "iPhone 15", 2023, fp(799), 6.1, 3349, 6, 128, 48, "iOS 17", "5G; eSIM; IP68"),
		phone("Apple", "iPhone 13 mini", 2021, fp(599), 5.4, 2438, 4, 128, 12, "iOS 15", "5G; IP68"),
		phone("Samsung", "Galaxy S24 Ultra", 2024, fp(1299), 6.8, 5000, 12, 256, 200, "Android 14", "5G; IP68; wireless charging; telephoto"),
		phone("Motorola", "Moto G Power", 2022, nil, 6.5, 5000, 4, 64, 50, "Android 12", ""),
		phone("Asus", "Zenfone 10", 2023, fp(699), 5.9, 4300, 8, 256, 50, "Android 13", "5G; IP68; wireless charging"),
		phone("Nokia", "G42", 2023, fp(179), 6.56, 5000, 4, 128, 50, "Android 13", "5G"),
	}
}

func fixture() *catalog.Catalog {
	return catalog.New(fixturePhones())
}

func slugsOf(phones []model.Phone) []string {
	out := make([]string, 0, len(phones))
	for _, p := range phones {
		out = append(out, p.Slug)
	}
	return out
}

func candidateSlugs(cands []model.Candidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.Slug)
	}
	return out
}
