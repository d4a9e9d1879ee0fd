package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phonefinder/internal/model"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := New("sqlite", filepath.Join(t.TempDir(), "phones.db"), 1, 1)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() }) //nolint:errcheck
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func ptr[T any](v T) *T { return &v }

func samplePhones() []model.Phone {
	return []model.Phone{
		{
			ID: "20", Brand: "Google", Model: "Pixel 8a", Slug: "google-pixel-8a",
			ReleaseYear: ptr(2024), PriceUSD: ptr(499.0), DisplayInches: ptr(6.1),
			BatteryMAh: ptr(4492), RAMGB: ptr(8.0), StorageGB: ptr(128.0), MainCameraMP: ptr(64.0),
			OS: "Android", NotableFeatures: "5G; wireless charging",
		},
		{
			ID: "3", Brand: "Motorola", Model: "Moto G Power", Slug: "motorola-moto-g-power",
			ReleaseYear: ptr(2022), DisplayInches: ptr(6.5), OS: "Android",
		},
	}
}

func TestRepository_UpsertAndLoad(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	n, err := repo.UpsertPhones(ctx, samplePhones())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := repo.LoadPhones(ctx)
	require.NoError(t, err)
	assert.Equal(t, samplePhones(), got, "round trip keeps values, unknowns and catalog order")
}

func TestRepository_UpsertReplaces(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.UpsertPhones(ctx, samplePhones())
	require.NoError(t, err)

	updated := samplePhones()[:1]
	updated[0].PriceUSD = ptr(449.0)
	_, err = repo.UpsertPhones(ctx, updated)
	require.NoError(t, err)

	got, err := repo.LoadPhones(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "google-pixel-8a", got[0].Slug)
	require.NotNil(t, got[0].PriceUSD)
	assert.InDelta(t, 449.0, *got[0].PriceUSD, 1e-9)
	assert.Equal(t, samplePhones()[1], got[1], "untouched row is kept")
}

func TestRepository_UpsertRejectsMissingID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.UpsertPhones(ctx, []model.Phone{{Brand: "Nokia", Model: "G42"}})
	require.Error(t, err)

	got, err := repo.LoadPhones(ctx)
	require.NoError(t, err)
	assert.Empty(t, got, "failed batch is rolled back")
}

func TestRepository_RecommendationLog(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	entry := &model.RecommendationLog{
		ID:       "rec-1",
		Text:     "small android",
		Intent:   `{"os":"android"}`,
		Strategy: "strict budget",
		Count:    4,
		Slugs:    model.JSONArray{"google-pixel-8a", "sony-xperia-10-v"},
		TookMs:   3,
	}
	require.NoError(t, repo.LogRecommendation(ctx, entry))

	got, err := repo.GetRecommendation(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, entry, got)

	assert.Error(t, repo.LogRecommendation(ctx, entry), "duplicate id")

	_, err = repo.GetRecommendation(ctx, "rec-404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_Feedback(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.LogFeedback(ctx, "rec-1", "google-pixel-8a", "click"))
	require.NoError(t, repo.LogFeedback(ctx, "rec-1", "google-pixel-8a", "purchase"))

	n, err := repo.FeedbackCount(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.FeedbackCount(ctx, "rec-2")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New("mysql", "whatever", 1, 1)
	assert.Error(t, err)
}
