package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phonefinder/internal/catalog"
	"phonefinder/internal/config"
	"phonefinder/internal/engine"
	"phonefinder/internal/model"
	"phonefinder/internal/repository"
	"phonefinder/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func phone(slug, brand, name, os string, year int, price, inches float64) model.Phone {
	return model.Phone{
		ID: slug, Slug: slug, Brand: brand, Model: name, OS: os,
		ReleaseYear: &year, PriceUSD: &price, DisplayInches: &inches,
	}
}

func newTestService(store service.RecommendationLogger) *service.RecommendService {
	cat := catalog.New([]model.Phone{
		phone("pixel-8a", "Google", "Pixel 8a", "Android", 2024, 499, 6.1),
		phone("galaxy-s23", "Samsung", "Galaxy S23", "Android", 2023, 550, 6.1),
		phone("xperia-10-v", "Sony", "Xperia 10 V", "Android", 2023, 399, 6.1),
		phone("iphone-15", "Apple", "iPhone 15", "iOS", 2023, 799, 6.1),
	})
	return service.NewRecommendService(cat, service.NewIntentParser(service.NewRuleExtractor()), store, service.Options{
		Params:      engine.DefaultParams(),
		DefaultTopN: 3,
		MaxTopN:     10,
	})
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return NewRouter(newTestService(nil), config.ServerConfig{}, BuildInfo{Version: "test"})
}

// newStoredRouter serves from a service that logs to a temporary sqlite database
func newStoredRouter(t *testing.T) (*gin.Engine, *service.RecommendService) {
	t.Helper()
	repo, err := repository.New("sqlite", filepath.Join(t.TempDir(), "logs.db"), 1, 1)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() }) //nolint:errcheck
	require.NoError(t, repo.Migrate(context.Background()))

	svc := newTestService(repo)
	return NewRouter(svc, config.ServerConfig{}, BuildInfo{Version: "test"}), svc
}

func do(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRecommendEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/recommend", `{"intent": {"budget": 600, "os": "android"}, "top_n": 2}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.RecommendResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RecommendationID)
	assert.Len(t, resp.Picks, 2)
	assert.Equal(t, "strict budget", resp.Strategy)
	for _, p := range resp.Picks {
		assert.NotEqual(t, "Apple", p.Brand)
	}
}

func TestRecommendEndpoint_FreeText(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/recommend", `{"text": "an iphone under 900"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.RecommendResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Picks, 1)
	assert.Equal(t, "iphone-15", resp.Picks[0].Slug)
}

func TestRecommendEndpoint_BadRequests(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"intent":`},
		{"negative top_n", `{"top_n": -1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/api/v1/recommend", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestIntentEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/intent/normalize", `{"intent": {"budget": "$500", "prefer_small": "yes", "prefer_large": true}}`)
	require.Equal(t, http.StatusOK, w.Code)
	var norm model.IntentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &norm))
	require.NotNil(t, norm.Intent.Budget)
	assert.InDelta(t, 500.0, *norm.Intent.Budget, 1e-9)
	assert.Nil(t, norm.Intent.PreferSmall)
	assert.Nil(t, norm.Intent.PreferLarge)

	w = do(t, router, http.MethodPost, "/api/v1/intent/count", `{"intent": {"os": "android"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	var count model.CountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &count))
	assert.Equal(t, 3, count.Count)
}

func TestGetPhoneEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodGet, "/api/v1/phones/xperia-10-v", "")
	require.Equal(t, http.StatusOK, w.Code)
	var p model.Phone
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "Sony", p.Brand)

	w = do(t, router, http.MethodGet, "/api/v1/phones/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeedbackEndpoint(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"accepted", `{"recommendation_id": "r1", "slug": "pixel-8a", "action": "click"}`, http.StatusOK},
		{"missing fields", `{"slug": "pixel-8a"}`, http.StatusBadRequest},
		{"unknown action", `{"recommendation_id": "r1", "slug": "pixel-8a", "action": "like"}`, http.StatusBadRequest},
		{"unknown phone", `{"recommendation_id": "r1", "slug": "nope", "action": "click"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/api/v1/feedback", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestFeedbackAndHistoryWithStore(t *testing.T) {
	router, svc := newStoredRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/recommend", `{"text": "android under 600"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp model.RecommendResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Picks)
	svc.Wait()

	w = do(t, router, http.MethodPost, "/api/v1/feedback",
		`{"recommendation_id": "`+resp.RecommendationID+`", "slug": "`+resp.Picks[0].Slug+`", "action": "click"}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, router, http.MethodPost, "/api/v1/feedback", `{"recommendation_id": "never-served", "slug": "pixel-8a", "action": "click"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Recommendation not found")

	w = do(t, router, http.MethodGet, "/api/v1/recommendations/"+resp.RecommendationID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var detail model.RecommendationDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, resp.RecommendationID, detail.ID)
	assert.Equal(t, "android under 600", detail.Text)
	assert.Equal(t, 1, detail.FeedbackCount)
	assert.Len(t, detail.Slugs, len(resp.Picks))

	w = do(t, router, http.MethodGet, "/api/v1/recommendations/never-served", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecommendationHistoryDisabled(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodGet, "/api/v1/recommendations/r1", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthVersionAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, float64(4), health["phones"])

	w = do(t, router, http.MethodGet, "/version", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"test"`)

	do(t, router, http.MethodPost, "/api/v1/recommend", `{}`)
	w = do(t, router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "phonefinder_recommendations_total")

	w = do(t, router, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ", "x"))
	assert.Equal(t, []string{"x", "y"}, splitList("", "x,y"))
}
