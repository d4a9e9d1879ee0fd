package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"phonefinder/internal/catalog"
	"phonefinder/internal/engine"
	"phonefinder/internal/logging"
	"phonefinder/internal/metrics"
	"phonefinder/internal/model"
	"phonefinder/internal/repository"
)

var (
	// ErrPhoneNotFound is returned when a slug is not in the catalog
	ErrPhoneNotFound = errors.New("phone not found")
	// ErrRecommendationNotFound is returned for an id that was never served
	ErrRecommendationNotFound = errors.New("recommendation not found")
	// ErrNoHistory is returned when no store is configured
	ErrNoHistory = errors.New("recommendation history is not stored")
)

// RecommendationLogger persists recommendations and the feedback on them.
// Lookups return repository.ErrNotFound for unknown ids.
type RecommendationLogger interface {
	LogRecommendation(ctx context.Context, entry *model.RecommendationLog) error
	GetRecommendation(ctx context.Context, id string) (*model.RecommendationLog, error)
	LogFeedback(ctx context.Context, recommendationID, slug, action string) error
	FeedbackCount(ctx context.Context, recommendationID string) (int, error)
}

// Options tunes a RecommendService
type Options struct {
	Params      engine.Params
	DefaultTopN int
	MaxTopN     int
}

// RecommendService handles recommendation business logic
type RecommendService struct {
	catalog *catalog.Catalog
	parser  *IntentParser
	store   RecommendationLogger
	opts    Options
	logger  zerolog.Logger
	pending sync.WaitGroup

	// ids whose log write has not finished yet
	inflight sync.Map
}

// NewRecommendService creates a new recommendation service. parser and store
// may be nil: without a parser free text is ignored, without a store nothing
// is persisted.
func NewRecommendService(cat *catalog.Catalog, parser *IntentParser, store RecommendationLogger, opts Options) *RecommendService {
	if opts.DefaultTopN <= 0 {
		opts.DefaultTopN = 3
	}
	if opts.MaxTopN < opts.DefaultTopN {
		opts.MaxTopN = opts.DefaultTopN
	}
	return &RecommendService{
		catalog: cat,
		parser:  parser,
		store:   store,
		opts:    opts,
		logger:  logging.Component("recommend"),
	}
}

// CatalogSize returns the number of phones being served
func (s *RecommendService) CatalogSize() int {
	return s.catalog.Len()
}

// Recommend resolves the request intent and runs the recommendation pipeline
func (s *RecommendService) Recommend(ctx context.Context, req *model.RecommendRequest) (*model.RecommendResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	startTime := time.Now()

	raw := s.resolveIntent(ctx, req.Intent, req.Text)
	n := s.topN(req.TopN)
	result := engine.Recommend(s.catalog, raw, n, s.opts.Params)

	elapsed := time.Since(startTime)
	metrics.RecordRecommendation(string(result.Strategy), len(result.Picks), elapsed)

	response := &model.RecommendResponse{
		RecommendationID: uuid.NewString(),
		Picks:            result.Picks,
		Intent:           result.Intent,
		Count:            result.Count,
		Strategy:         string(result.Strategy),
		Took:             elapsed.Milliseconds(),
	}

	s.logger.Info().
		Str("recommendation_id", response.RecommendationID).
		Str("strategy", response.Strategy).
		Int("picks", len(response.Picks)).
		Int("count", response.Count).
		Dur("took", elapsed).
		Msg("recommendation served")

	s.logAsync(req.Text, response)

	return response, nil
}

// Count returns how many phones the soft filter keeps for the request intent
func (s *RecommendService) Count(ctx context.Context, req *model.IntentRequest) (*model.CountResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	in := engine.Sanitize(engine.Normalize(s.resolveIntent(ctx, req.Intent, req.Text)))
	return &model.CountResponse{
		Intent: in,
		Count:  engine.LiveCount(s.catalog, in),
	}, nil
}

// Normalize returns the typed, sanitized intent for the request
func (s *RecommendService) Normalize(ctx context.Context, req *model.IntentRequest) (*model.IntentResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	in := engine.Sanitize(engine.Normalize(s.resolveIntent(ctx, req.Intent, req.Text)))
	return &model.IntentResponse{Intent: in}, nil
}

// GetPhone looks a catalog record up by slug
func (s *RecommendService) GetPhone(slug string) (model.Phone, error) {
	p, ok := s.catalog.BySlug(slug)
	if !ok {
		return model.Phone{}, ErrPhoneNotFound
	}
	return p, nil
}

// LogFeedback logs user feedback on a recommended phone. With a store the
// recommendation id must have been served.
func (s *RecommendService) LogFeedback(ctx context.Context, req *model.FeedbackRequest) error {
	if _, ok := s.catalog.BySlug(req.Slug); !ok {
		return ErrPhoneNotFound
	}
	if s.store == nil {
		s.logger.Debug().Str("slug", req.Slug).Str("action", req.Action).Msg("feedback received, no store configured")
		return nil
	}
	if _, pending := s.inflight.Load(req.RecommendationID); !pending {
		if _, err := s.store.GetRecommendation(ctx, req.RecommendationID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRecommendationNotFound
			}
			return err
		}
	}
	return s.store.LogFeedback(ctx, req.RecommendationID, strings.ToLower(req.Slug), req.Action)
}

// GetRecommendation returns a served recommendation and how much feedback it got
func (s *RecommendService) GetRecommendation(ctx context.Context, id string) (*model.RecommendationDetail, error) {
	if s.store == nil {
		return nil, ErrNoHistory
	}
	entry, err := s.store.GetRecommendation(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecommendationNotFound
		}
		return nil, err
	}
	n, err := s.store.FeedbackCount(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.RecommendationDetail{RecommendationLog: *entry, FeedbackCount: n}, nil
}

// Wait blocks until pending recommendation logs are written
func (s *RecommendService) Wait() {
	s.pending.Wait()
}

// resolveIntent merges free-text extraction into the explicit intent
func (s *RecommendService) resolveIntent(ctx context.Context, explicit map[string]any, text string) engine.RawIntent {
	if s.parser == nil {
		return engine.MergeDelta(explicit, nil)
	}
	return s.parser.Parse(ctx, text, explicit)
}

func (s *RecommendService) topN(n int) int {
	if n <= 0 {
		return s.opts.DefaultTopN
	}
	return min(n, s.opts.MaxTopN)
}

// logAsync persists the recommendation without blocking the request
func (s *RecommendService) logAsync(text string, resp *model.RecommendResponse) {
	if s.store == nil {
		return
	}

	intentJSON, err := json.Marshal(resp.Intent)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode intent for log")
		return
	}
	slugs := make(model.JSONArray, 0, len(resp.Picks))
	for _, p := range resp.Picks {
		slugs = append(slugs, p.Slug)
	}
	entry := &model.RecommendationLog{
		ID:       resp.RecommendationID,
		Text:     text,
		Intent:   string(intentJSON),
		Strategy: resp.Strategy,
		Count:    resp.Count,
		Slugs:    slugs,
		TookMs:   resp.Took,
	}

	s.inflight.Store(entry.ID, struct{}{})
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer s.inflight.Delete(entry.ID)
		if err := s.store.LogRecommendation(context.Background(), entry); err != nil {
			s.logger.Warn().Err(err).Str("recommendation_id", entry.ID).Msg("failed to log recommendation")
		}
	}()
}
