package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"phonefinder/internal/engine"
	"phonefinder/internal/logging"
	"phonefinder/internal/metrics"
)

// Extractor proposes a partial intent from free text
type Extractor interface {
	Name() string
	Extract(ctx context.Context, text string) (engine.RawIntent, error)
}

// switchable is implemented by extractors that can be configured off
type switchable interface {
	IsEnabled() bool
}

var (
	_ Extractor  = (*RuleExtractor)(nil)
	_ Extractor  = (*OpenAIClient)(nil)
	_ switchable = (*OpenAIClient)(nil)
)

// IntentParser turns free text into intent fields using a chain of extractors
type IntentParser struct {
	extractors []Extractor
	logger     zerolog.Logger
}

// NewIntentParser creates a parser that consults extractors in order.
// Earlier extractors win: a later one only fills fields still empty.
func NewIntentParser(extractors ...Extractor) *IntentParser {
	return &IntentParser{
		extractors: extractors,
		logger:     logging.Component("intent"),
	}
}

// Parse merges what the extractors find in text into the empty fields of
// current and returns a new map. Explicit values in current always win.
// A failing extractor is logged and contributes nothing.
func (p *IntentParser) Parse(ctx context.Context, text string, current engine.RawIntent) engine.RawIntent {
	merged := engine.MergeDelta(current, nil)

	text = strings.TrimSpace(text)
	if text == "" || p == nil {
		return merged
	}

	for _, ex := range p.extractors {
		if ex == nil {
			continue
		}
		if s, ok := ex.(switchable); ok && !s.IsEnabled() {
			continue
		}

		delta, err := ex.Extract(ctx, text)
		if err != nil {
			p.logger.Warn().Err(err).Str("extractor", ex.Name()).Msg("intent extraction failed, continuing without it")
			metrics.RecordExtractorFailure(ex.Name())
			continue
		}

		merged = engine.MergeDelta(merged, delta)
	}

	return merged
}
