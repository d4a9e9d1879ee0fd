package model

// RecommendRequest represents a recommendation request.
// Intent carries explicit (possibly untyped) preferences, Text optional free text for the extractors.
type RecommendRequest struct {
	Intent map[string]any `json:"intent,omitempty"`
	Text   string         `json:"text,omitempty"`
	TopN   int            `json:"top_n,omitempty"`
}

// RecommendResponse represents a recommendation result
type RecommendResponse struct {
	RecommendationID string      `json:"recommendation_id"`
	Picks            []Candidate `json:"picks"`
	Intent           Intent      `json:"intent"`
	Count            int         `json:"count"`
	Strategy         string      `json:"strategy"`
	Took             int64       `json:"took_ms"` // Response time in milliseconds
}

// IntentRequest carries a raw intent plus optional free text
type IntentRequest struct {
	Intent map[string]any `json:"intent,omitempty"`
	Text   string         `json:"text,omitempty"`
}

// IntentResponse returns the normalized intent
type IntentResponse struct {
	Intent Intent `json:"intent"`
}

// CountResponse represents a live count of soft-filtered matches
type CountResponse struct {
	Intent Intent `json:"intent"`
	Count  int    `json:"count"`
}

// RecommendationLog is one persisted recommendation
type RecommendationLog struct {
	ID       string    `json:"recommendation_id" db:"id"`
	Text     string    `json:"text" db:"query_text"`
	Intent   string    `json:"intent" db:"intent"` // JSON-encoded effective intent
	Strategy string    `json:"strategy" db:"strategy"`
	Count    int       `json:"count" db:"result_count"`
	Slugs    JSONArray `json:"slugs" db:"returned_slugs"`
	TookMs   int64     `json:"took_ms" db:"response_time_ms"`
}

// RecommendationDetail is a stored recommendation with its feedback tally
type RecommendationDetail struct {
	RecommendationLog
	FeedbackCount int `json:"feedback_count"`
}

// FeedbackRequest represents user feedback/action
type FeedbackRequest struct {
	RecommendationID string `json:"recommendation_id" binding:"required"`
	Slug             string `json:"slug" binding:"required"`
	Action           string `json:"action" binding:"required"` // click, view_details, purchase, dismiss
}

// FeedbackResponse represents feedback response
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
