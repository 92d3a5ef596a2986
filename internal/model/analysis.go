package model

// AnalysisRequest is the JSON body accepted by POST /analyze.
type AnalysisRequest struct {
	URL string `json:"url"`
}

// AnalysisResult holds the complete scoring of a live site.
type AnalysisResult struct {
	Scores   Scores    `json:"scores"`
	Feedback *Feedback `json:"feedback,omitempty"`
}

// Scores are the per-category scores, each in [0, 100].
type Scores struct {
	HTML       int `json:"html"`
	CSS        int `json:"css"`
	JavaScript int `json:"javascript"`
}

// Feedback lists the human-readable findings per category.
type Feedback struct {
	HTML       []string `json:"html"`
	CSS        []string `json:"css"`
	JavaScript []string `json:"javascript"`
}

// CategoryResult is the outcome of evaluating one asset class.
type CategoryResult struct {
	Score    int
	Feedback []string
}

// ErrorResponse is the JSON shape returned on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}
