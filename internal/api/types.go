package api

// EvaluateRequest triggers a known-answer evaluation run.
type EvaluateRequest struct {
	Limit int `json:"limit"`
}

// MergeRequest names one food group to merge.
type MergeRequest struct {
	Name string `json:"name" binding:"required"`
}

// ClassifyRequest carries a study excerpt for evidence classification.
type ClassifyRequest struct {
	Title      string `json:"title,omitempty"`
	Journal    string `json:"journal,omitempty"`
	Year       int    `json:"year,omitempty"`
	DOI        string `json:"doi,omitempty"`
	StudyType  string `json:"study_type,omitempty"`
	SampleSize int    `json:"sample_size,omitempty"`
	Excerpt    string `json:"excerpt" binding:"required"`
}

// ClassifyResponse is the classified evidence tier and confidence.
type ClassifyResponse struct {
	EvidenceTier string  `json:"evidence_tier"`
	Confidence   float64 `json:"confidence"`
}
