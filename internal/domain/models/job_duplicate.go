package models

import "time"

type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

type DetectionMethod string

const (
	MethodUrlMatch   DetectionMethod = "url_match"
	MethodFuzzyMatch DetectionMethod = "fuzzy_match"
	MethodManual     DetectionMethod = "manual"
)

// JobDuplicate is a directed edge canonical -> duplicate. Rows with
// ManuallyConfirmed set are owned by the user and never touched by the
// automatic detector.
type JobDuplicate struct {
	ID                int64
	CanonicalJobID    int64
	DuplicateJobID    int64
	UserID            int64
	OverallSimilarity int
	ConfidenceLevel   ConfidenceLevel
	DetectionMethod   DetectionMethod
	ManuallyConfirmed bool
	ConfirmedBy       *int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// MatchResult is what a similarity strategy reports for one job pair.
type MatchResult struct {
	Similarity int
	Method     DetectionMethod
}
