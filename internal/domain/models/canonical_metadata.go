package models

import "time"

// CanonicalJobMetadata caches the quality scores of one job so pairwise
// canonical selection never recomputes them mid-comparison. Refreshed on job
// writes and at the start of every dedup run.
type CanonicalJobMetadata struct {
	JobID               int64 `gorm:"primaryKey"`
	CompletenessScore   int
	OverallQualityScore int
	ContentHash         string
	UpdatedAt           time.Time
}
