package api

import (
	"time"

	"github.com/jobmate/dedup-service/internal/domain/models"
)

type runRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

type mergeRequest struct {
	CanonicalJobID int64 `json:"canonicalJobId" validate:"required,gt=0"`
	DuplicateJobID int64 `json:"duplicateJobId" validate:"required,gt=0"`
	UserID         int64 `json:"userId" validate:"required,gt=0"`
}

type relationshipResponse struct {
	CanonicalJobID    int64     `json:"canonicalJobId"`
	DuplicateJobID    int64     `json:"duplicateJobId"`
	OverallSimilarity int       `json:"overallSimilarity"`
	ConfidenceLevel   string    `json:"confidenceLevel"`
	DetectionMethod   string    `json:"detectionMethod"`
	ManuallyConfirmed bool      `json:"manuallyConfirmed"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func toRelationshipResponse(edge models.JobDuplicate) relationshipResponse {
	return relationshipResponse{
		CanonicalJobID:    edge.CanonicalJobID,
		DuplicateJobID:    edge.DuplicateJobID,
		OverallSimilarity: edge.OverallSimilarity,
		ConfidenceLevel:   string(edge.ConfidenceLevel),
		DetectionMethod:   string(edge.DetectionMethod),
		ManuallyConfirmed: edge.ManuallyConfirmed,
		CreatedAt:         edge.CreatedAt,
		UpdatedAt:         edge.UpdatedAt,
	}
}
