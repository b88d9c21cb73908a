package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/jobmate/dedup-service/internal/domain/models"
	gocache "github.com/patrickmn/go-cache"
)

// descriptionSaturationLength is where extra description text stops adding
// quality: long enough to reward detail, short enough that padded spam
// cannot outrank a well-structured posting.
const descriptionSaturationLength = 1500

// QualityScorer computes the completeness and overall quality of a single
// job, used to decide which of two matched postings becomes canonical.
// Deterministic and side-effect free; results are cached by content hash so
// repeated runs over unchanged jobs skip recomputation.
type QualityScorer struct {
	cache *gocache.Cache
}

func NewQualityScorer() *QualityScorer {
	return &QualityScorer{cache: gocache.New(30*time.Minute, time.Hour)}
}

func (q *QualityScorer) Metadata(job models.Job) models.CanonicalJobMetadata {

	hash := contentHash(job)
	if cached, found := q.cache.Get(hash); found {
		meta := cached.(models.CanonicalJobMetadata)
		meta.JobID = job.ID
		return meta
	}

	completeness := completenessScore(job)
	meta := models.CanonicalJobMetadata{
		JobID:               job.ID,
		CompletenessScore:   completeness,
		OverallQualityScore: overallQualityScore(job, completeness),
		ContentHash:         hash,
		UpdatedAt:           time.Now().UTC(),
	}
	q.cache.SetDefault(hash, meta)
	return meta
}

// completenessScore is the percentage of nice-to-have fields populated.
func completenessScore(job models.Job) int {

	checks := []bool{
		job.SalaryMin != nil,
		job.SalaryMax != nil,
		job.WorkArrangement != "",
		job.JobType != "",
		job.ExperienceLevel != "",
		job.Location != "",
		job.HasMeaningfulDescription(),
	}

	populated := 0
	for _, ok := range checks {
		if ok {
			populated++
		}
	}
	return int(math.Round(100 * float64(populated) / float64(len(checks))))
}

// overallQualityScore blends completeness with content richness: description
// length with diminishing returns plus fixed bonuses for structured fields.
func overallQualityScore(job models.Job, completeness int) int {

	score := 0.6 * float64(completeness)

	descLength := min(len(job.Description), descriptionSaturationLength)
	score += 25 * float64(descLength) / float64(descriptionSaturationLength)

	if job.HasSalary() {
		score += 5
	}
	if job.JobType != "" {
		score += 5
	}
	if job.ExperienceLevel != "" {
		score += 5
	}

	return min(int(math.Round(score)), 100)
}

func contentHash(job models.Job) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%s|%s|%d|%d|%s|%s|%s",
		job.Title, job.Company, job.Location, job.Description,
		valueOr(job.SalaryMin, -1), valueOr(job.SalaryMax, -1),
		job.WorkArrangement, job.JobType, job.ExperienceLevel))
	return hex.EncodeToString(sum[:])
}

func valueOr(ptr *int, fallback int) int {
	if ptr == nil {
		return fallback
	}
	return *ptr
}
