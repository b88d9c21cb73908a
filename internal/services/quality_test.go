package services

import (
	"strings"
	"testing"

	"github.com/jobmate/dedup-service/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func richJob() models.Job {
	return models.Job{
		ID:              1,
		Title:           "Senior Software Engineer",
		Company:         "Apple",
		Location:        "Cupertino, CA",
		Description:     strings.Repeat("Detailed responsibilities and requirements. ", 20),
		SalaryMin:       intPtr(150000),
		SalaryMax:       intPtr(210000),
		WorkArrangement: models.Hybrid,
		JobType:         models.FullTime,
		ExperienceLevel: models.Senior,
	}
}

func sparseJob() models.Job {
	return models.Job{
		ID:          2,
		Title:       "Senior Software Engineer",
		Company:     "Apple",
		Location:    "Cupertino, CA",
		Description: "Great job.",
	}
}

func Test_Metadata_RichJobOutscoresSparseJob(t *testing.T) {

	scorer := NewQualityScorer()

	rich := scorer.Metadata(richJob())
	sparse := scorer.Metadata(sparseJob())

	assert.Greater(t, rich.CompletenessScore, sparse.CompletenessScore)
	assert.Greater(t, rich.OverallQualityScore, sparse.OverallQualityScore)
}

func Test_Metadata_IsDeterministic(t *testing.T) {

	first := NewQualityScorer().Metadata(richJob())
	second := NewQualityScorer().Metadata(richJob())

	assert.Equal(t, first.CompletenessScore, second.CompletenessScore)
	assert.Equal(t, first.OverallQualityScore, second.OverallQualityScore)
	assert.Equal(t, first.ContentHash, second.ContentHash)
}

func Test_Metadata_CompletenessBounds(t *testing.T) {

	scorer := NewQualityScorer()

	full := scorer.Metadata(richJob())
	assert.Equal(t, 100, full.CompletenessScore)

	empty := scorer.Metadata(models.Job{ID: 3, Title: "X"})
	assert.Equal(t, 0, empty.CompletenessScore)
	assert.LessOrEqual(t, empty.OverallQualityScore, 10)
}

func Test_Metadata_PaddedDescriptionHasDiminishingReturns(t *testing.T) {

	scorer := NewQualityScorer()

	long := richJob()
	long.Description = strings.Repeat("word ", 300) // ~1500 chars

	padded := richJob()
	padded.ID = 4
	padded.Description = strings.Repeat("word ", 3000) // spam padding

	assert.LessOrEqual(t,
		scorer.Metadata(padded).OverallQualityScore-scorer.Metadata(long).OverallQualityScore,
		1)
}

func Test_Metadata_CacheKeyedByContentNotID(t *testing.T) {

	scorer := NewQualityScorer()

	a := richJob()
	b := richJob()
	b.ID = 99

	metaA := scorer.Metadata(a)
	metaB := scorer.Metadata(b)

	assert.Equal(t, int64(1), metaA.JobID)
	assert.Equal(t, int64(99), metaB.JobID)
	assert.Equal(t, metaA.OverallQualityScore, metaB.OverallQualityScore)
}
