package services

import (
	"math"

	"github.com/jobmate/dedup-service/internal/config"
	"github.com/jobmate/dedup-service/internal/domain/models"
	"github.com/jobmate/dedup-service/internal/logger"
	"github.com/jobmate/dedup-service/internal/matching"
	log "github.com/sirupsen/logrus"
)

// SimilarityStrategy scores one pair of jobs. The weighted field scorer below
// is the default; the orchestrator only depends on this interface so the
// algorithm can be swapped without touching it.
type SimilarityStrategy interface {
	Score(a, b models.Job) models.MatchResult
}

// WeightedFieldScorer combines four normalized field comparisons into one
// 0-100 score. An exact URL match short-circuits to 100 before any fuzzy
// work happens.
type WeightedFieldScorer struct {
	cfg config.DedupConfig
}

func NewWeightedFieldScorer(cfg config.DedupConfig) *WeightedFieldScorer {
	return &WeightedFieldScorer{cfg: cfg}
}

func (s *WeightedFieldScorer) Score(a, b models.Job) models.MatchResult {

	urlA, urlB := matching.NormalizeURL(a.Url), matching.NormalizeURL(b.Url)
	if urlA != "" && urlA == urlB {
		return models.MatchResult{Similarity: 100, Method: models.MethodUrlMatch}
	}

	title := s.safeSubScore("title", func() float64 {
		return max(
			matching.LevenshteinRatio(matching.NormalizeTitle(a.Title), matching.NormalizeTitle(b.Title)),
			matching.TokenSetRatio(matching.NormalizeTitle(a.Title), matching.NormalizeTitle(b.Title)),
		)
	})

	company := s.safeSubScore("company", func() float64 {
		return max(
			matching.LevenshteinRatio(matching.NormalizeCompany(a.Company), matching.NormalizeCompany(b.Company)),
			matching.TokenSetRatio(matching.NormalizeCompany(a.Company), matching.NormalizeCompany(b.Company)),
		)
	})

	location := s.safeSubScore("location", func() float64 {
		return matching.JaccardTokens(matching.NormalizeLocation(a.Location), matching.NormalizeLocation(b.Location))
	})

	description := s.safeSubScore("description", func() float64 {
		return matching.JaccardTokens(matching.NormalizeText(a.Description), matching.NormalizeText(b.Description))
	})

	weighted := s.cfg.TitleWeight*title +
		s.cfg.CompanyWeight*company +
		s.cfg.LocationWeight*location +
		s.cfg.DescriptionWeight*description

	return models.MatchResult{
		Similarity: int(math.Round(weighted)),
		Method:     models.MethodFuzzyMatch,
	}
}

// safeSubScore keeps one malformed field from sinking the whole pair: a
// panicking metric contributes 0 instead of aborting the batch.
func (s *WeightedFieldScorer) safeSubScore(field string, fn func() float64) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeScorer).
				Errorf("similarity sub-score panicked on field %s: %v", field, r)
			score = 0
		}
	}()
	return fn()
}

// Classify maps a similarity score onto a confidence tier. URL matches are
// always high confidence regardless of the number.
func Classify(result models.MatchResult, cfg config.DedupConfig) (models.ConfidenceLevel, bool) {

	if result.Method == models.MethodUrlMatch {
		return models.ConfidenceHigh, true
	}
	if result.Similarity >= cfg.HighConfidenceThreshold {
		return models.ConfidenceHigh, true
	}
	if result.Similarity >= cfg.MatchThreshold {
		return models.ConfidenceMedium, true
	}
	return "", false
}
