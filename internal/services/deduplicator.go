package services

import (
	"context"
	"strings"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/jobmate/dedup-service/internal/config"
	"github.com/jobmate/dedup-service/internal/domain"
	"github.com/jobmate/dedup-service/internal/domain/models"
	"github.com/jobmate/dedup-service/internal/events"
	"github.com/jobmate/dedup-service/internal/locks"
	"github.com/jobmate/dedup-service/internal/logger"
	"github.com/jobmate/dedup-service/internal/matching"
	"github.com/jobmate/dedup-service/internal/metrics"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

type jobRepository interface {
	GetActiveByUser(ctx context.Context, userID int64) ([]models.Job, error)
	SaveMetadata(ctx context.Context, metadata []models.CanonicalJobMetadata, chunkSize int) error
}

type duplicateRepository interface {
	UpsertAutomatic(ctx context.Context, edge models.JobDuplicate) (*models.JobDuplicate, error)
	CanonicalOf(ctx context.Context, jobID int64) (*models.JobDuplicate, error)
}

// RunSummary is returned from every run, even a partially failed one: the
// counts reflect what was actually persisted.
type RunSummary struct {
	TotalJobsProcessed      int `json:"totalJobsProcessed"`
	DuplicatesFound         int `json:"duplicatesFound"`
	CanonicalJobsIdentified int `json:"canonicalJobsIdentified"`
}

// Deduplicator runs batch duplicate detection over one user's job set:
// refresh quality metadata, score candidate pairs, pick canonicals, upsert
// relationship edges. Re-running on an unchanged set is idempotent.
type Deduplicator struct {
	bus        EventBus.Bus
	locker     locks.UserLocker
	jobs       jobRepository
	duplicates duplicateRepository
	scorer     SimilarityStrategy
	quality    *QualityScorer
	cfg        config.DedupConfig
}

func NewDeduplicator(bus EventBus.Bus, locker locks.UserLocker, jobRepo jobRepository,
	duplicateRepo duplicateRepository, scorer SimilarityStrategy, cfg config.DedupConfig) (*Deduplicator, error) {

	d := &Deduplicator{
		bus:        bus,
		locker:     locker,
		jobs:       jobRepo,
		duplicates: duplicateRepo,
		scorer:     scorer,
		quality:    NewQualityScorer(),
		cfg:        cfg,
	}

	if bus != nil {
		if err := bus.Subscribe(events.ScrapeCompletedTopic, d.onScrapeCompleted); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Deduplicator) onScrapeCompleted(event events.ScrapeCompleted) {
	if _, err := d.Run(context.Background(), event.UserID); err != nil {
		log.Errorf("post-scrape dedup run failed for user %d: %v", event.UserID, err)
	}
}

func (d *Deduplicator) Run(ctx context.Context, userID int64) (RunSummary, error) {

	release, ok, err := d.locker.TryLock(ctx, userID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeLock).
			Errorf("failed to acquire dedup lock for user %d: %v", userID, err)
		return RunSummary{}, err
	}
	if !ok {
		return RunSummary{}, errors.Wrapf(domain.ErrConflict, "dedup run already in progress for user %d", userID)
	}
	defer release()

	startTime := time.Now()
	log.Infof("running dedup for user %d", userID)

	summary, err := d.run(ctx, userID)

	executionTime := time.Since(startTime)
	metrics.RunDuration.Observe(executionTime.Seconds())
	log.Infof("dedup for user %d ended after %v: %d jobs, %d duplicates, %d canonicals",
		userID, executionTime, summary.TotalJobsProcessed, summary.DuplicatesFound, summary.CanonicalJobsIdentified)

	return summary, err
}

func (d *Deduplicator) run(ctx context.Context, userID int64) (RunSummary, error) {

	jobs, err := d.jobs.GetActiveByUser(ctx, userID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to load jobs: %v", err)
		return RunSummary{}, err
	}

	summary := RunSummary{TotalJobsProcessed: len(jobs)}
	if len(jobs) < 2 {
		return summary, nil
	}

	qualityByJob, err := d.refreshMetadata(ctx, jobs)
	if err != nil {
		return summary, err
	}

	start := time.Now()
	canonicalIDs := map[int64]struct{}{}

	for _, pair := range d.candidatePairs(jobs) {

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		result := d.scorer.Score(pair.a, pair.b)
		metrics.PairsComparedCounter.Inc()

		confidence, matched := Classify(result, d.cfg)
		if !matched {
			continue
		}

		canonical, duplicate := pickCanonical(pair.a, pair.b, qualityByJob)

		edge, err := d.persistEdge(ctx, models.JobDuplicate{
			CanonicalJobID:    canonical.ID,
			DuplicateJobID:    duplicate.ID,
			UserID:            userID,
			OverallSimilarity: result.Similarity,
			ConfidenceLevel:   confidence,
			DetectionMethod:   result.Method,
		})
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				log.Infof("skipping edge %d -> %d: %v", canonical.ID, duplicate.ID, err)
			} else {
				log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
					Errorf("failed to persist edge %d -> %d: %v", canonical.ID, duplicate.ID, err)
			}
			metrics.SkippedPairsCounter.Inc()
			continue
		}

		summary.DuplicatesFound++
		canonicalIDs[edge.CanonicalJobID] = struct{}{}
		metrics.DuplicatesFoundCounter.Inc()
	}

	metrics.RunStepDuration.WithLabelValues("pair_scoring").Observe(time.Since(start).Seconds())
	summary.CanonicalJobsIdentified = len(canonicalIDs)

	if d.bus != nil && summary.DuplicatesFound > 0 {
		d.bus.Publish(events.DuplicatesDetectedTopic, events.DuplicatesDetected{
			UserID:          userID,
			DuplicatesFound: summary.DuplicatesFound,
			CanonicalJobs:   summary.CanonicalJobsIdentified,
		})
	}

	return summary, nil
}

func (d *Deduplicator) refreshMetadata(ctx context.Context, jobs []models.Job) (map[int64]models.CanonicalJobMetadata, error) {

	start := time.Now()

	byJob := make(map[int64]models.CanonicalJobMetadata, len(jobs))
	batch := make([]models.CanonicalJobMetadata, 0, len(jobs))
	for _, job := range jobs {
		meta := d.quality.Metadata(job)
		byJob[job.ID] = meta
		batch = append(batch, meta)
	}

	if err := d.jobs.SaveMetadata(ctx, batch, d.cfg.MaxWritesPerCommit); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to save job metadata: %v", err)
		return nil, err
	}

	metrics.RunStepDuration.WithLabelValues("metadata_refresh").Observe(time.Since(start).Seconds())
	return byJob, nil
}

type jobPair struct {
	a, b models.Job
}

// candidatePairs yields all pairs, or with blocking enabled only pairs that
// share a company prefix or a significant title token. Keys are deliberately
// conservative so a pair that would cross the threshold is never filtered.
func (d *Deduplicator) candidatePairs(jobs []models.Job) []jobPair {

	var pairs []jobPair
	for i := 0; i < len(jobs); i++ {
		for j := i + 1; j < len(jobs); j++ {
			if d.cfg.UseBlocking && !sharesBlockingKey(jobs[i], jobs[j]) {
				continue
			}
			pairs = append(pairs, jobPair{a: jobs[i], b: jobs[j]})
		}
	}
	return pairs
}

// titleStopwords are seniority and filler words that make bad blocking keys.
var titleStopwords = []string{"senior", "sr", "junior", "jr", "lead", "staff", "principal", "the", "of", "and"}

func sharesBlockingKey(a, b models.Job) bool {

	companyA, companyB := matching.NormalizeCompany(a.Company), matching.NormalizeCompany(b.Company)
	if companyA != "" && companyB != "" {
		prefixLen := min(4, len(companyA), len(companyB))
		if companyA[:prefixLen] == companyB[:prefixLen] {
			return true
		}
	}

	// matching URLs must always survive blocking
	urlA := matching.NormalizeURL(a.Url)
	if urlA != "" && urlA == matching.NormalizeURL(b.Url) {
		return true
	}

	tokensA := significantTitleTokens(a.Title)
	tokensB := significantTitleTokens(b.Title)
	return len(lo.Intersect(tokensA, tokensB)) > 0
}

func significantTitleTokens(title string) []string {
	tokens := strings.Fields(matching.NormalizeTitle(title))
	return lo.Filter(tokens, func(token string, _ int) bool {
		return !lo.Contains(titleStopwords, token)
	})
}

// pickCanonical prefers the higher-quality job, then the first seen, then the
// lower id, so the choice never depends on insertion order.
func pickCanonical(a, b models.Job, quality map[int64]models.CanonicalJobMetadata) (models.Job, models.Job) {

	qa, qb := quality[a.ID].OverallQualityScore, quality[b.ID].OverallQualityScore
	switch {
	case qa != qb:
		if qa > qb {
			return a, b
		}
		return b, a
	case !a.CreatedAt.Equal(b.CreatedAt):
		if a.CreatedAt.Before(b.CreatedAt) {
			return a, b
		}
		return b, a
	case a.ID < b.ID:
		return a, b
	default:
		return b, a
	}
}

// persistEdge applies the cycle rules from the relationship invariants, then
// upserts with a short retry for transient storage failures.
func (d *Deduplicator) persistEdge(ctx context.Context, edge models.JobDuplicate) (*models.JobDuplicate, error) {

	existing, err := d.duplicates.CanonicalOf(ctx, edge.DuplicateJobID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.CanonicalJobID != edge.CanonicalJobID {
		// the duplicate already belongs to an older canonical chain; keep it
		return nil, errors.Wrapf(domain.ErrConflict,
			"job %d is already a duplicate of %d", edge.DuplicateJobID, existing.CanonicalJobID)
	}

	cyclic, err := d.wouldCycle(ctx, edge)
	if err != nil {
		return nil, err
	}
	if cyclic {
		return nil, errors.Wrapf(domain.ErrConflict,
			"edge %d -> %d would close a canonical cycle", edge.CanonicalJobID, edge.DuplicateJobID)
	}

	var persisted *models.JobDuplicate
	for attempt := 0; ; attempt++ {
		persisted, err = d.duplicates.UpsertAutomatic(ctx, edge)
		if err == nil || attempt >= 2 {
			break
		}
		time.Sleep(time.Duration(attempt+1) * 100 * time.Millisecond)
	}
	return persisted, err
}

// wouldCycle walks the canonical chain upward from the new edge's canonical;
// reaching the duplicate means the edge would make a job its own ancestor.
func (d *Deduplicator) wouldCycle(ctx context.Context, edge models.JobDuplicate) (bool, error) {

	seen := map[int64]struct{}{}
	current := edge.CanonicalJobID

	for {
		if current == edge.DuplicateJobID {
			return true, nil
		}
		if _, visited := seen[current]; visited {
			return true, nil // pre-existing loop, refuse to extend it
		}
		seen[current] = struct{}{}

		parent, err := d.duplicates.CanonicalOf(ctx, current)
		if err != nil {
			return false, err
		}
		if parent == nil {
			return false, nil
		}
		current = parent.CanonicalJobID
	}
}
