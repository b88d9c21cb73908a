package services

import (
	"context"
	"time"

	"github.com/jobmate/dedup-service/internal/domain"
	"github.com/jobmate/dedup-service/internal/domain/models"
	"github.com/jobmate/dedup-service/internal/locks"
	"github.com/pkg/errors"
)

type jobReader interface {
	GetByID(ctx context.Context, jobID int64) (*models.Job, error)
}

type overrideRepository interface {
	UpsertManual(ctx context.Context, edge models.JobDuplicate) (*models.JobDuplicate, error)
	Remove(ctx context.Context, canonicalID, duplicateID int64) error
	GetForJob(ctx context.Context, jobID int64) ([]models.JobDuplicate, error)
	CanonicalOf(ctx context.Context, jobID int64) (*models.JobDuplicate, error)
}

// ManualOverrides implements user-confirmed merges and unmerges. A manual
// merge bypasses the similarity threshold entirely: the user's judgment wins
// over whatever the detector would say.
type ManualOverrides struct {
	locker     locks.UserLocker
	jobs       jobReader
	duplicates overrideRepository
	scorer     SimilarityStrategy
}

func NewManualOverrides(locker locks.UserLocker, jobs jobReader,
	duplicates overrideRepository, scorer SimilarityStrategy) *ManualOverrides {

	return &ManualOverrides{locker: locker, jobs: jobs, duplicates: duplicates, scorer: scorer}
}

func (m *ManualOverrides) Merge(ctx context.Context, canonicalID, duplicateID, userID int64) (*models.JobDuplicate, error) {

	canonical, duplicate, err := m.loadValidatedPair(ctx, canonicalID, duplicateID, userID)
	if err != nil {
		return nil, err
	}

	release, ok, err := m.locker.TryLock(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(domain.ErrConflict, "dedup run in progress for user %d", userID)
	}
	defer release()

	if err := m.breakChainCycle(ctx, canonicalID, duplicateID); err != nil {
		return nil, err
	}

	// record the automatic score for audit, even though it played no part in
	// the decision
	result := m.scorer.Score(*canonical, *duplicate)

	now := time.Now().UTC()
	return m.duplicates.UpsertManual(ctx, models.JobDuplicate{
		CanonicalJobID:    canonicalID,
		DuplicateJobID:    duplicateID,
		UserID:            userID,
		OverallSimilarity: result.Similarity,
		ConfidenceLevel:   models.ConfidenceHigh,
		DetectionMethod:   models.MethodManual,
		ManuallyConfirmed: true,
		ConfirmedBy:       &userID,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
}

func (m *ManualOverrides) Remove(ctx context.Context, canonicalID, duplicateID, userID int64) error {

	if _, _, err := m.loadValidatedPair(ctx, canonicalID, duplicateID, userID); err != nil {
		return err
	}

	release, ok, err := m.locker.TryLock(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(domain.ErrConflict, "dedup run in progress for user %d", userID)
	}
	defer release()

	return m.duplicates.Remove(ctx, canonicalID, duplicateID)
}

func (m *ManualOverrides) ListForJob(ctx context.Context, jobID int64) ([]models.JobDuplicate, error) {
	return m.duplicates.GetForJob(ctx, jobID)
}

// breakChainCycle walks the canonical chain upward from the new canonical. If
// the new duplicate turns out to be an ancestor, the edge closing the loop is
// severed first: the user's merge restructures the chain, it never leaves a
// job as its own ancestor.
func (m *ManualOverrides) breakChainCycle(ctx context.Context, canonicalID, duplicateID int64) error {

	seen := map[int64]struct{}{}
	current := canonicalID

	for {
		if _, visited := seen[current]; visited {
			return nil
		}
		seen[current] = struct{}{}

		parent, err := m.duplicates.CanonicalOf(ctx, current)
		if err != nil {
			return err
		}
		if parent == nil {
			return nil
		}
		if parent.CanonicalJobID == duplicateID {
			return m.duplicates.Remove(ctx, parent.CanonicalJobID, parent.DuplicateJobID)
		}
		current = parent.CanonicalJobID
	}
}

func (m *ManualOverrides) loadValidatedPair(ctx context.Context, canonicalID, duplicateID, userID int64) (*models.Job, *models.Job, error) {

	if canonicalID == duplicateID {
		return nil, nil, errors.Wrap(domain.ErrValidation, "a job cannot be a duplicate of itself")
	}

	canonical, err := m.jobs.GetByID(ctx, canonicalID)
	if err != nil {
		return nil, nil, err
	}
	duplicate, err := m.jobs.GetByID(ctx, duplicateID)
	if err != nil {
		return nil, nil, err
	}

	if canonical == nil || duplicate == nil {
		return nil, nil, errors.Wrap(domain.ErrNotFound, "job does not exist")
	}
	if canonical.UserID != userID || duplicate.UserID != userID {
		return nil, nil, errors.Wrap(domain.ErrValidation, "jobs must belong to the requesting user")
	}

	return canonical, duplicate, nil
}
