package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jobmate/dedup-service/internal/domain"
	"github.com/jobmate/dedup-service/internal/domain/models"
	"gorm.io/gorm"
)

// Duplicates is the relationship edge store: one directed row per
// (canonical, duplicate) pair, unique on that pair, queried from both sides.
type Duplicates struct {
	db *gorm.DB
}

func NewDuplicatesRepository(db *gorm.DB) *Duplicates {
	return &Duplicates{db: db}
}

// UpsertAutomatic writes a detector-produced edge inside one transaction so
// the read-check-write cannot race another writer on the same pair.
// Manually confirmed rows win over the detector: the existing row is
// returned untouched.
func (repo *Duplicates) UpsertAutomatic(ctx context.Context, edge models.JobDuplicate) (*models.JobDuplicate, error) {

	var result models.JobDuplicate

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var existing models.JobDuplicate
		err := tx.Where("canonical_job_id = ? AND duplicate_job_id = ?",
			edge.CanonicalJobID, edge.DuplicateJobID).
			First(&existing).Error

		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err == nil {
			if existing.ManuallyConfirmed {
				result = existing
				return nil
			}
			existing.OverallSimilarity = edge.OverallSimilarity
			existing.ConfidenceLevel = edge.ConfidenceLevel
			existing.DetectionMethod = edge.DetectionMethod
			existing.UpdatedAt = time.Now().UTC()
			if err = tx.Save(&existing).Error; err != nil {
				return err
			}
			result = existing
			return nil
		}

		edge.ManuallyConfirmed = false
		edge.ConfirmedBy = nil
		if err = tx.Create(&edge).Error; err != nil {
			return err
		}
		result = edge
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UpsertManual force-writes a user-confirmed edge, replacing any automatic
// edge between the pair in either direction.
func (repo *Duplicates) UpsertManual(ctx context.Context, edge models.JobDuplicate) (*models.JobDuplicate, error) {

	var result models.JobDuplicate

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		// the user's verdict supersedes whatever the detector stored, in
		// either direction
		err := tx.Where(
			"(canonical_job_id = ? AND duplicate_job_id = ?) OR (canonical_job_id = ? AND duplicate_job_id = ?)",
			edge.CanonicalJobID, edge.DuplicateJobID,
			edge.DuplicateJobID, edge.CanonicalJobID).
			Delete(&models.JobDuplicate{}).Error
		if err != nil {
			return err
		}

		if err = tx.Create(&edge).Error; err != nil {
			return err
		}
		result = edge
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Remove deletes the pair edge whichever direction it was stored in.
func (repo *Duplicates) Remove(ctx context.Context, canonicalID, duplicateID int64) error {

	res := repo.db.WithContext(ctx).Where(
		"(canonical_job_id = ? AND duplicate_job_id = ?) OR (canonical_job_id = ? AND duplicate_job_id = ?)",
		canonicalID, duplicateID, duplicateID, canonicalID).
		Delete(&models.JobDuplicate{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetForJob returns every edge the job participates in, on either side.
func (repo *Duplicates) GetForJob(ctx context.Context, jobID int64) ([]models.JobDuplicate, error) {

	var edges []models.JobDuplicate
	if err := repo.db.WithContext(ctx).
		Where("canonical_job_id = ? OR duplicate_job_id = ?", jobID, jobID).
		Order("id").
		Find(&edges).Error; err != nil {
		return nil, err
	}
	return edges, nil
}

func (repo *Duplicates) GetByUser(ctx context.Context, userID int64) ([]models.JobDuplicate, error) {

	var edges []models.JobDuplicate
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&edges).Error; err != nil {
		return nil, err
	}
	return edges, nil
}

// CanonicalOf returns the edge in which jobID is the duplicate side, if any.
// A job is the duplicate side of at most one active edge.
func (repo *Duplicates) CanonicalOf(ctx context.Context, jobID int64) (*models.JobDuplicate, error) {

	var edge models.JobDuplicate
	err := repo.db.WithContext(ctx).First(&edge, "duplicate_job_id = ?", jobID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &edge, nil
}

// CountDuplicatesOf backs the listing UI's "N similar postings" expansion.
func (repo *Duplicates) CountDuplicatesOf(ctx context.Context, canonicalID int64) (int64, error) {

	var count int64
	if err := repo.db.WithContext(ctx).
		Model(&models.JobDuplicate{}).
		Where("canonical_job_id = ?", canonicalID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// HiddenJobIDs lists the user's jobs that appear as a duplicate side and are
// therefore collapsed out of the default listing.
func (repo *Duplicates) HiddenJobIDs(ctx context.Context, userID int64) ([]int64, error) {

	var ids []int64
	if err := repo.db.WithContext(ctx).
		Model(&models.JobDuplicate{}).
		Where("user_id = ?", userID).
		Distinct("duplicate_job_id").
		Order("duplicate_job_id").
		Pluck("duplicate_job_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
