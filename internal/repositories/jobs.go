package repositories

import (
	"context"
	"errors"

	"github.com/jobmate/dedup-service/internal/domain/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Jobs reads the posting table owned by the ingestion pipeline and maintains
// the per-job quality metadata used for canonical selection.
type Jobs struct {
	db *gorm.DB
}

func NewJobsRepository(db *gorm.DB) *Jobs {
	return &Jobs{db: db}
}

func (repo *Jobs) GetActiveByUser(ctx context.Context, userID int64) ([]models.Job, error) {

	var jobs []models.Job
	if err := repo.db.WithContext(ctx).
		Where("user_id = ? AND archived = ?", userID, false).
		Order("id").
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (repo *Jobs) GetByID(ctx context.Context, jobID int64) (*models.Job, error) {

	var job models.Job
	err := repo.db.WithContext(ctx).First(&job, "id = ?", jobID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (repo *Jobs) DistinctUserIDs(ctx context.Context) ([]int64, error) {

	var userIDs []int64
	if err := repo.db.WithContext(ctx).
		Model(&models.Job{}).
		Where("archived = ?", false).
		Distinct("user_id").
		Order("user_id").
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, err
	}
	return userIDs, nil
}

// SaveMetadata upserts quality metadata in chunks so a large refresh never
// runs as one giant transaction.
func (repo *Jobs) SaveMetadata(ctx context.Context, metadata []models.CanonicalJobMetadata, chunkSize int) error {

	for start := 0; start < len(metadata); start += chunkSize {
		end := min(start+chunkSize, len(metadata))

		err := repo.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "job_id"}},
			UpdateAll: true,
		}).Create(metadata[start:end]).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (repo *Jobs) GetMetadata(ctx context.Context, jobID int64) (*models.CanonicalJobMetadata, error) {

	var meta models.CanonicalJobMetadata
	err := repo.db.WithContext(ctx).First(&meta, "job_id = ?", jobID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meta, nil
}
