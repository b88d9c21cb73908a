package repositories

import (
	"fmt"
	"github.com/glebarez/sqlite"
	"github.com/jobmate/dedup-service/internal/domain/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(connectionString string) (*DbContext, error) {
	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}

	return &DbContext{DB: db}, nil
}

func (c *DbContext) Migrate() error {
	err := c.DB.AutoMigrate(models.Job{})
	if err != nil {
		return fmt.Errorf("failed to migrate Job entity: %w", err)
	}

	err = c.DB.AutoMigrate(models.CanonicalJobMetadata{})
	if err != nil {
		return fmt.Errorf("failed to migrate CanonicalJobMetadata entity: %w", err)
	}

	err = c.DB.AutoMigrate(models.JobDuplicate{})
	if err != nil {
		return fmt.Errorf("failed to migrate JobDuplicate entity: %w", err)
	}

	// re-running detection must never produce a second row for a pair
	if err = c.DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_canonical_duplicate ON job_duplicates (canonical_job_id, duplicate_job_id); " +
		"CREATE INDEX IF NOT EXISTS idx_duplicate_side ON job_duplicates (duplicate_job_id); " +
		"CREATE INDEX IF NOT EXISTS idx_duplicates_user ON job_duplicates (user_id);").
		Error; err != nil {
		return fmt.Errorf("failed to create duplicate indexes: %w", err)
	}

	return nil
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
