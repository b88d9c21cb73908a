package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/spf13/viper"
)

// DedupConfig carries every tunable of the detection pipeline. Thresholds and
// weights are deployment configuration on purpose: the bands are calibrated
// empirically and get tuned without a rebuild.
type DedupConfig struct {
	MatchThreshold          int     `mapstructure:"match_threshold"`
	HighConfidenceThreshold int     `mapstructure:"high_confidence_threshold"`
	TitleWeight             float64 `mapstructure:"title_weight"`
	CompanyWeight           float64 `mapstructure:"company_weight"`
	LocationWeight          float64 `mapstructure:"location_weight"`
	DescriptionWeight       float64 `mapstructure:"description_weight"`
	UseBlocking             bool    `mapstructure:"use_blocking"`
	MaxWritesPerCommit      int     `mapstructure:"max_writes_per_commit"`
	RunsPerMinutePerUser    float64 `mapstructure:"runs_per_minute_per_user"`
	SweepCron               string  `mapstructure:"sweep_cron"`
}

func (config DedupConfig) validate() error {
	var errs []error

	if config.MatchThreshold <= 0 || config.MatchThreshold > 100 {
		errs = append(errs, fmt.Errorf("match_threshold must be in (0, 100]"))
	}

	if config.HighConfidenceThreshold <= config.MatchThreshold || config.HighConfidenceThreshold > 100 {
		errs = append(errs, fmt.Errorf("high_confidence_threshold must be in (match_threshold, 100]"))
	}

	weightSum := config.TitleWeight + config.CompanyWeight + config.LocationWeight + config.DescriptionWeight
	if math.Abs(weightSum-1.0) > 0.001 {
		errs = append(errs, fmt.Errorf("field weights must sum to 1.0, got %v", weightSum))
	}

	if config.MaxWritesPerCommit <= 0 {
		errs = append(errs, fmt.Errorf("max_writes_per_commit must be greater than zero"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config DedupConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("dedup.match_threshold", "DEDUP_MATCH_THRESHOLD"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("dedup.high_confidence_threshold", "DEDUP_HIGH_CONFIDENCE_THRESHOLD"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("dedup.use_blocking", "DEDUP_USE_BLOCKING"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("dedup.max_writes_per_commit", "DEDUP_MAX_WRITES_PER_COMMIT"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}
