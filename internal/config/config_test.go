package config

import (
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Config_EnvironmentOverrideWorksCorrect(t *testing.T) {
	override := Config{
		Logger: LoggerConfig{LogLevel: LevelDebug, AppName: "dedup-override"},
		DB:     DBConfig{ConnectionString: "./override.db"},
		Redis:  RedisConfig{URL: "redis://localhost:6390/1"},
		API:    APIConfig{Port: 9999, MetricsPort: 9998},
		Dedup: DedupConfig{
			MatchThreshold:          65,
			HighConfidenceThreshold: 90,
			UseBlocking:             false,
			MaxWritesPerCommit:      50,
		},
	}
	os.Setenv("CONFIG_PATH", "../../configs/config.yaml")

	os.Setenv("LOG_LEVEL", string(override.Logger.LogLevel))
	os.Setenv("APP_NAME", override.Logger.AppName)
	os.Setenv("DB_CONNECTION_STRING", override.DB.ConnectionString)
	os.Setenv("REDIS_URL", override.Redis.URL)
	os.Setenv("API_PORT", strconv.Itoa(override.API.Port))
	os.Setenv("METRICS_PORT", strconv.Itoa(override.API.MetricsPort))
	os.Setenv("DEDUP_MATCH_THRESHOLD", strconv.Itoa(override.Dedup.MatchThreshold))
	os.Setenv("DEDUP_HIGH_CONFIDENCE_THRESHOLD", strconv.Itoa(override.Dedup.HighConfidenceThreshold))
	os.Setenv("DEDUP_USE_BLOCKING", strconv.FormatBool(override.Dedup.UseBlocking))
	os.Setenv("DEDUP_MAX_WRITES_PER_COMMIT", strconv.Itoa(override.Dedup.MaxWritesPerCommit))

	cfg := Get()

	assert.Equal(t, override.Logger.LogLevel, cfg.Logger.LogLevel)
	assert.Equal(t, override.Logger.AppName, cfg.Logger.AppName)
	assert.Equal(t, override.DB.ConnectionString, cfg.DB.ConnectionString)
	assert.Equal(t, override.Redis.URL, cfg.Redis.URL)
	assert.Equal(t, override.API.Port, cfg.API.Port)
	assert.Equal(t, override.API.MetricsPort, cfg.API.MetricsPort)
	assert.Equal(t, override.Dedup.MatchThreshold, cfg.Dedup.MatchThreshold)
	assert.Equal(t, override.Dedup.HighConfidenceThreshold, cfg.Dedup.HighConfidenceThreshold)
	assert.Equal(t, override.Dedup.UseBlocking, cfg.Dedup.UseBlocking)
	assert.Equal(t, override.Dedup.MaxWritesPerCommit, cfg.Dedup.MaxWritesPerCommit)
}

func Test_DedupConfig_ValidateRejectsBadTunables(t *testing.T) {
	valid := DedupConfig{
		MatchThreshold:          70,
		HighConfidenceThreshold: 85,
		TitleWeight:             0.35,
		CompanyWeight:           0.30,
		LocationWeight:          0.15,
		DescriptionWeight:       0.20,
		MaxWritesPerCommit:      200,
	}
	assert.NoError(t, valid.validate())

	badWeights := valid
	badWeights.TitleWeight = 0.50
	assert.Error(t, badWeights.validate())

	invertedThresholds := valid
	invertedThresholds.HighConfidenceThreshold = 60
	assert.Error(t, invertedThresholds.validate())

	zeroCommit := valid
	zeroCommit.MaxWritesPerCommit = 0
	assert.Error(t, zeroCommit.validate())
}
