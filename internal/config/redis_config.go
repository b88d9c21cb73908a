package config

import "github.com/spf13/viper"

// RedisConfig is optional: with an empty URL the service falls back to the
// in-process run lock, which is enough for single-node deployments and tests.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

func (config RedisConfig) bindEnvironmentVariables() error {
	return viper.BindEnv("redis.url", "REDIS_URL")
}
