package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all tunables for the service. Values come from the
// environment (optionally via a .env file loaded by the composition root),
// with defaults suitable for local runs.
type Config struct {
	Port        string `mapstructure:"PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	// BusinessTimezone anchors recurrence profile times of day.
	BusinessTimezone string `mapstructure:"BUSINESS_TZ"`

	ORSAPIKey  string `mapstructure:"ORS_API_KEY"`
	ORSBaseURL string `mapstructure:"ORS_BASE_URL"`

	WeatherBaseURL string `mapstructure:"WEATHER_BASE_URL"`

	// DistanceCache selects the distance cache backend: "postgres" or "redis".
	DistanceCache string `mapstructure:"DISTANCE_CACHE"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`

	NotifyWebhookURL string `mapstructure:"NOTIFY_WEBHOOK_URL"`
	CalendarSyncURL  string `mapstructure:"CALENDAR_SYNC_URL"`

	// TickCron enables the in-process periodic recurrence tick when set
	// (standard cron expression). Leave empty to rely on the HTTP trigger.
	TickCron string `mapstructure:"TICK_CRON"`

	SeedPath string `mapstructure:"SEED_PATH"`
}

// Load reads configuration from the environment via viper.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BUSINESS_TZ", "America/Sao_Paulo")
	v.SetDefault("ORS_BASE_URL", "https://api.openrouteservice.org")
	v.SetDefault("WEATHER_BASE_URL", "https://api.open-meteo.com")
	v.SetDefault("DISTANCE_CACHE", "postgres")
	v.SetDefault("SEED_PATH", "data/seeds/fleet.json")

	// AutomaticEnv alone does not populate Unmarshal; bind each key.
	keys := []string{
		"PORT", "DATABASE_URL", "LOG_LEVEL", "BUSINESS_TZ",
		"ORS_API_KEY", "ORS_BASE_URL", "WEATHER_BASE_URL",
		"DISTANCE_CACHE", "REDIS_ADDR",
		"NOTIFY_WEBHOOK_URL", "CALENDAR_SYNC_URL",
		"TICK_CRON", "SEED_PATH",
	}
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("load config: bind %s: %w", k, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("load config: unmarshal: %w", err)
	}

	return &cfg, nil
}
