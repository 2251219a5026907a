package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Database  Database  `mapstructure:"database"`
	Pipeline  Pipeline  `mapstructure:"pipeline"`
	Scrape    Scrape    `mapstructure:"scrape"`
	Spotify   Spotify   `mapstructure:"spotify"`
	LastFM    LastFM    `mapstructure:"lastfm"`
	Survey    Survey    `mapstructure:"survey"`
	Reference Reference `mapstructure:"reference"`
}

// Database holds SQLite storage configuration
type Database struct {
	Path string `mapstructure:"path"`
}

// Pipeline holds settings shared by all pipeline stages
type Pipeline struct {
	BatchQuota int `mapstructure:"batch_quota"`
}

// Scrape holds chart scraper configuration
type Scrape struct {
	ChartURL  string `mapstructure:"chart_url"`
	UserAgent string `mapstructure:"user_agent"`
	Timeout   string `mapstructure:"timeout"`
}

// Spotify holds catalog API credentials
type Spotify struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Timeout      string `mapstructure:"timeout"`
}

// LastFM holds popularity API configuration
type LastFM struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Timeout string `mapstructure:"timeout"`
}

// Survey holds public-health survey feed configuration
type Survey struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout string `mapstructure:"timeout"`
}

// Reference holds bulk audio-features input configuration
type Reference struct {
	CSVPath string `mapstructure:"csv_path"`
}

var globalConfig *Config

// Load loads the configuration from .env, config file, and environment
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".chartmood")
		viper.SetConfigType("yaml")
	}

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	globalConfig = config
	return config, nil
}

// Reset clears the cached configuration (used by tests)
func Reset() {
	globalConfig = nil
	viper.Reset()
}

func setDefaults() {
	viper.SetDefault("database.path", "chartmood.db")

	viper.SetDefault("pipeline.batch_quota", 25)

	viper.SetDefault("scrape.chart_url", "https://www.billboard.com/charts/hot-100/")
	viper.SetDefault("scrape.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
	viper.SetDefault("scrape.timeout", "20s")

	viper.SetDefault("spotify.timeout", "10s")

	viper.SetDefault("lastfm.base_url", "https://ws.audioscrobbler.com/2.0/")
	viper.SetDefault("lastfm.timeout", "10s")

	viper.SetDefault("survey.base_url", "https://data.cdc.gov/resource/8pt5-q6wp.json")
	viper.SetDefault("survey.timeout", "30s")

	viper.SetDefault("reference.csv_path", "spotify_audio_features.csv")
}

// ParseTimeout parses a duration string, falling back to the given default
func ParseTimeout(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
