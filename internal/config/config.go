package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Common contains settings shared by every binary.
type Common struct {
	MetricsTextfile string
}

// Normalizer configures the listing normalizer.
type Normalizer struct {
	Common
	RawPropertiesFile string
	OutputFile        string
}

// Resolver configures the nearest-stop resolver and its optional export sinks.
type Resolver struct {
	Common
	PropertiesFile     string
	StationsFile       string
	OutputFile         string
	WorkbookFile       string
	ElasticsearchAddr  string
	ElasticsearchIndex string
	KafkaBrokers       []string
	KafkaTopic         string
}

// Retention configures the cleanup loop.
type Retention struct {
	Common
	ElasticsearchAddr  string
	ElasticsearchIndex string
	Interval           time.Duration
	MaxAge             time.Duration
	BatchSize          int
}

// LoadDotenv reads DOTENV_FILE (default .env) into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotenv() error {
	path := getEnv("DOTENV_FILE", ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// LoadNormalizer builds a Normalizer config from environment variables.
func LoadNormalizer() (*Normalizer, error) {
	if err := LoadDotenv(); err != nil {
		return nil, err
	}

	c := &Normalizer{
		Common:            loadCommon(),
		RawPropertiesFile: getEnv("RAW_PROPERTIES_FILE", "data/raw/property_strings.txt"),
		OutputFile:        getEnv("CLEANED_PROPERTIES_OUTPUT", "data/processed/cleaned_properties.json"),
	}

	return c, nil
}

// LoadResolver builds a Resolver config from environment variables.
func LoadResolver() (*Resolver, error) {
	if err := LoadDotenv(); err != nil {
		return nil, err
	}

	c := &Resolver{
		Common:             loadCommon(),
		PropertiesFile:     getEnv("PROPERTIES_FILE", "data/raw/properties.csv"),
		StationsFile:       getEnv("STATIONS_FILE", "data/raw/stations.csv"),
		OutputFile:         getEnv("NEAREST_STATION_OUTPUT", "data/processed/nearest_station.json"),
		WorkbookFile:       getEnv("NEAREST_STATION_XLSX", ""),
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", ""),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "nearest-stations"),
		KafkaBrokers:       splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:         getEnv("KAFKA_TOPIC", "nearest_station_matches"),
	}

	if strings.TrimSpace(c.KafkaTopic) == "" && len(c.KafkaBrokers) > 0 {
		return nil, fmt.Errorf("KAFKA_TOPIC must be set when KAFKA_BROKERS is")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	if err := LoadDotenv(); err != nil {
		return nil, err
	}

	c := &Retention{
		Common:             loadCommon(),
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "nearest-stations"),
		Interval:           getDuration("RETENTION_CRON", "24h"),
		MaxAge:             getDuration("RETENTION_MAX_AGE", "720h"),
		BatchSize:          getInt("RETENTION_BATCH_SIZE", 500),
	}

	if c.MaxAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_AGE must be positive")
	}

	if c.Interval <= 0 {
		return nil, fmt.Errorf("RETENTION_CRON must be positive")
	}

	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("RETENTION_BATCH_SIZE must be positive")
	}

	return c, nil
}

func loadCommon() Common {
	return Common{
		MetricsTextfile: getEnv("METRICS_TEXTFILE", ""),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
