package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DeafMist/transit-proximity/internal/config"
	"github.com/stretchr/testify/require"
)

func noDotenv(t *testing.T) {
	t.Helper()
	t.Setenv("DOTENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
}

// unset clears key for the duration of the test so a dotenv file may supply it.
func unset(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadNormalizerDefaults(t *testing.T) {
	noDotenv(t)
	t.Setenv("RAW_PROPERTIES_FILE", "")
	t.Setenv("CLEANED_PROPERTIES_OUTPUT", "")
	t.Setenv("METRICS_TEXTFILE", "")

	cfg, err := config.LoadNormalizer()
	require.NoError(t, err)

	require.Equal(t, "data/raw/property_strings.txt", cfg.RawPropertiesFile)
	require.Equal(t, "data/processed/cleaned_properties.json", cfg.OutputFile)
	require.Empty(t, cfg.MetricsTextfile)
}

func TestLoadResolverDefaults(t *testing.T) {
	noDotenv(t)
	for _, key := range []string{
		"PROPERTIES_FILE", "STATIONS_FILE", "NEAREST_STATION_OUTPUT", "NEAREST_STATION_XLSX",
		"ELASTICSEARCH_ADDR", "ELASTICSEARCH_INDEX", "KAFKA_BROKERS", "KAFKA_TOPIC",
	} {
		t.Setenv(key, "")
	}

	cfg, err := config.LoadResolver()
	require.NoError(t, err)

	require.Equal(t, "data/raw/properties.csv", cfg.PropertiesFile)
	require.Equal(t, "data/raw/stations.csv", cfg.StationsFile)
	require.Equal(t, "data/processed/nearest_station.json", cfg.OutputFile)
	require.Empty(t, cfg.WorkbookFile)
	require.Empty(t, cfg.ElasticsearchAddr)
	require.Equal(t, "nearest-stations", cfg.ElasticsearchIndex)
	require.Empty(t, cfg.KafkaBrokers)
	require.Equal(t, "nearest_station_matches", cfg.KafkaTopic)
}

func TestLoadResolverOverrides(t *testing.T) {
	noDotenv(t)
	t.Setenv("PROPERTIES_FILE", "/in/props.csv")
	t.Setenv("STATIONS_FILE", "/in/stops.csv")
	t.Setenv("NEAREST_STATION_OUTPUT", "/out/nearest.json")
	t.Setenv("NEAREST_STATION_XLSX", "/out/nearest.xlsx")
	t.Setenv("ELASTICSEARCH_ADDR", "http://localhost:9200")
	t.Setenv("ELASTICSEARCH_INDEX", "matches")
	t.Setenv("KAFKA_BROKERS", "broker-a:29092, broker-b:29093,")
	t.Setenv("KAFKA_TOPIC", "matches_topic")
	t.Setenv("METRICS_TEXTFILE", "/metrics/resolver.prom")

	cfg, err := config.LoadResolver()
	require.NoError(t, err)

	require.Equal(t, "/in/props.csv", cfg.PropertiesFile)
	require.Equal(t, "/in/stops.csv", cfg.StationsFile)
	require.Equal(t, "/out/nearest.json", cfg.OutputFile)
	require.Equal(t, "/out/nearest.xlsx", cfg.WorkbookFile)
	require.Equal(t, "http://localhost:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "matches", cfg.ElasticsearchIndex)
	require.Equal(t, []string{"broker-a:29092", "broker-b:29093"}, cfg.KafkaBrokers)
	require.Equal(t, "matches_topic", cfg.KafkaTopic)
	require.Equal(t, "/metrics/resolver.prom", cfg.MetricsTextfile)
}

func TestLoadResolverRejectsBlankTopic(t *testing.T) {
	noDotenv(t)
	t.Setenv("KAFKA_BROKERS", "kafka:9092")
	t.Setenv("KAFKA_TOPIC", "   ")

	_, err := config.LoadResolver()
	require.Error(t, err)
}

func TestLoadResolverFromDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolver.env")
	require.NoError(t, os.WriteFile(path, []byte("PROPERTIES_FILE=/dotenv/props.csv\nSTATIONS_FILE=/dotenv/stops.csv\n"), 0o600))
	t.Setenv("DOTENV_FILE", path)

	unset(t, "PROPERTIES_FILE")
	t.Setenv("STATIONS_FILE", "/env/stops.csv")

	cfg, err := config.LoadResolver()
	require.NoError(t, err)
	require.Equal(t, "/dotenv/props.csv", cfg.PropertiesFile)
	require.Equal(t, "/env/stops.csv", cfg.StationsFile)
}

func TestLoadRetention(t *testing.T) {
	noDotenv(t)
	t.Setenv("ELASTICSEARCH_ADDR", "http://ret-es:9200")
	t.Setenv("ELASTICSEARCH_INDEX", "ret-index")
	t.Setenv("RETENTION_CRON", "12h")
	t.Setenv("RETENTION_MAX_AGE", "36h")
	t.Setenv("RETENTION_BATCH_SIZE", "123")

	cfg, err := config.LoadRetention()
	require.NoError(t, err)

	require.Equal(t, 12*time.Hour, cfg.Interval)
	require.Equal(t, 36*time.Hour, cfg.MaxAge)
	require.Equal(t, 123, cfg.BatchSize)
	require.Equal(t, "http://ret-es:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "ret-index", cfg.ElasticsearchIndex)
}

func TestLoadRetentionDefaults(t *testing.T) {
	noDotenv(t)
	for _, key := range []string{"ELASTICSEARCH_ADDR", "ELASTICSEARCH_INDEX", "RETENTION_CRON", "RETENTION_MAX_AGE", "RETENTION_BATCH_SIZE"} {
		t.Setenv(key, "")
	}

	cfg, err := config.LoadRetention()
	require.NoError(t, err)

	require.Equal(t, "http://elasticsearch:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "nearest-stations", cfg.ElasticsearchIndex)
	require.Equal(t, 24*time.Hour, cfg.Interval)
	require.Equal(t, 720*time.Hour, cfg.MaxAge)
	require.Equal(t, 500, cfg.BatchSize)
}

func TestLoadRetentionRejectsNonPositive(t *testing.T) {
	noDotenv(t)
	t.Setenv("RETENTION_BATCH_SIZE", "0")

	_, err := config.LoadRetention()
	require.Error(t, err)
}
