package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Warehouse drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverBigQuery = "bigquery"
)

// Artifact stores.
const (
	StoreGCS   = "gcs"
	StoreLocal = "local"
)

// Config is built once per process and handed to every constructor that needs it.
type Config struct {
	Environment string
	Port        string

	// Warehouse
	WarehouseDriver   string
	DatabaseURL       string
	BQProjectID       string
	BQDatasetID       string
	GoogleCredentials string // inline JSON or a file path

	// Intermediate artifacts
	ArtifactStore    string
	ArtifactBucket   string
	ArtifactSubdir   string
	ArtifactLocalDir string

	// Slack
	SlackWebhookURL string
	SlackToken      string
	SlackChannelID  string

	// Vendor crawl
	VendorBaseURL       string
	RequestInterval     time.Duration
	FetchWorkers        int
	HTTPTimeout         time.Duration
	SaveCombinationsDir string

	// Staged load
	LoadBatchSize     int
	LoadBatchPause    time.Duration
	TableWaitAttempts int
	TableWaitBackoff  time.Duration
	CreatePause       time.Duration
}

func Load() *Config {
	defaultDSN := "root:root@tcp(127.0.0.1:3306)/pricing?charset=utf8mb4&parseTime=True&loc=Local"

	creds := getEnv("GOOGLE_APPLICATION_CREDENTIALS_JSON", "")
	if creds == "" {
		creds = getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),

		WarehouseDriver:   strings.ToLower(getEnv("WAREHOUSE_DRIVER", DriverMySQL)),
		DatabaseURL:       getEnv("DATABASE_URL", defaultDSN),
		BQProjectID:       getEnv("BQ_PROJECT_ID", ""),
		BQDatasetID:       getEnv("BQ_DATASET_ID", "lake_competitor"),
		GoogleCredentials: creds,

		ArtifactStore:    strings.ToLower(getEnv("ARTIFACT_STORE", StoreLocal)),
		ArtifactBucket:   getEnv("ARTIFACT_BUCKET", ""),
		ArtifactSubdir:   getEnv("ARTIFACT_SUBDIR", "pricing/"),
		ArtifactLocalDir: getEnv("ARTIFACT_LOCAL_DIR", "./artifacts"),

		SlackWebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
		SlackToken:      getEnv("SLACK_TOKEN", ""),
		SlackChannelID:  getEnv("SLACK_CHANNEL_ID", ""),

		VendorBaseURL:       getEnv("VENDOR_BASE_URL", "https://www.printpac.co.jp/contents/lineup"),
		RequestInterval:     getEnvDuration("REQUEST_INTERVAL", 100*time.Millisecond),
		FetchWorkers:        getEnvInt("FETCH_WORKERS", 1),
		HTTPTimeout:         getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		SaveCombinationsDir: getEnv("SAVE_COMBINATIONS_DIR", ""),

		LoadBatchSize:     getEnvInt("LOAD_BATCH_SIZE", 30000),
		LoadBatchPause:    getEnvDuration("LOAD_BATCH_PAUSE", time.Second),
		TableWaitAttempts: getEnvInt("TABLE_WAIT_ATTEMPTS", 10),
		TableWaitBackoff:  getEnvDuration("TABLE_WAIT_BACKOFF", time.Second),
		CreatePause:       getEnvDuration("TABLE_CREATE_PAUSE", 3*time.Second),
	}
}

// Validate rejects settings that would only fail later, mid-run.
func (c *Config) Validate() error {
	switch c.WarehouseDriver {
	case DriverMySQL, DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for warehouse driver %q", c.WarehouseDriver)
		}
	case DriverBigQuery:
		if c.BQProjectID == "" || c.BQDatasetID == "" {
			return fmt.Errorf("BQ_PROJECT_ID and BQ_DATASET_ID are required for the bigquery warehouse")
		}
	default:
		return fmt.Errorf("unknown warehouse driver %q", c.WarehouseDriver)
	}

	switch c.ArtifactStore {
	case StoreGCS:
		if c.ArtifactBucket == "" {
			return fmt.Errorf("ARTIFACT_BUCKET is required for the gcs artifact store")
		}
	case StoreLocal:
		if c.ArtifactLocalDir == "" {
			return fmt.Errorf("ARTIFACT_LOCAL_DIR is required for the local artifact store")
		}
	default:
		return fmt.Errorf("unknown artifact store %q", c.ArtifactStore)
	}

	if c.SlackToken != "" && c.SlackChannelID == "" {
		return fmt.Errorf("SLACK_CHANNEL_ID is required when SLACK_TOKEN is set")
	}
	if c.FetchWorkers < 1 {
		return fmt.Errorf("FETCH_WORKERS must be >= 1, got %d", c.FetchWorkers)
	}
	if c.LoadBatchSize < 1 {
		return fmt.Errorf("LOAD_BATCH_SIZE must be >= 1, got %d", c.LoadBatchSize)
	}
	if c.TableWaitAttempts < 1 {
		return fmt.Errorf("TABLE_WAIT_ATTEMPTS must be >= 1, got %d", c.TableWaitAttempts)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return i
}

// getEnvDuration accepts Go durations ("250ms") or plain milliseconds ("250").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
