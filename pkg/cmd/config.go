package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
	"github.com/webdex/webdex/pkg/api"
)

type appConfig struct {
	Crawl   CrawlConfig   `mapstructure:"crawl"`
	Storage StorageConfig `mapstructure:"storage"`
	API     api.Config    `mapstructure:"api"`
}

// CrawlConfig holds the crawl/index settings driven by spec.md §6's
// environment variables.
type CrawlConfig struct {
	SeedURLsFilePath     string `mapstructure:"seed_urls_file_path"`
	Depth                int    `mapstructure:"depth"`
	DateDiffForUpdate    int    `mapstructure:"date_diff_for_update"`
	ThreadsMultiplier    int    `mapstructure:"threads_multiplier"`
	IndexSaveIntervalMin int    `mapstructure:"index_save_interval_min"`
	TopKResults          int    `mapstructure:"top_k_results"`
	StopCrawler          bool   `mapstructure:"stop_crawler"`
	ExcludePatterns      string `mapstructure:"exclude_patterns"`
	FetchLogPath         string `mapstructure:"fetch_log_path"`
}

// StorageConfig holds configuration for the document snapshot.
type StorageConfig struct {
	URLIndexFilePath string `mapstructure:"url_index_file_path"`
	SnapshotS3Bucket string `mapstructure:"snapshot_s3_bucket"`
}

// loadConfig loads the application configuration from the specified file path and environment variables.
// It uses the provided args structure to determine the configuration path.
// The function returns a pointer to the appConfig structure and an error if something goes wrong.
func loadConfig(flags *cmdFlags) (*appConfig, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())

	if flags.ConfigPath != "" {
		v.SetConfigFile(flags.ConfigPath)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg appConfig

	v.SetDefault("crawl.depth", 10)
	v.SetDefault("crawl.date_diff_for_update", 3)
	v.SetDefault("crawl.threads_multiplier", 2)
	v.SetDefault("crawl.index_save_interval_min", 30)
	v.SetDefault("crawl.top_k_results", 10)
	v.SetDefault("crawl.fetch_log_path", "data/fetch_log.txt")
	v.SetDefault("api.api_base_url", "http://localhost:8080")

	bindEnv(v, map[string]string{
		"crawl.seed_urls_file_path":     "SEED_URLS_FILE_PATH",
		"crawl.depth":                   "CRAWL_DEPTH",
		"crawl.date_diff_for_update":    "CRAWL_DATE_DIFF_FOR_UPDATE",
		"crawl.threads_multiplier":      "CRAWL_THREADS_MULTIPLIER",
		"crawl.index_save_interval_min": "INDEX_SAVE_INTERVAL_MIN",
		"crawl.top_k_results":           "TOP_K_RESULTS",
		"crawl.stop_crawler":            "STOP_CRAWLER",
		"crawl.exclude_patterns":        "CRAWL_EXCLUDE_PATTERNS",
		"crawl.fetch_log_path":          "FETCH_LOG_PATH",
		"storage.url_index_file_path":   "URL_INDEX_FILE_PATH",
		"storage.snapshot_s3_bucket":    "SNAPSHOT_S3_BUCKET",
		"api.listen":                    "API_LISTEN",
		"api.api_keys":                  "API_KEYS",
		"api.home_file":                 "HOMEPAGE_FILE_PATH",
		"api.api_base_url":              "API_BASE_URL",
	})

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	slog.Debug("Config loaded", slog.Any("config", cfg))

	return &cfg, nil
}

func bindEnv(v *viper.Viper, bindings map[string]string) {
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			slog.Error("failed to bind env var", "key", key, "env", env, "error", err)
		}
	}
}
