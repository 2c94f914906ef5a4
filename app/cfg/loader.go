package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/news.db" description:"Path to the SQLite database file"`

	// Application configuration
	SourcesDir        string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing source configuration files"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl           string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://news.example.com)"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"900" description:"Aggregation interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Engine
	ReportThreshold     int    `long:"report-threshold" env:"REPORT_THRESHOLD" default:"3" description:"Number of distinct reports that hides an article"`
	AdminEmail          string `long:"admin-email" env:"ADMIN_EMAIL" default:"admin@localhost" description:"Recipient of moderation notifications"`
	RecommendationLimit int    `long:"recommendation-limit" env:"RECOMMENDATION_LIMIT" default:"10" description:"Default number of recommended articles"`
	HeadlinesLimit      int    `long:"headlines-limit" env:"HEADLINES_LIMIT" default:"50" description:"Default page size for headlines and search"`
	EnrichBatch         int    `long:"enrich-batch" env:"ENRICH_BATCH" default:"20" description:"Articles enriched per enrichment run"`

	// Mail hand-off
	AMQPURL   string `long:"amqp-url" env:"AMQP_URL" description:"RabbitMQ URL for outgoing email jobs (logs emails when empty)"`
	MailQueue string `long:"mail-queue" env:"MAIL_QUEUE" default:"news.email" description:"Queue name for outgoing email jobs"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"News Comb/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs parses the given arguments instead of os.Args when args is not nil.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:              raw.DBPath,
		SourcesDir:          raw.SourcesDir,
		Port:                raw.Port,
		BaseUrl:             raw.BaseUrl,
		WorkerCount:         raw.WorkerCount,
		SchedulerInterval:   raw.SchedulerInterval,
		APIAccessKey:        raw.APIAccessKey,
		ReportThreshold:     raw.ReportThreshold,
		AdminEmail:          raw.AdminEmail,
		RecommendationLimit: raw.RecommendationLimit,
		HeadlinesLimit:      raw.HeadlinesLimit,
		EnrichBatch:         raw.EnrichBatch,
		AMQPURL:             raw.AMQPURL,
		MailQueue:           raw.MailQueue,
		UserAgent:           raw.UserAgent,
		Timezone:            raw.Timezone,
		Debug:               raw.Debug,
		Version:             GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func validate(cfg *Cfg) error {
	positiveFields := map[string]int{
		"report threshold":     cfg.ReportThreshold,
		"recommendation limit": cfg.RecommendationLimit,
		"headlines limit":      cfg.HeadlinesLimit,
		"worker count":         cfg.WorkerCount,
		"scheduler interval":   cfg.SchedulerInterval,
	}

	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	if cfg.EnrichBatch < 0 {
		return fmt.Errorf("enrich batch must be non-negative")
	}

	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
