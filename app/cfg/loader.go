package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Cache configuration
	CacheBackend string `long:"cache-backend" env:"CACHE_BACKEND" default:"sqlite" choice:"sqlite" choice:"redis" choice:"memory" choice:"none" description:"Store for normalized feed records"`
	DBPath       string `long:"db-path" env:"DB_PATH" default:"./rss-canon.db" description:"SQLite database file"`
	RedisAddr    string `long:"redis-addr" env:"REDIS_ADDR" default:"localhost:6379" description:"Redis address when the redis backend is used"`

	// Application configuration
	Port           string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey   string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	SettingsFile   string `long:"settings" env:"SETTINGS_FILE" description:"YAML file with engine settings (optional)"`
	WorkerCount    int    `long:"worker-count" env:"WORKER_COUNT" default:"4" description:"Number of background workers for feed ingestion"`
	ExpiryInterval int    `long:"expiry-interval" env:"EXPIRY_INTERVAL" default:"3600" description:"Cache expiry interval in seconds (0 disables expiry)"`
	CacheRetention int    `long:"cache-retention" env:"CACHE_RETENTION" default:"604800" description:"Seconds a cached feed is kept after its last retrieval"`

	// Application metadata
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
	LogFormat string `long:"log-format" env:"LOG_FORMAT" default:"text" choice:"text" choice:"json" description:"Log output format"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	cfg, err := load(os.Args[1:])
	if err != nil || cfg == nil {
		return cfg, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.WorkerCount < 1 {
		return nil, fmt.Errorf("worker-count must be positive, got %d", raw.WorkerCount)
	}
	if raw.ExpiryInterval < 0 || raw.CacheRetention < 0 {
		return nil, fmt.Errorf("expiry-interval and cache-retention must be non-negative")
	}

	return &Cfg{
		CacheBackend:   raw.CacheBackend,
		DBPath:         raw.DBPath,
		RedisAddr:      raw.RedisAddr,
		Port:           raw.Port,
		APIAccessKey:   raw.APIAccessKey,
		SettingsFile:   raw.SettingsFile,
		WorkerCount:    raw.WorkerCount,
		ExpiryInterval: raw.ExpiryInterval,
		CacheRetention: raw.CacheRetention,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		LogFormat:      raw.LogFormat,
		Version:        GetVersion(),
	}, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
