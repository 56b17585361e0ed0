package cfg

import "time"

const (
	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
	CacheBackendNone   = "none"
)

type Cfg struct {
	// Cache configuration
	CacheBackend string
	DBPath       string
	RedisAddr    string

	// Application configuration
	Port           string
	APIAccessKey   string
	SettingsFile   string
	WorkerCount    int
	ExpiryInterval int
	CacheRetention int

	// Application metadata
	Timezone  string
	Debug     bool
	LogFormat string
	Version   string
}

func (c *Cfg) ExpiryIntervalDuration() time.Duration {
	return time.Duration(c.ExpiryInterval) * time.Second
}

func (c *Cfg) CacheRetentionDuration() time.Duration {
	return time.Duration(c.CacheRetention) * time.Second
}
