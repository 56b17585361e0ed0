package feed

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxTTL   = 3 * 24 * 60 * 60 * 60
	DefaultTTL      = 60 * 60
	DefaultLanguage = "en-us"
)

// Settings configure one Engine. They replace process-wide defaults so
// engines with different limits can coexist.
type Settings struct {
	MaxTTL            int               `yaml:"max_ttl"`     // seconds
	DefaultTTL        int               `yaml:"default_ttl"` // seconds
	DefaultLanguage   string            `yaml:"default_language"`
	StripCommentCount bool              `yaml:"strip_comment_count"`
	CacheTimeout      int               `yaml:"cache_timeout"` // seconds
	Namespaces        map[string]string `yaml:"namespaces"`
}

func DefaultSettings() *Settings {
	s := &Settings{}
	s.setDefaults()
	return s
}

// LoadSettings reads a YAML settings file. An empty path yields defaults.
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		return DefaultSettings(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	settings.setDefaults()

	if err := settings.validate(); err != nil {
		return nil, fmt.Errorf("invalid settings %s: %w", path, err)
	}

	return &settings, nil
}

func (s *Settings) CacheTimeoutDuration() time.Duration {
	return time.Duration(s.CacheTimeout) * time.Second
}

func (s *Settings) setDefaults() {
	if s.MaxTTL == 0 {
		s.MaxTTL = DefaultMaxTTL
	}
	if s.DefaultTTL == 0 {
		s.DefaultTTL = DefaultTTL
	}
	if s.DefaultLanguage == "" {
		s.DefaultLanguage = DefaultLanguage
	}
	if s.CacheTimeout == 0 {
		s.CacheTimeout = 5
	}
}

func (s *Settings) validate() error {
	nonNegativeFields := map[string]int{
		"max ttl":       s.MaxTTL,
		"default ttl":   s.DefaultTTL,
		"cache timeout": s.CacheTimeout,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	if s.DefaultTTL > s.MaxTTL {
		return fmt.Errorf("default ttl %d exceeds max ttl %d", s.DefaultTTL, s.MaxTTL)
	}

	for prefix, uri := range s.Namespaces {
		if prefix == "" || uri == "" {
			return fmt.Errorf("namespace entries need a prefix and a URI")
		}
	}

	return nil
}
