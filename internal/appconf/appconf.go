package appconf

import (
	"strings"
	"time"

	"github.com/ironpinguin/departure-monitor-sub000/internal/metrics"
)

type Environment int

const (
	Development Environment = iota
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// EnvFlagToEnvironment maps the -env flag to an Environment. Unknown values
// fall back to Development.
func EnvFlagToEnvironment(env string) Environment {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "test":
		return Test
	case "production", "prod":
		return Production
	default:
		return Development
	}
}

// Config holds all the configuration settings for the service.
type Config struct {
	Port    int
	Env     Environment
	ApiKeys []string

	// RateLimit is requests per second per API key. Negative disables limiting.
	RateLimit int

	// ConfigFile is where the live configuration is persisted. Empty keeps it
	// in memory.
	ConfigFile string

	GtfsURL         string
	GtfsRefresh     time.Duration
	MaxFileSize     int64
	MaxBodySize     int64
	LogLevel        string
	MetricsExporter metrics.ExporterType
	OTLPEndpoint    string
}

// Default returns the configuration used when no flags are given.
func Default() Config {
	return Config{
		Port:            4000,
		Env:             Development,
		ApiKeys:         []string{"test"},
		RateLimit:       100,
		MaxFileSize:     10 << 20,
		MaxBodySize:     10<<20 + 64<<10,
		LogLevel:        "info",
		MetricsExporter: metrics.ExporterNone,
	}
}

// ParseAPIKeys splits a comma separated flag value, dropping blanks.
func ParseAPIKeys(flag string) []string {
	var keys []string
	for _, key := range strings.Split(flag, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
