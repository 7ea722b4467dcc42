package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the service configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Data    DataConfig    `yaml:"data"`
	Search  SearchConfig  `yaml:"search"`
	Cache   CacheConfig   `yaml:"cache"`
	Quotes  QuotesConfig  `yaml:"quotes"`
	Logging LoggingConfig `yaml:"logging"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int        `yaml:"port"`
	ReadTimeoutSec  int        `yaml:"read_timeout_sec"`
	WriteTimeoutSec int        `yaml:"write_timeout_sec"`
	ShutdownSec     int        `yaml:"shutdown_timeout_sec"`
	CORS            CORSConfig `yaml:"cors"`
}

// CORSConfig lists the browser origins allowed to call /api/v1.
type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins"` // comma-separated
}

// Origins splits AllowedOrigins, dropping blanks.
func (c CORSConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// DataConfig points at the CSV files the catalog is loaded from.
type DataConfig struct {
	CompaniesCSV string `yaml:"companies_csv"`
	TickersCSV   string `yaml:"tickers_csv"`
}

// SearchConfig selects and tunes the similarity matcher.
type SearchConfig struct {
	Matcher      string `yaml:"matcher"`    // bleve, memory (default: bleve)
	IndexPath    string `yaml:"index_path"` // empty keeps the bleve index in memory
	RebuildIndex bool   `yaml:"rebuild_index"`
	StreamLimit  int    `yaml:"stream_limit"`
	ResultLimit  int    `yaml:"result_limit"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Driver           string        `yaml:"driver"` // memory, redis, none (default: memory)
	Addrs            []string      `yaml:"addrs"`
	Username         string        `yaml:"username"`
	Password         string        `yaml:"password"`
	DB               int           `yaml:"db"`
	KeyPrefix        string        `yaml:"key_prefix"`
	AutocompleteTTL  time.Duration `yaml:"autocomplete_ttl"`
	DefaultTTL       time.Duration `yaml:"default_ttl"`
	SweepInterval    time.Duration `yaml:"sweep_interval"`
	ReadinessTimeout int           `yaml:"readiness_timeout_sec"`
}

// QuotesConfig controls the market data refresh at startup.
type QuotesConfig struct {
	Enabled      bool `yaml:"enabled"`
	SymbolsLimit int  `yaml:"symbols_limit"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if strings.TrimSpace(c.HTTP.CORS.AllowedOrigins) == "" {
		c.HTTP.CORS.AllowedOrigins = "http://localhost:3000"
	}
	if c.Data.CompaniesCSV == "" {
		c.Data.CompaniesCSV = "data/companies.csv"
	}
	if c.Data.TickersCSV == "" {
		c.Data.TickersCSV = "data/tickers.csv"
	}
	if c.Search.Matcher == "" {
		c.Search.Matcher = "bleve"
	}
	if c.Search.StreamLimit <= 0 {
		c.Search.StreamLimit = 50
	}
	if c.Search.ResultLimit <= 0 {
		c.Search.ResultLimit = 10
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "memory"
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "stock-catalog:"
	}
	if c.Cache.AutocompleteTTL <= 0 {
		c.Cache.AutocompleteTTL = 15 * time.Minute
	}
	if c.Cache.DefaultTTL <= 0 {
		c.Cache.DefaultTTL = 60 * time.Minute
	}
	if c.Cache.SweepInterval <= 0 {
		c.Cache.SweepInterval = time.Minute
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Quotes.SymbolsLimit <= 0 {
		c.Quotes.SymbolsLimit = 100
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Search.Matcher {
	case "bleve", "memory":
	default:
		return fmt.Errorf("search.matcher must be \"bleve\" or \"memory\", got %q", c.Search.Matcher)
	}
	if c.Search.ResultLimit > 10 {
		return fmt.Errorf("search.result_limit must be at most 10, got %d", c.Search.ResultLimit)
	}
	switch c.Cache.Driver {
	case "memory", "none":
	case "redis":
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("cache.driver must be \"memory\", \"redis\" or \"none\", got %q", c.Cache.Driver)
	}
	return nil
}

// findConfigPath locates config/<env>.yaml, honouring CONFIG_DIR.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, filename)
	}
	return filepath.Join("config", filename)
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
