package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/bookclub/internal/domain/model"
)

// Search backend kinds.
const (
	BackendRedis    = "redis"
	BackendEmbedded = "embedded"
)

// Config holds the bookclub configuration.
type Config struct {
	HTTP      HTTPConfig           `yaml:"http"`
	Database  DatabaseConfig       `yaml:"database"`
	Search    SearchConfig         `yaml:"search"`
	Embedding EmbeddingConfig      `yaml:"embedding"`
	LLM       LLMConfig            `yaml:"llm"`
	Pricing   map[string]PriceConf `yaml:"pricing"`
	Data      DataConfig           `yaml:"data"`
	Ingest    IngestConfig         `yaml:"ingest"`
	Auth      AuthConfig           `yaml:"auth"`
	RateLimit RateLimitConfig      `yaml:"rate_limit"`
	Logging   LoggingConfig        `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// RateLimitConfig throttles the answer endpoint. RPS 0 disables it.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SearchConfig holds retrieval and index settings.
type SearchConfig struct {
	Backend          string `yaml:"backend"` // redis | embedded
	IndexName        string `yaml:"index_name"`
	KeyPrefix        string `yaml:"key_prefix"`
	ResultCap        int    `yaml:"result_cap"`
	OfflineResultCap int    `yaml:"offline_result_cap"`
	CandidatePool    int    `yaml:"candidate_pool"`
	HNSWM            int    `yaml:"hnsw_m"`
	HNSWEFConstruct  int    `yaml:"hnsw_ef_construction"`
}

// EmbeddingConfig holds the sentence-embedding endpoint settings.
type EmbeddingConfig struct {
	BaseURL      string `yaml:"base_url"`
	APIKey       string `yaml:"api_key"`
	Model        string `yaml:"model"`
	Dimensions   int    `yaml:"dimensions"`
	Provider     string `yaml:"provider"` // metrics label
	CacheEnabled bool   `yaml:"cache_enabled"`
	CacheTTLSec  int    `yaml:"cache_ttl_sec"`
}

// LLMConfig holds chat-completion backends and model selection.
type LLMConfig struct {
	Providers    map[string]ProviderConfig `yaml:"providers"`
	Models       []string                  `yaml:"models"`
	DefaultModel string                    `yaml:"default_model"`
	JudgeModel   string                    `yaml:"judge_model"`
}

// ProviderConfig holds a chat-completion endpoint.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// PriceConf is a per-1K-token price pair.
type PriceConf struct {
	Prompt     float64 `yaml:"prompt"`
	Completion float64 `yaml:"completion"`
}

// DataConfig locates review files for ingestion.
type DataConfig struct {
	Dir      string   `yaml:"dir"`
	Patterns []string `yaml:"patterns"`
}

// IngestConfig holds ingestion worker pool settings.
type IngestConfig struct {
	Workers   int `yaml:"workers"`
	BatchSize int `yaml:"batch_size"`
}

// Load reads configuration from a YAML file by environment name (local, docker, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes raw YAML, expanding ${VAR} references, then applies defaults and validates.
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
	// генерация + оценка легко занимают больше минуты
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	c.Search.applyDefaults()
	c.Embedding.applyDefaults()
	if c.LLM.JudgeModel == "" {
		c.LLM.JudgeModel = model.DefaultJudge
	}
	if len(c.LLM.Models) == 0 {
		c.LLM.Models = model.DefaultModels()
	}
	if c.LLM.DefaultModel == "" {
		c.LLM.DefaultModel = c.LLM.Models[0]
	}
	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}
	if len(c.Data.Patterns) == 0 {
		c.Data.Patterns = []string{"book-reviews-*.csv", "book-reviews-*.parquet"}
	}
	if c.Ingest.Workers <= 0 {
		c.Ingest.Workers = 4
	}
	if c.Ingest.BatchSize <= 0 {
		c.Ingest.BatchSize = 32
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 1
	}
}

func (s *SearchConfig) applyDefaults() {
	if s.Backend == "" {
		s.Backend = BackendRedis
	}
	if s.IndexName == "" {
		s.IndexName = "book-reviews"
	}
	if s.KeyPrefix == "" {
		s.KeyPrefix = "bookclub:"
	}
	if s.ResultCap == 0 {
		s.ResultCap = 7
	}
	if s.OfflineResultCap == 0 {
		s.OfflineResultCap = 3
	}
	if s.CandidatePool == 0 {
		s.CandidatePool = 10000
	}
	if s.HNSWM <= 0 {
		s.HNSWM = 16
	}
	if s.HNSWEFConstruct <= 0 {
		s.HNSWEFConstruct = 200
	}
}

func (e *EmbeddingConfig) applyDefaults() {
	if e.Model == "" {
		e.Model = "multi-qa-MiniLM-L6-cos-v1"
	}
	if e.Dimensions <= 0 {
		e.Dimensions = 384
	}
	if e.Provider == "" {
		e.Provider = "local"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Search.Backend {
	case BackendRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for search.backend %q", BackendRedis)
		}
	case BackendEmbedded:
	default:
		return fmt.Errorf("search.backend must be %q or %q, got %q", BackendRedis, BackendEmbedded, c.Search.Backend)
	}
	if c.Search.ResultCap < 0 || c.Search.OfflineResultCap < 0 || c.Search.CandidatePool < 0 {
		return fmt.Errorf("search caps must not be negative")
	}
	for name := range c.LLM.Providers {
		if _, err := model.ParseProvider(name); err != nil {
			return fmt.Errorf("llm.providers: %w", err)
		}
	}
	if err := c.checkModel("llm.judge_model", c.LLM.JudgeModel); err != nil {
		return err
	}
	if err := c.checkModel("llm.default_model", c.LLM.DefaultModel); err != nil {
		return err
	}
	for name, p := range c.Pricing {
		if p.Prompt < 0 || p.Completion < 0 {
			return fmt.Errorf("pricing.%s: prices must not be negative", name)
		}
	}
	return nil
}

func (c *Config) checkModel(field, id string) error {
	parsed, err := model.Parse(id)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if _, ok := c.LLM.Providers[string(parsed.Provider)]; !ok {
		return fmt.Errorf("%s: provider %q is not configured under llm.providers", field, parsed.Provider)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
