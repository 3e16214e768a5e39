package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/beliefgraph/internal/domain"
	"github.com/kailas-cloud/beliefgraph/internal/embedding/node2vec"
)

// Config holds the beliefgraph server and CLI configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Logging   LoggingConfig   `yaml:"logging"`
	Auth      AuthConfig      `yaml:"auth"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Model     ModelConfig     `yaml:"model"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Trainer   TrainerConfig   `yaml:"trainer"`
	Resolver  ResolverConfig  `yaml:"resolver"`
	Session   SessionConfig   `yaml:"session"`
	Narrative NarrativeConfig `yaml:"narrative"`
	Neo4j     Neo4jConfig     `yaml:"neo4j"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int    `yaml:"port"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec"`
	ShutdownSec     int    `yaml:"shutdown_timeout_sec"`
	ServiceName     string `yaml:"service_name"` // span name for otelhttp
}

// DatabaseConfig holds Redis connection settings. Only used when
// model.store is "redis".
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// ModelConfig selects where the trained embedding model lives.
type ModelConfig struct {
	Store string `yaml:"store"` // file (default), redis
	Path  string `yaml:"path"`  // file store location
	Name  string `yaml:"name"`  // redis key suffix
}

// CorpusConfig lists the extracted document files.
type CorpusConfig struct {
	Files     []string `yaml:"files"`
	GraphPath string   `yaml:"graph_path"` // output of beliefctl build
}

// TrainerConfig holds node2vec hyperparameters. Zero values take defaults.
type TrainerConfig struct {
	Dimensions      int     `yaml:"dimensions"`
	WalkLength      int     `yaml:"walk_length"`
	NumWalks        int     `yaml:"num_walks"`
	Window          int     `yaml:"window"`
	P               float64 `yaml:"p"`
	Q               float64 `yaml:"q"`
	Negative        int     `yaml:"negative"`
	Epochs          int     `yaml:"epochs"`
	LearningRate    float64 `yaml:"learning_rate"`
	MinLearningRate float64 `yaml:"min_learning_rate"`
	Workers         int     `yaml:"workers"`
	Seed            int64   `yaml:"seed"`
}

// ResolverConfig holds query matching settings.
type ResolverConfig struct {
	MaxCandidates         int     `yaml:"max_candidates"`
	NeighborsPerCandidate int     `yaml:"neighbors_per_candidate"`
	FuzzyThreshold        float64 `yaml:"fuzzy_threshold"`
	DefaultTopN           int     `yaml:"default_topn"`
	MarkSuggestionsSeen   bool    `yaml:"mark_suggestions_seen"`
}

// SessionConfig holds resolver session lifetime settings.
type SessionConfig struct {
	IdleTTLSec       int `yaml:"idle_ttl_sec"`
	SweepIntervalSec int `yaml:"sweep_interval_sec"`
}

// NarrativeConfig holds generation-layer settings.
type NarrativeConfig struct {
	MaxDocuments int `yaml:"max_documents"`
}

// Neo4jConfig holds the optional graph export target.
type Neo4jConfig struct {
	Enabled   bool   `yaml:"enabled"`
	URI       string `yaml:"uri"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Database  string `yaml:"database"`
	BatchSize int    `yaml:"batch_size"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
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
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.ServiceName == "" {
		c.HTTP.ServiceName = "beliefgraph"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = domain.KeyPrefix
	}
	if c.Model.Store == "" {
		c.Model.Store = ModelStoreFile
	}
	if c.Model.Path == "" {
		c.Model.Path = "data/model.bgem"
	}
	if c.Model.Name == "" {
		c.Model.Name = "default"
	}
	if c.Corpus.GraphPath == "" {
		c.Corpus.GraphPath = "data/graph.json"
	}

	def := domain.DefaultResolverConfig()
	if c.Resolver.MaxCandidates <= 0 {
		c.Resolver.MaxCandidates = def.MaxCandidates
	}
	if c.Resolver.NeighborsPerCandidate <= 0 {
		c.Resolver.NeighborsPerCandidate = def.NeighborsPerCandidate
	}
	if c.Resolver.FuzzyThreshold <= 0 {
		c.Resolver.FuzzyThreshold = def.FuzzyThreshold
	}
	if c.Resolver.DefaultTopN <= 0 {
		c.Resolver.DefaultTopN = def.DefaultTopN
	}

	if c.Session.IdleTTLSec <= 0 {
		c.Session.IdleTTLSec = 1800
	}
	if c.Session.SweepIntervalSec <= 0 {
		c.Session.SweepIntervalSec = 60
	}
	if c.Narrative.MaxDocuments <= 0 {
		c.Narrative.MaxDocuments = 20
	}
	if c.Neo4j.BatchSize <= 0 {
		c.Neo4j.BatchSize = 500
	}
	if c.Neo4j.Database == "" {
		c.Neo4j.Database = "neo4j"
	}
}

// Model store kinds.
const (
	ModelStoreFile  = "file"
	ModelStoreRedis = "redis"
)

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Model.Store {
	case ModelStoreFile:
	case ModelStoreRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required when model.store is %q", ModelStoreRedis)
		}
	default:
		return fmt.Errorf("model.store must be %q or %q, got %q", ModelStoreFile, ModelStoreRedis, c.Model.Store)
	}
	if t := c.Resolver.FuzzyThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("resolver.fuzzy_threshold must be in (0,1], got %v", t)
	}
	if c.Neo4j.Enabled && c.Neo4j.URI == "" {
		return fmt.Errorf("neo4j.uri is required when neo4j.enabled is true")
	}
	return nil
}

// DomainResolver converts the resolver section into domain settings.
func (c *Config) DomainResolver() domain.ResolverConfig {
	return domain.ResolverConfig{
		MaxCandidates:         c.Resolver.MaxCandidates,
		NeighborsPerCandidate: c.Resolver.NeighborsPerCandidate,
		FuzzyThreshold:        c.Resolver.FuzzyThreshold,
		DefaultTopN:           c.Resolver.DefaultTopN,
		MarkSuggestionsSeen:   c.Resolver.MarkSuggestionsSeen,
	}
}

// Node2Vec overlays the trainer section on the node2vec defaults.
func (c *Config) Node2Vec() node2vec.Config {
	n := node2vec.DefaultConfig()
	t := c.Trainer
	if t.Dimensions > 0 {
		n.Dimensions = t.Dimensions
	}
	if t.WalkLength > 0 {
		n.WalkLength = t.WalkLength
	}
	if t.NumWalks > 0 {
		n.NumWalks = t.NumWalks
	}
	if t.Window > 0 {
		n.Window = t.Window
	}
	if t.P > 0 {
		n.P = t.P
	}
	if t.Q > 0 {
		n.Q = t.Q
	}
	if t.Negative > 0 {
		n.Negative = t.Negative
	}
	if t.Epochs > 0 {
		n.Epochs = t.Epochs
	}
	if t.LearningRate > 0 {
		n.LearningRate = t.LearningRate
	}
	if t.MinLearningRate > 0 {
		n.MinLearningRate = t.MinLearningRate
	}
	if t.Workers > 0 {
		n.Workers = t.Workers
	}
	if t.Seed != 0 {
		n.Seed = t.Seed
	}
	return n
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

	// 3. Fallback to ./config/
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
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
