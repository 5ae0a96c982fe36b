package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the marks tool.
type Config struct {
	Models     ModelsConfig     `yaml:"models"`
	Processing ProcessingConfig `yaml:"processing"`
	Output     OutputConfig     `yaml:"output"`
	Quality    QualityConfig    `yaml:"quality"`
}

// ModelsConfig names the Ollama backends.
type ModelsConfig struct {
	Embedding string `yaml:"embedding"`
	LLM       string `yaml:"llm"`
	OllamaURL string `yaml:"ollama_url"`
}

// ProcessingConfig holds batch processing settings.
type ProcessingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"` // Throttle for generator/fetcher calls
	FetchTimeout      int     `yaml:"fetch_timeout"`       // Seconds
	SimilarityCutoff  float64 `yaml:"similarity_cutoff"`   // Duplicate/candidate threshold
}

// OutputConfig holds file output settings.
type OutputConfig struct {
	BackupDir   string   `yaml:"backup_dir"`
	KeepBackups int      `yaml:"keep_backups"`
	Includes    []string `yaml:"includes"`
	Excludes    []string `yaml:"excludes"`
	CachePath   string   `yaml:"cache_path"` // Vector cache database; empty disables caching
}

// QualityConfig bounds generated enrichment content.
type QualityConfig struct {
	MinDescriptionLength int `yaml:"min_description_length"`
	MaxDescriptionLength int `yaml:"max_description_length"`
	MinTags              int `yaml:"min_tags"`
	MaxTags              int `yaml:"max_tags"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Models: ModelsConfig{
			Embedding: "nomic-embed-text",
			LLM:       "llama3.1:8b",
			OllamaURL: "http://localhost:11434",
		},
		Processing: ProcessingConfig{
			RequestsPerSecond: 2,
			FetchTimeout:      10,
			SimilarityCutoff:  0.85,
		},
		Output: OutputConfig{
			BackupDir:   "backups",
			KeepBackups: 10,
			Includes:    []string{"*.json", "*.csv"},
			Excludes:    []string{"*_enriched.json", "*.backup"},
			CachePath:   "",
		},
		Quality: QualityConfig{
			MinDescriptionLength: 10,
			MaxDescriptionLength: 500,
			MinTags:              1,
			MaxTags:              10,
		},
	}
}

// Load loads configuration from a YAML file, returning defaults when
// the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir looks for marks.yaml or .marks/config.yaml in dir.
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "marks.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".marks", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the configuration for inconsistent settings.
func (c *Config) Validate() error {
	if c.Models.Embedding == "" {
		return fmt.Errorf("embedding model cannot be empty")
	}
	if c.Models.LLM == "" {
		return fmt.Errorf("llm model cannot be empty")
	}
	if c.Processing.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive")
	}
	if c.Processing.SimilarityCutoff <= 0 || c.Processing.SimilarityCutoff > 1 {
		return fmt.Errorf("similarity_cutoff must be in (0, 1]")
	}
	if c.Quality.MaxDescriptionLength <= c.Quality.MinDescriptionLength {
		return fmt.Errorf("max_description_length must be greater than min")
	}
	if c.Quality.MaxTags <= 0 {
		return fmt.Errorf("max_tags must be positive")
	}
	return nil
}
