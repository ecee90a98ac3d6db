package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Embedder types.
const (
	EmbedderGradio = "gradio"
	EmbedderOpenAI = "openai"
	EmbedderTFIDF  = "tfidf"
)

// GradioConfig holds connection details for a Gradio predict endpoint.
type GradioConfig struct {
	BaseURL  string `yaml:"base_url"`
	APIName  string `yaml:"api_name"`
	TokenEnv string `yaml:"token_env,omitempty"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// EmbedderConfig selects and configures the embedding service.
type EmbedderConfig struct {
	Type              string                `yaml:"type"`
	Model             string                `yaml:"model"`
	Dimension         int                   `yaml:"dimension"`
	TimeoutSecs       int                   `yaml:"timeout_secs"`
	RequestsPerSecond float64               `yaml:"requests_per_second"`
	Gradio            *GradioConfig         `yaml:"gradio,omitempty"`
	OpenAI            *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// Timeout returns the per-call timeout.
func (c EmbedderConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// SchemaConfig fixes the positional layout of input datasets.
type SchemaConfig struct {
	StructuredColumns int `yaml:"structured_columns"`
	MaxSentences      int `yaml:"max_sentences"`
}

// InputConfig locates the dataset to annotate.
type InputConfig struct {
	Path  string `yaml:"path"`
	Sheet string `yaml:"sheet"`
}

// OutputConfig locates where the annotated dataset is written.
type OutputConfig struct {
	Path  string `yaml:"path"`
	Sheet string `yaml:"sheet"`
	Table string `yaml:"table"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// File redirects logs from stderr. With --tui and no file set, logs go to
	// tabemb.log in the temp directory.
	File string `yaml:"file,omitempty"`
}

// MetricsConfig configures metric export. An empty Textfile disables it.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder EmbedderConfig `yaml:"embedder"`
	Schema   SchemaConfig   `yaml:"schema"`
	Input    InputConfig    `yaml:"input"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./tabemb.yaml first, then ~/.config/tabemb/config.yaml.
// If neither exists, it writes defaults to ~/.config/tabemb/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "tabemb.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := DefaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns a fresh copy of the built-in configuration.
func Default() *AppConfig { return defaultConfig() }

// DefaultUserConfigPath returns ~/.config/tabemb/config.yaml.
func DefaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tabemb", "config.yaml"), nil
}

// Validate reports settings that cannot produce a working run.
func (c *AppConfig) Validate() error {
	var errs []error
	switch c.Embedder.Type {
	case EmbedderGradio, EmbedderOpenAI, EmbedderTFIDF:
	default:
		errs = append(errs, fmt.Errorf("embedder.type: unknown type %q", c.Embedder.Type))
	}
	if c.Embedder.Dimension <= 0 {
		errs = append(errs, fmt.Errorf("embedder.dimension: must be positive, got %d", c.Embedder.Dimension))
	}
	if c.Embedder.TimeoutSecs < 0 {
		errs = append(errs, fmt.Errorf("embedder.timeout_secs: must not be negative"))
	}
	if c.Embedder.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("embedder.requests_per_second: must not be negative"))
	}
	if c.Schema.StructuredColumns < 0 {
		errs = append(errs, fmt.Errorf("schema.structured_columns: must not be negative"))
	}
	if c.Schema.MaxSentences <= 0 {
		errs = append(errs, fmt.Errorf("schema.max_sentences: must be positive, got %d", c.Schema.MaxSentences))
	}
	if c.Input.Path == "" {
		errs = append(errs, errors.New("input.path: required"))
	}
	if c.Output.Path == "" {
		errs = append(errs, errors.New("output.path: required"))
	}
	return errors.Join(errs...)
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Embedder: EmbedderConfig{
			Type:        EmbedderGradio,
			Model:       "Qwen3-Embedding-4B",
			Dimension:   32,
			TimeoutSecs: 30,
			Gradio:      &GradioConfig{BaseURL: "http://127.0.0.1:7860", APIName: "/predict"},
		},
		Schema: SchemaConfig{StructuredColumns: 31, MaxSentences: 23},
		Input:  InputConfig{Path: "sampled_data_share.xlsx"},
		Output: OutputConfig{Path: "embedding_sampled_data_share.xlsx", Sheet: "Sheet1", Table: "annotated"},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = def.Embedder.Type
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = def.Embedder.Model
	}
	if cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = def.Embedder.Dimension
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = def.Embedder.TimeoutSecs
	}
	if cfg.Embedder.Type == EmbedderGradio {
		if cfg.Embedder.Gradio == nil {
			cfg.Embedder.Gradio = &GradioConfig{}
		}
		if cfg.Embedder.Gradio.BaseURL == "" {
			cfg.Embedder.Gradio.BaseURL = def.Embedder.Gradio.BaseURL
		}
		if cfg.Embedder.Gradio.APIName == "" {
			cfg.Embedder.Gradio.APIName = def.Embedder.Gradio.APIName
		}
	}
	if cfg.Embedder.Type == EmbedderOpenAI {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
	}
	if cfg.Schema.StructuredColumns == 0 {
		cfg.Schema.StructuredColumns = def.Schema.StructuredColumns
	}
	if cfg.Schema.MaxSentences == 0 {
		cfg.Schema.MaxSentences = def.Schema.MaxSentences
	}
	if cfg.Input.Path == "" {
		cfg.Input.Path = def.Input.Path
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = def.Output.Path
	}
	if cfg.Output.Sheet == "" {
		cfg.Output.Sheet = def.Output.Sheet
	}
	if cfg.Output.Table == "" {
		cfg.Output.Table = def.Output.Table
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
}

// ApplyDefaults fills unset fields, e.g. after a command-line override
// switched the embedder type.
func ApplyDefaults(cfg *AppConfig) { applyConfigDefaults(cfg) }
