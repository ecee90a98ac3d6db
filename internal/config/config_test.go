package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabemb.yaml")
	content := `
embedder:
  type: openai
  dimension: 64
  requests_per_second: 2.5
schema:
  max_sentences: 10
input:
  path: data.csv
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, EmbedderOpenAI, cfg.Embedder.Type)
	assert.Equal(t, 64, cfg.Embedder.Dimension)
	assert.Equal(t, 2.5, cfg.Embedder.RequestsPerSecond)
	assert.Equal(t, "Qwen3-Embedding-4B", cfg.Embedder.Model)
	assert.Equal(t, 30*time.Second, cfg.Embedder.Timeout())
	require.NotNil(t, cfg.Embedder.OpenAI)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	assert.Nil(t, cfg.Embedder.Gradio)
	assert.Equal(t, 31, cfg.Schema.StructuredColumns)
	assert.Equal(t, 10, cfg.Schema.MaxSentences)
	assert.Equal(t, "data.csv", cfg.Input.Path)
	assert.Equal(t, "embedding_sampled_data_share.xlsx", cfg.Output.Path)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("embedder: [1, 2"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Metrics.Textfile = "/tmp/tabemb.prom"
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, path, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "tabemb", "config.yaml"), path)
	assert.Equal(t, Default(), cfg)
	assert.FileExists(t, path)

	require.NoError(t, os.WriteFile("tabemb.yaml", []byte("embedder:\n  type: tfidf\n"), 0o644))
	cfg, path, err = LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, "tabemb.yaml", path)
	assert.Equal(t, EmbedderTFIDF, cfg.Embedder.Type)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		want   string
	}{
		{name: "unknown embedder", mutate: func(c *AppConfig) { c.Embedder.Type = "bert" }, want: "embedder.type"},
		{name: "zero dimension", mutate: func(c *AppConfig) { c.Embedder.Dimension = 0 }, want: "embedder.dimension"},
		{name: "negative rate", mutate: func(c *AppConfig) { c.Embedder.RequestsPerSecond = -1 }, want: "requests_per_second"},
		{name: "no slots", mutate: func(c *AppConfig) { c.Schema.MaxSentences = 0 }, want: "schema.max_sentences"},
		{name: "negative k", mutate: func(c *AppConfig) { c.Schema.StructuredColumns = -3 }, want: "schema.structured_columns"},
		{name: "no input", mutate: func(c *AppConfig) { c.Input.Path = "" }, want: "input.path"},
		{name: "no output", mutate: func(c *AppConfig) { c.Output.Path = "" }, want: "output.path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
