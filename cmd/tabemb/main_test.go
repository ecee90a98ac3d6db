package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabemb/internal/config"
	"tabemb/internal/dataset"
	"tabemb/internal/schema"
	"tabemb/internal/service"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitSuccess},
		{name: "config", err: &configError{err: errors.New("bad")}, want: ExitConfigError},
		{name: "schema", err: fmt.Errorf("resolving schema: %w", &schema.Error{Got: 3, Want: 33}), want: ExitSchemaError},
		{name: "persist", err: fmt.Errorf("writing dataset: %w", &dataset.PersistError{Op: "write", Path: "x", Err: errors.New("disk full")}), want: ExitPersistError},
		{name: "cancelled", err: context.Canceled, want: ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCodeFor(tt.err))
		})
	}
}

func TestRenderReport(t *testing.T) {
	var buf bytes.Buffer
	report := &service.Report{RunID: "abc", Rows: 2, CellFallbacks: 1}
	report.Roles.Text = "notes"

	require.NoError(t, renderReport(&buf, report, "in.csv", "out.xlsx"))
	out := buf.String()
	assert.Contains(t, out, "abc")
	assert.Contains(t, out, "in.csv")
	assert.Contains(t, out, "Cell fallbacks")
	assert.Contains(t, out, "notes")
}

func TestRenderErrors(t *testing.T) {
	var buf bytes.Buffer
	errs := []error{errors.New("e1"), errors.New("e2"), errors.New("e3")}
	renderErrors(&buf, errs, 2)
	assert.Contains(t, buf.String(), "3 recoverable errors")
	assert.Contains(t, buf.String(), "e2")
	assert.NotContains(t, buf.String(), "e3")
	assert.Contains(t, buf.String(), "1 more")
}

func TestApplyAnnotateFlags(t *testing.T) {
	t.Cleanup(func() { annotateInput, annotateOutput, annotateEmbedder, annotateMetrics = "", "", "", "" })
	annotateInput, annotateOutput, annotateEmbedder, annotateMetrics = "in.csv", "out.db", config.EmbedderOpenAI, "m.prom"

	cfg := config.Default()
	cfg.Input.Sheet = "Data"
	applyAnnotateFlags(cfg)

	assert.Equal(t, "in.csv", cfg.Input.Path)
	assert.Empty(t, cfg.Input.Sheet)
	assert.Equal(t, "out.db", cfg.Output.Path)
	assert.Equal(t, config.EmbedderOpenAI, cfg.Embedder.Type)
	require.NotNil(t, cfg.Embedder.OpenAI)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	assert.Equal(t, "m.prom", cfg.Metrics.Textfile)
}

func TestLogDestination(t *testing.T) {
	cfg := config.Default()
	assert.Empty(t, logDestination(cfg, false))
	assert.Equal(t, filepath.Join(os.TempDir(), "tabemb.log"), logDestination(cfg, true))

	cfg.Logging.File = "run.log"
	assert.Equal(t, "run.log", logDestination(cfg, false))
	assert.Equal(t, "run.log", logDestination(cfg, true))
}

func TestNewLogger_TUIWritesToFile(t *testing.T) {
	t.Cleanup(func() { slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil))) })
	cfg := config.Default()
	cfg.Logging.File = filepath.Join(t.TempDir(), "tabemb.log")

	logger, closeLog, err := newLogger(cfg, true)
	require.NoError(t, err)
	logger.Warn("structured cell embedding failed, using fallback", slog.Int("row", 1))
	closeLog()

	data, err := os.ReadFile(cfg.Logging.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "row=1")
}

// writeInput writes a CSV with k structured columns, a text column and a label.
func writeInput(t *testing.T, path string, k int, texts ...string) {
	t.Helper()
	var header []string
	for i := 0; i < k; i++ {
		header = append(header, fmt.Sprintf("f%d", i))
	}
	header = append(header, "text", "label")
	lines := []string{strings.Join(header, ",")}
	for r, text := range texts {
		var rec []string
		for i := 0; i < k; i++ {
			rec = append(rec, fmt.Sprintf("%d", r*10+i))
		}
		rec = append(rec, text, fmt.Sprintf("%d", r%2))
		lines = append(lines, strings.Join(rec, ","))
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		configPath, logLevel = "", ""
		annotateInput, annotateOutput, annotateEmbedder, annotateMetrics = "", "", "", ""
		annotateTUI, annotateDryRun = false, false
		schemaInput, schemaSheet = "", ""
	})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAnnotateCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tabemb.yaml")
	cfg := config.Default()
	cfg.Embedder.Type = config.EmbedderTFIDF
	cfg.Schema.StructuredColumns = 2
	cfg.Schema.MaxSentences = 3
	cfg.Logging.Level = "error"
	require.NoError(t, config.Save(cfgPath, cfg))

	in := filepath.Join(dir, "in.csv")
	out := filepath.Join(dir, "out.jsonl")
	prom := filepath.Join(dir, "tabemb.prom")
	writeInput(t, in, 2, "One. Two", "")

	stdout, err := runCLI(t, "annotate", "--config", cfgPath, "--input", in, "--output", out, "--metrics-textfile", prom)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Sentences embedded")

	ds, err := (&dataset.JSONL{Path: out}).Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"f0", "f1", "text", "label", "f0_emb", "f1_emb", "text_sent1", "text_sent2", "text_sent3"}, ds.Columns)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, service.Mask, ds.Rows[0]["text_sent3"])
	assert.NotEqual(t, service.Mask, ds.Rows[0]["text_sent2"])
	assert.Equal(t, service.Mask, ds.Rows[1]["text_sent1"])
	assert.Equal(t, "1", ds.Rows[1]["label"])

	metrics, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "tabemb_rows_annotated_total 2")
}

func TestAnnotateCommand_SchemaError(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tabemb.yaml")
	cfg := config.Default()
	cfg.Embedder.Type = config.EmbedderTFIDF
	cfg.Logging.Level = "error"
	require.NoError(t, config.Save(cfgPath, cfg))

	in := filepath.Join(dir, "in.csv")
	out := filepath.Join(dir, "out.csv")
	writeInput(t, in, 2, "text")

	_, err := runCLI(t, "annotate", "--config", cfgPath, "--input", in, "--output", out)
	require.Error(t, err)
	assert.Equal(t, ExitSchemaError, exitCodeFor(err))
	assert.NoFileExists(t, out)
}

func TestSchemaCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tabemb.yaml")
	cfg := config.Default()
	cfg.Schema.StructuredColumns = 1
	require.NoError(t, config.Save(cfgPath, cfg))

	in := filepath.Join(dir, "in.csv")
	writeInput(t, in, 1, "a", "")

	stdout, err := runCLI(t, "schema", "--config", cfgPath, "--input", in)
	require.NoError(t, err)
	assert.Contains(t, stdout, "2 rows, 3 columns")
	assert.Contains(t, stdout, "text: text")
	assert.Contains(t, stdout, "label: label")
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "tabemb.yaml")

	stdout, err := runCLI(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, path)
	assert.FileExists(t, path)

	_, err = runCLI(t, "config", "init", path)
	assert.Equal(t, ExitConfigError, exitCodeFor(err))
}
