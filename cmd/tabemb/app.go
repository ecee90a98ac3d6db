package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tabemb/internal/config"
	"tabemb/internal/embedding"
	"tabemb/internal/embedding/gradio"
	"tabemb/internal/embedding/openai"
	"tabemb/internal/embedding/tfidf"
	"tabemb/internal/logging"
)

// loadConfig reads the config from --config or the default locations.
func loadConfig() (*config.AppConfig, string, error) {
	var (
		cfg  *config.AppConfig
		path = configPath
		err  error
	)
	if path == "" {
		cfg, path, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, "", &configError{err: fmt.Errorf("loading config: %w", err)}
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, path, nil
}

func newLogger(cfg *config.AppConfig, tui bool) (*slog.Logger, func(), error) {
	lcfg := logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format}
	path := logDestination(cfg, tui)
	if path == "" {
		logger, err := logging.New(lcfg)
		if err != nil {
			return nil, nil, &configError{err: err}
		}
		return logger, func() {}, nil
	}
	logger, f, err := logging.NewFile(lcfg, path)
	if err != nil {
		return nil, nil, &configError{err: err}
	}
	return logger, func() { f.Close() }, nil
}

// logDestination is the log file for this run, or "" for stderr. The progress
// view owns the terminal, so logs move to a file while it is shown.
func logDestination(cfg *config.AppConfig, tui bool) string {
	if cfg.Logging.File != "" {
		return cfg.Logging.File
	}
	if tui {
		return filepath.Join(os.TempDir(), "tabemb.log")
	}
	return ""
}

// newEmbeddingService assembles the service selected by embedder.type.
func newEmbeddingService(cfg config.EmbedderConfig) (embedding.Service, error) {
	switch cfg.Type {
	case config.EmbedderGradio:
		var opts []gradio.Option
		if cfg.Gradio != nil {
			opts = append(opts, gradio.WithBaseURL(cfg.Gradio.BaseURL), gradio.WithAPIName(cfg.Gradio.APIName))
			if cfg.Gradio.TokenEnv != "" {
				opts = append(opts, gradio.WithToken(os.Getenv(cfg.Gradio.TokenEnv)))
			}
		}
		return gradio.NewClient(opts...), nil
	case config.EmbedderOpenAI:
		if cfg.OpenAI == nil {
			return nil, &configError{err: fmt.Errorf("openai embedder config missing")}
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
		})
		if err != nil {
			return nil, &configError{err: fmt.Errorf("openai embedder init failed: %w", err)}
		}
		return client, nil
	case config.EmbedderTFIDF:
		return tfidf.NewEmbedder(), nil
	}
	return nil, &configError{err: fmt.Errorf("unknown embedder: %s", cfg.Type)}
}

func newAdapter(cfg config.EmbedderConfig, svc embedding.Service) *embedding.Adapter {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = embedding.DefaultTimeout
	}
	return embedding.NewAdapter(svc, cfg.Model, cfg.Dimension,
		embedding.WithTimeout(timeout),
		embedding.WithRateLimit(cfg.RequestsPerSecond),
	)
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
