package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/dataqa-cli/internal/answer"
	"github.com/KaramelBytes/dataqa-cli/internal/ingest"
)

// openTable reads and cleans a dataset file using the configured limits.
func openTable(path, sheet string) (*ingest.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	opt := ingest.DefaultOptions()
	if cfg != nil {
		opt.MaxBytes = cfg.MaxUploadBytes()
	}
	opt.SheetName = sheet
	opt.Logger = logger
	return ingest.Clean(ingest.RawFile{Name: filepath.Base(path), Reader: f}, opt)
}

// answerConfig maps the loaded configuration onto the answer service.
func answerConfig() answer.Config {
	if cfg == nil {
		return answer.Config{Logger: logger}
	}
	return answer.Config{
		APIKey:      cfg.APIKey,
		Provider:    cfg.Provider,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: &cfg.Temperature,
		Timeout:     cfg.HTTPTimeout(),
		Logger:      logger,
	}
}
