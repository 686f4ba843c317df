package backend

import (
	"context"
	"fmt"
	"log/slog"

	"spendwise/internal/advisor"
	"spendwise/internal/archive"
	"spendwise/internal/config"
	"spendwise/internal/ports"
	sheetsgoogle "spendwise/internal/sheets/google"
	sheetsmemory "spendwise/internal/sheets/memory"
)

// NewArchiver returns the GCS archiver, or a no-op when no bucket is
// configured or the client cannot be created.
func NewArchiver(ctx context.Context, cfg *config.Config) ports.Archiver {
	if cfg.GCSBucket == "" {
		return archive.Noop{}
	}
	a, err := archive.NewGCS(ctx, cfg.GCSBucket)
	if err != nil {
		slog.WarnContext(ctx, "Failed to initialize upload archive, continuing without it", "error", err)
		return archive.Noop{}
	}
	slog.InfoContext(ctx, "Initialized upload archive", "bucket", cfg.GCSBucket)
	return a
}

// NewAdvisor returns the Gemini advisor, or canned replies without an API
// key.
func NewAdvisor(ctx context.Context, cfg *config.Config) ports.Advisor {
	if cfg.GeminiAPIKey == "" {
		slog.InfoContext(ctx, "No Gemini API key configured, chat uses canned replies")
		return advisor.Fallback{}
	}
	g, err := advisor.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		slog.WarnContext(ctx, "Failed to initialize Gemini, chat uses canned replies", "error", err)
		return advisor.Fallback{}
	}
	slog.InfoContext(ctx, "Initialized Gemini advisor", "model", cfg.GeminiModel)
	return g
}

// NewExporter returns the Google Sheets exporter, or an in-memory mirror
// when no spreadsheet is configured. Unlike the other collaborators a
// configured but broken exporter is an error: exporting is the worker's
// only job.
func NewExporter(ctx context.Context, cfg *config.Config) (ports.Exporter, error) {
	if !cfg.SheetsEnabled() {
		slog.WarnContext(ctx, "No spreadsheet configured, exporting to an in-memory mirror")
		return sheetsmemory.New(), nil
	}
	e, err := sheetsgoogle.New(ctx, sheetsgoogle.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsFile: cfg.GoogleCredentialsFile,
		CredentialsJSON: cfg.GoogleCredentialsJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize Google Sheets exporter: %w", err)
	}
	return e, nil
}
