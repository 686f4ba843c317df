// Package google mirrors ledger transactions into a Google Sheets tab, one
// row per transaction keyed by the ID in column A.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"spendwise/internal/core"
	"spendwise/internal/ports"
)

var header = []any{"ID", "User", "Date", "Description", "Amount", "Currency",
	"Category", "Mode", "Original Amount", "Original Currency"}

const lastColumn = "J"

type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string

	// mu serialises read-modify-write cycles on the ID column.
	mu      sync.Mutex
	sheetID *int64
}

var _ ports.Exporter = (*Exporter)(nil)

// New builds an exporter authenticated with service account credentials
// (inline JSON first, then file) or Application Default Credentials when
// neither is set. Extra options are appended after the credentials.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Exporter, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(cfg.SheetName) == "" {
		return nil, errors.New("missing sheet name")
	}

	credentials, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	clientOpts := []goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsScope)}
	if credentials != nil {
		clientOpts = append(clientOpts, goption.WithCredentialsJSON(credentials))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets exporter ready",
		"spreadsheet_id", cfg.SpreadsheetID,
		"sheet", cfg.SheetName,
		"explicit_credentials", credentials != nil)

	return &Exporter{svc: svc, spreadsheetID: cfg.SpreadsheetID, sheetName: cfg.SheetName}, nil
}

func loadCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, nil
	}
}

// Upsert rewrites the row holding t.ID, or appends one.
func (e *Exporter) Upsert(ctx context.Context, userID string, t core.Transaction) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids, err := e.readIDs(ctx)
	if err != nil {
		return err
	}
	values := &gsheet.ValueRange{Values: [][]any{transactionRow(userID, t)}}

	if row := findRow(ids, t.ID); row > 0 {
		rng := fmt.Sprintf("%s!A%d:%s%d", e.sheetName, row, lastColumn, row)
		if _, err := e.svc.Spreadsheets.Values.Update(e.spreadsheetID, rng, values).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return fmt.Errorf("update row %d in sheet %s: %w", row, e.sheetName, err)
		}
		slog.DebugContext(ctx, "Updated sheet row", "id", t.ID, "row", row)
		return nil
	}

	if len(ids) == 0 {
		values.Values = append([][]any{header}, values.Values...)
	}
	rng := fmt.Sprintf("%s!A:%s", e.sheetName, lastColumn)
	if _, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, values).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do(); err != nil {
		return fmt.Errorf("append to sheet %s: %w", e.sheetName, err)
	}
	slog.DebugContext(ctx, "Appended sheet row", "id", t.ID)
	return nil
}

// Remove deletes the row holding id. Unknown ids are not an error.
func (e *Exporter) Remove(ctx context.Context, userID, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids, err := e.readIDs(ctx)
	if err != nil {
		return err
	}
	row := findRow(ids, id)
	if row < 0 {
		slog.DebugContext(ctx, "Transaction not in sheet, nothing to remove", "id", id, "user_id", userID)
		return nil
	}

	sheetID, err := e.lookupSheetID(ctx)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		DeleteDimension: &gsheet.DeleteDimensionRequest{Range: &gsheet.DimensionRange{
			SheetId:    sheetID,
			Dimension:  "ROWS",
			StartIndex: int64(row - 1),
			EndIndex:   int64(row),
		}},
	}}}
	if _, err := e.svc.Spreadsheets.BatchUpdate(e.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d in sheet %s: %w", row, e.sheetName, err)
	}
	slog.DebugContext(ctx, "Deleted sheet row", "id", id, "row", row)
	return nil
}

func (e *Exporter) readIDs(ctx context.Context) ([]string, error) {
	rng := fmt.Sprintf("%s!A:A", e.sheetName)
	resp, err := e.svc.Spreadsheets.Values.Get(e.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	ids := make([]string, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) > 0 {
			ids[i] = strings.TrimSpace(fmt.Sprint(row[0]))
		}
	}
	return ids, nil
}

func (e *Exporter) lookupSheetID(ctx context.Context) (int64, error) {
	if e.sheetID != nil {
		return *e.sheetID, nil
	}
	ss, err := e.svc.Spreadsheets.Get(e.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet metadata: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == e.sheetName {
			id := s.Properties.SheetId
			e.sheetID = &id
			return id, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet", e.sheetName)
}

// findRow returns the 1-based row holding id, or -1. Row 1 is the header.
func findRow(ids []string, id string) int {
	if id == "" {
		return -1
	}
	for i := 1; i < len(ids); i++ {
		if ids[i] == id {
			return i + 1
		}
	}
	return -1
}

func transactionRow(userID string, t core.Transaction) []any {
	var originalAmount any = ""
	if t.OriginalAmount != nil {
		originalAmount = *t.OriginalAmount
	}
	return []any{
		t.ID,
		userID,
		t.Date.DayKey(),
		t.Description,
		t.Amount,
		t.Currency,
		t.Category,
		t.Mode,
		originalAmount,
		t.OriginalCurrency,
	}
}
