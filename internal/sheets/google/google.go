package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	applog "ichinichi/internal/log"
	"ichinichi/internal/sheets"
)

const (
	DefaultItemsSheet   = "Items"
	DefaultSummarySheet = "Summary"
)

// Config selects the spreadsheet and the two tabs the exporter owns.
type Config struct {
	SpreadsheetID string
	ItemsSheet    string
	SummarySheet  string
}

// valuesAPI is the part of the Sheets values API the client uses.
type valuesAPI interface {
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, rows [][]any) error
}

// Client mirrors snapshots into a Google spreadsheet. Each export clears
// both tabs and rewrites them from A1.
type Client struct {
	values        valuesAPI
	spreadsheetID string
	itemsSheet    string
	summarySheet  string
}

var _ sheets.SnapshotWriter = (*Client)(nil)

// New creates a client authenticated with service account credentials.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS, in that order.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(&serviceValues{svc: svc}, cfg), nil
}

func newClient(values valuesAPI, cfg Config) *Client {
	items := strings.TrimSpace(cfg.ItemsSheet)
	if items == "" {
		items = DefaultItemsSheet
	}
	summary := strings.TrimSpace(cfg.SummarySheet)
	if summary == "" {
		summary = DefaultSummarySheet
	}
	return &Client{
		values:        values,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		itemsSheet:    items,
		summarySheet:  summary,
	}
}

// WriteSnapshot replaces the contents of the items and summary tabs.
func (c *Client) WriteSnapshot(ctx context.Context, snap sheets.Snapshot) error {
	if err := c.replace(ctx, c.itemsSheet, sheets.ItemRows(snap.Items)); err != nil {
		return err
	}
	if err := c.replace(ctx, c.summarySheet, sheets.SummaryRows(snap.Summary, snap.ExportedAt)); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Snapshot written to Google Sheets",
		applog.FieldComponent, applog.ComponentSheets,
		applog.FieldSpreadsheetID, c.spreadsheetID,
		applog.FieldItemCount, len(snap.Items))
	return nil
}

func (c *Client) replace(ctx context.Context, sheet string, rows [][]any) error {
	if err := c.values.Clear(ctx, c.spreadsheetID, sheet+"!A:Z"); err != nil {
		return fmt.Errorf("clear sheet %s: %w", sheet, err)
	}
	if err := c.values.Update(ctx, c.spreadsheetID, sheet+"!A1", rows); err != nil {
		return fmt.Errorf("update sheet %s: %w", sheet, err)
	}
	return nil
}

type serviceValues struct {
	svc *gsheet.Service
}

func (s *serviceValues) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := s.svc.Spreadsheets.Values.Clear(spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (s *serviceValues) Update(ctx context.Context, spreadsheetID, rng string, rows [][]any) error {
	vr := &gsheet.ValueRange{Values: rows}
	_, err := s.svc.Spreadsheets.Values.Update(spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	return err
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.DebugContext(ctx, "Creating Google Sheets service",
		applog.FieldComponent, applog.ComponentSheets,
		"credentials_size", len(credentialsJSON))

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}
