package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"budgetbook/internal/core"
	ports "budgetbook/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client appends record rows to one spreadsheet, one tab per record kind.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	tabs          map[core.Kind]string
}

var _ ports.RowAppender = (*Client)(nil)

// New creates a Sheets client authenticated with service account
// credentials taken from the environment.
func New(ctx context.Context, spreadsheetID string, tabs map[core.Kind]string) (*Client, error) {
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, spreadsheetID, tabs)
}

// NewWithService wraps an already configured Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID string, tabs map[core.Kind]string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	names := make(map[core.Kind]string, len(tabs))
	for _, k := range core.Kinds() {
		name := strings.TrimSpace(tabs[k])
		if name == "" {
			return nil, fmt.Errorf("missing tab name for %s records", k)
		}
		names[k] = name
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, tabs: names}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	credentialsJSON, err := loadCredentials()
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func loadCredentials() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}

	path := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return data, nil
}

// AppendRow adds row after the last row of the kind's tab. Values are sent
// USER_ENTERED so numbers and dates are typed by Sheets.
func (c *Client) AppendRow(ctx context.Context, kind core.Kind, row []any) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	tab, ok := c.tabs[kind]
	if !ok {
		return fmt.Errorf("no tab configured for %q records", kind)
	}

	rng := fmt.Sprintf("'%s'!A1", strings.ReplaceAll(tab, "'", "''"))
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row to %s: %w", tab, err)
	}

	updated := ""
	if resp.Updates != nil {
		updated = resp.Updates.UpdatedRange
	}
	slog.DebugContext(ctx, "Row appended to sheet",
		"kind", kind,
		"tab", tab,
		"range", updated)
	return nil
}
