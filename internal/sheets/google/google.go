// Package google writes the account report into a Google Sheets tab.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"txledger/internal/core"
	applog "txledger/internal/log"
	"txledger/internal/report"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ report.Sink = (*Client)(nil)

// New creates a Sheets client for a spreadsheet tab. Credentials come from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS, in that order.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = "Accounts"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	credentialsJSON, err := loadCredentials()
	if err != nil {
		return nil, err
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	applog.FromContext(ctx).WithComponent(applog.ComponentSheets).DebugContext(ctx,
		"Google Sheets service created", "scope", gsheet.SpreadsheetsScope)
	return service, nil
}

func loadCredentials() ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

func (c *Client) Name() string { return "sheets" }

// Emit replaces the tab contents with the report header and one row per
// account. The run id and timestamp go in a trailing column pair on the
// header row.
func (c *Client) Emit(ctx context.Context, run report.Run, accounts []core.Account) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	clearRange := fmt.Sprintf("%s!A:G", c.sheetName)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	vr := &gsheet.ValueRange{Values: buildValues(run, accounts)}
	writeRange := fmt.Sprintf("%s!A1", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", writeRange, err)
	}

	applog.FromContext(ctx).WithComponent(applog.ComponentSheets).InfoContext(ctx,
		"Account report written to Google Sheets",
		"sheet", c.sheetName,
		"updated_rows", resp.UpdatedRows)

	return nil
}

// buildValues lays out the sheet. Amounts stay strings so the spreadsheet
// shows the fixed four-digit precision.
func buildValues(run report.Run, accounts []core.Account) [][]interface{} {
	header := make([]interface{}, 0, len(report.Header)+2)
	for _, h := range report.Header {
		header = append(header, h)
	}
	header = append(header, run.ID.String(), run.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"))

	values := make([][]interface{}, 0, len(accounts)+1)
	values = append(values, header)
	for _, a := range accounts {
		row := report.Row(a)
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = v
		}
		values = append(values, cells)
	}
	return values
}
