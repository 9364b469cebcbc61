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

	"finalerts/internal/core"
	"finalerts/internal/finance"
)

// Ensure interface conformance
var _ finance.Provider = (*Client)(nil)

// Options configures the spreadsheet and the service account used to read it.
type Options struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string

	BudgetsSheet      string // default "Budgets"
	BillsSheet        string // default "Bills"
	TransactionsSheet string // default "Transactions"
}

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	budgetsSheet      string
	billsSheet        string
	transactionsSheet string
}

// New creates a read-only Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx, opts.CredentialsJSON, opts.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:               svc,
		spreadsheetID:     spreadsheetID,
		budgetsSheet:      orDefault(opts.BudgetsSheet, "Budgets"),
		billsSheet:        orDefault(opts.BillsSheet, "Bills"),
		transactionsSheet: orDefault(opts.TransactionsSheet, "Transactions"),
	}, nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Inline JSON wins over the file; GOOGLE_APPLICATION_CREDENTIALS is the last resort.
func newSheetsService(ctx context.Context, credentialsJSON, credentialsFile string) (*gsheet.Service, error) {
	credentialsJSON = strings.TrimSpace(credentialsJSON)
	credentialsFile = strings.TrimSpace(credentialsFile)
	if credentialsJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var creds []byte
	switch {
	case credentialsJSON != "":
		creds = []byte(credentialsJSON)
	case credentialsFile != "":
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		creds = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.DebugContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(creds),
		"scope", gsheet.SpreadsheetsReadonlyScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) read(ctx context.Context, sheet string) ([][]interface{}, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:Z", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (c *Client) transactions(ctx context.Context) ([]core.Transaction, error) {
	values, err := c.read(ctx, c.transactionsSheet)
	if err != nil {
		return nil, err
	}
	txs, skipped := parseTransactions(values)
	for _, s := range skipped {
		slog.WarnContext(ctx, "Skipping unreadable transaction row", "sheet", c.transactionsSheet, "row", s.Row, "error", s.Err)
	}
	return txs, nil
}

// ListBudgets reads the budgets tab and derives spent from the month's
// expenses in the transactions tab.
func (c *Client) ListBudgets(ctx context.Context, year int, month int) ([]core.Budget, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month: %d", month)
	}
	values, err := c.read(ctx, c.budgetsSheet)
	if err != nil {
		return nil, err
	}
	txs, err := c.transactions(ctx)
	if err != nil {
		return nil, err
	}
	return core.ApplySpent(parseBudgets(values, year, month), txs), nil
}

// GetMonthlySummary totals the transactions tab for the month.
func (c *Client) GetMonthlySummary(ctx context.Context, year int, month int) (core.MonthlySummary, error) {
	if month < 1 || month > 12 {
		return core.MonthlySummary{}, fmt.Errorf("invalid month: %d", month)
	}
	txs, err := c.transactions(ctx)
	if err != nil {
		return core.MonthlySummary{}, err
	}
	return core.Summarize(year, month, txs), nil
}

// ListUpcomingRecurring reads the bills tab and keeps bills due in the window.
// Rows with an unreadable due date are kept so they can be reported.
func (c *Client) ListUpcomingRecurring(ctx context.Context, from core.Date, days int) ([]core.UpcomingBill, error) {
	if days < 0 {
		return nil, fmt.Errorf("invalid window: %d days", days)
	}
	values, err := c.read(ctx, c.billsSheet)
	if err != nil {
		return nil, err
	}
	return filterWindow(parseBills(values), from, days), nil
}
