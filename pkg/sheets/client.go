// Package sheets wraps the Google Sheets values API
package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Config selects service account credentials, by file or inline JSON
type Config struct {
	CredentialsPath string
	CredentialsJSON []byte
}

// Client appends rows to spreadsheets
type Client struct {
	service *sheets.Service
}

// NewClient creates a Sheets service from service account credentials
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	var opts []option.ClientOption

	switch {
	case cfg.CredentialsPath != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	case len(cfg.CredentialsJSON) > 0:
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	default:
		return nil, fmt.Errorf("sheets: credentials path or JSON is required")
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}

	return &Client{service: service}, nil
}

// AppendValues inserts rows after the last row of the table in range_.
// Values are written as entered, not parsed as formulas.
func (c *Client) AppendValues(ctx context.Context, spreadsheetID, range_ string, values [][]any) error {
	if c.service == nil {
		return fmt.Errorf("sheets: service is nil")
	}

	_, err := c.service.Spreadsheets.Values.Append(spreadsheetID, range_, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: append %s: %w", range_, err)
	}
	return nil
}
