// Package sheets is the thin client over the backing spreadsheet. It
// knows nothing about caching or entities; internal/store builds the
// data-access layer on top of it.
package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Cell addresses a single value inside a data row. Col is the zero-based
// column; the row is addressed by the caller.
type Cell struct {
	Col   int
	Value string
}

// ValueSource is what the store layer needs from the backing tabular
// store: a header row, the data rows, appends and partial cell updates.
// Row indices are zero-based over the data rows (the header is row -1
// from this interface's point of view).
type ValueSource interface {
	Header(ctx context.Context, table string) ([]string, error)
	Rows(ctx context.Context, table string) ([][]string, error)
	Append(ctx context.Context, table string, row []string) error
	Update(ctx context.Context, table string, rowIndex int, cells []Cell) error
}

type Client struct {
	svc           *gsheets.Service
	spreadsheetID string
}

func New(ctx context.Context, spreadsheetID string, credJSON []byte) (*Client, error) {
	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsJSON(credJSON),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// MustConnect builds the client and verifies the spreadsheet is
// reachable. Store unavailability at startup is fatal.
func MustConnect(ctx context.Context, spreadsheetID string, credJSON []byte) *Client {
	c, err := New(ctx, spreadsheetID, credJSON)
	if err != nil {
		panic(err)
	}
	if _, err := c.svc.Spreadsheets.Get(spreadsheetID).Context(ctx).Do(); err != nil {
		panic(fmt.Errorf("spreadsheet %s unreachable: %w", spreadsheetID, err))
	}
	return c
}

func (c *Client) Header(ctx context.Context, table string) ([]string, error) {
	resp, err := c.svc.Spreadsheets.Values.
		Get(c.spreadsheetID, fmt.Sprintf("%s!1:1", table)).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("header %s: %w", table, err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return toStrings(resp.Values[0]), nil
}

func (c *Client) Rows(ctx context.Context, table string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.
		Get(c.spreadsheetID, fmt.Sprintf("%s!A2:ZZ", table)).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("rows %s: %w", table, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, v := range resp.Values {
		rows = append(rows, toStrings(v))
	}
	return rows, nil
}

func (c *Client) Append(ctx context.Context, table string, row []string) error {
	vr := &gsheets.ValueRange{Values: [][]interface{}{toValues(row)}}
	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, fmt.Sprintf("%s!A1", table), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append %s: %w", table, err)
	}
	return nil
}

func (c *Client) Update(ctx context.Context, table string, rowIndex int, cells []Cell) error {
	if len(cells) == 0 {
		return nil
	}
	// Data rows start at sheet row 2 (row 1 is the header).
	sheetRow := rowIndex + 2
	data := make([]*gsheets.ValueRange, 0, len(cells))
	for _, cell := range cells {
		data = append(data, &gsheets.ValueRange{
			Range:  fmt.Sprintf("%s!%s%d", table, colName(cell.Col), sheetRow),
			Values: [][]interface{}{{cell.Value}},
		})
	}
	req := &gsheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}
	if _, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("update %s row %d: %w", table, sheetRow, err)
	}
	return nil
}

// colName converts a zero-based column index to its A1 letter form.
func colName(col int) string {
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}
	return name
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func toValues(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
