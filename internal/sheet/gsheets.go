package sheet

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// SpreadsheetID extracts the document id from a Google Sheets URL.
// A bare id is returned unchanged.
func SpreadsheetID(urlOrID string) (string, error) {
	s := strings.TrimSpace(urlOrID)
	if s == "" {
		return "", errors.New("empty spreadsheet reference")
	}
	if m := spreadsheetIDPattern.FindStringSubmatch(s); m != nil {
		return m[1], nil
	}
	if strings.Contains(s, "/") {
		return "", fmt.Errorf("cannot find spreadsheet id in %q", s)
	}
	return s, nil
}

// GoogleStore reads and appends rows of a Google spreadsheet. The first row
// of every worksheet is its header.
type GoogleStore struct {
	svc *sheets.Service
	id  string
}

// NewGoogleStore connects with service-account credentials.
func NewGoogleStore(ctx context.Context, urlOrID string, credentialsJSON []byte) (*GoogleStore, error) {
	id, err := SpreadsheetID(urlOrID)
	if err != nil {
		return nil, err
	}
	if len(credentialsJSON) == 0 {
		return nil, errors.New("google credentials are required for the gsheets backend")
	}
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &GoogleStore{svc: svc, id: id}, nil
}

func a1(worksheet string) string {
	return "'" + strings.ReplaceAll(worksheet, "'", "''") + "'"
}

func (g *GoogleStore) values(ctx context.Context, worksheet string) ([][]interface{}, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.id, a1(worksheet)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", worksheet, err)
	}
	return resp.Values, nil
}

func (g *GoogleStore) Read(ctx context.Context, worksheet string) ([]Row, error) {
	values, err := g.values(ctx, worksheet)
	if err != nil {
		return nil, err
	}
	return rowsFromValues(values), nil
}

func (g *GoogleStore) Append(ctx context.Context, worksheet string, columns []string, row Row) error {
	values, err := g.values(ctx, worksheet)
	if err != nil {
		return err
	}

	var out [][]interface{}
	header := columns
	if len(values) == 0 {
		out = append(out, toCells(columns))
	} else {
		header = cellsToStrings(values[0])
	}
	out = append(out, toCells(ordered(header, row)))

	_, err = g.svc.Spreadsheets.Values.Append(g.id, a1(worksheet), &sheets.ValueRange{Values: out}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append %s: %w", worksheet, err)
	}
	return nil
}

func (g *GoogleStore) Close() error { return nil }

// rowsFromValues maps a header + data grid into rows.
func rowsFromValues(values [][]interface{}) []Row {
	if len(values) == 0 {
		return nil
	}
	header := cellsToStrings(values[0])
	out := make([]Row, 0, len(values)-1)
	for _, line := range values[1:] {
		cells := cellsToStrings(line)
		r := make(Row, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(cells) {
				r[h] = cells[i]
			} else {
				r[h] = ""
			}
		}
		out = append(out, r)
	}
	return out
}

func cellsToStrings(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(fmt.Sprint(c))
	}
	return out
}

func toCells(vals []string) []interface{} {
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}
