package gdrive

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"google.golang.org/api/sheets/v4"

	"github.com/driveshare/driveshare/roster"
)

var areaExpr = regexp.MustCompile(`^(.+?)!([A-Za-z]+)([0-9]+):([A-Za-z]+)([0-9]+)?$`)

// SheetStore reads the participant roster from a worksheet range and writes
// per-row statuses back. The worksheet doubles as the durable cross-run
// state store, so all column addressing is computed from the header row each
// pass rather than hardcoded.
type SheetStore struct {
	client        *Client
	retry         *Retrier
	spreadsheetID string
	sheet         string
	area          string
	left          int
	top           int
	schema        *roster.Schema
}

// NewSheetStore binds a store to a worksheet range like 'Roster!A1:F'. The
// range must start at the header row.
func NewSheetStore(client *Client, retry *Retrier, spreadsheetID, area string) (*SheetStore, error) {
	match := areaExpr.FindStringSubmatch(strings.TrimSpace(area))
	if match == nil {
		return nil, fmt.Errorf("invalid range '%s' - expected something like 'Roster!A1:F'", area)
	}

	top, _ := strconv.Atoi(match[3])

	return &SheetStore{
		client:        client,
		retry:         retry,
		spreadsheetID: spreadsheetID,
		sheet:         match[1],
		area:          strings.TrimSpace(area),
		left:          columnIndex(match[2]),
		top:           top,
	}, nil
}

// Load reads the roster, resolves the column schema from the header row and
// appends any missing status columns to the worksheet (a one-time schema
// migration). Schema failures here are fatal to the pass - no records are
// processed.
func (s *SheetStore) Load(ctx context.Context) ([]roster.Record, error) {
	var rows [][]interface{}

	if aerr := s.retry.Do("sheets.values.get", SearchAttempts, func() (err error) {
		rows, err = s.client.readRange(ctx, s.spreadsheetID, s.area)

		return
	}); aerr != nil {
		return nil, aerr
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data in spreadsheet/range")
	}

	schema, missing, err := roster.MakeSchema(rows[0])
	if err != nil {
		return nil, err
	}

	s.schema = schema

	if len(missing) > 0 {
		if err := s.provision(ctx, missing); err != nil {
			return nil, err
		}
	}

	return roster.MakeRoster(rows, schema, s.top)
}

// provision appends the missing status column titles to the header row,
// preserving the existing columns and their order.
func (s *SheetStore) provision(ctx context.Context, missing []string) error {
	first := s.schema.Columns - len(missing)

	row := make([]interface{}, len(missing))
	for i, title := range missing {
		row[i] = title
	}

	data := []*sheets.ValueRange{
		{
			Range:  fmt.Sprintf("%s!%s%d", s.sheet, s.column(first), s.top),
			Values: [][]interface{}{row},
		},
	}

	if aerr := s.retry.Do("sheets.values.update", SearchAttempts, func() error {
		return s.client.writeValues(ctx, s.spreadsheetID, data)
	}); aerr != nil {
		return aerr
	}

	return nil
}

// WriteStatus persists a record's status transition to its worksheet row.
// Empty fields are left untouched; the log cell is always overwritten.
func (s *SheetStore) WriteStatus(ctx context.Context, row int, status roster.Status) error {
	if s.schema == nil {
		return fmt.Errorf("roster not loaded")
	}

	data := []*sheets.ValueRange{}

	set := func(column int, value string) {
		data = append(data, &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!%s%d", s.sheet, s.column(column), row),
			Values: [][]interface{}{{value}},
		})
	}

	if status.FolderID != "" {
		set(s.schema.FolderID, status.FolderID)
	}

	if status.Shared != "" {
		set(s.schema.Shared, status.Shared)
	}

	if status.FolderExists != "" {
		set(s.schema.FolderExists, status.FolderExists)
	}

	set(s.schema.LastLog, status.Log)

	if aerr := s.retry.Do("sheets.values.update", SearchAttempts, func() error {
		return s.client.writeValues(ctx, s.spreadsheetID, data)
	}); aerr != nil {
		return aerr
	}

	return nil
}

// column converts a schema column index to its absolute worksheet letter,
// offset by the left edge of the bound range.
func (s *SheetStore) column(ix int) string {
	return roster.ColumnName(s.left + ix)
}

func columnIndex(column string) int {
	ix := 0
	for _, c := range strings.ToUpper(column) {
		ix = ix*26 + int(c-'A') + 1
	}

	return ix - 1
}
