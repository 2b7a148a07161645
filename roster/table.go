package roster

import (
	"fmt"
)

// Worksheet column titles for the status columns the engine owns. They are
// appended to the header row if the worksheet does not have them yet.
const (
	ColumnFolderID     = "FolderId"
	ColumnShared       = "isShared"
	ColumnFolderExists = "isFolderExists"
	ColumnLastLog      = "LastLog"
)

var nameColumns = []string{"name", "fullname", "participant", "participantname", "student", "studentname"}
var emailColumns = []string{"email", "emailaddress", "e-mail", "mail"}

// Schema maps the semantic fields of a roster to worksheet column indices.
// Column positions are resolved from the header row once per pass - never
// hardcoded.
type Schema struct {
	Name         int
	Email        int
	FolderID     int
	Shared       int
	FolderExists int
	LastLog      int
	Columns      int
}

// MakeSchema resolves the roster schema from a header row. Status columns
// missing from the worksheet are assigned indices past the existing columns
// and their titles are returned so the caller can append them to the header
// (a one-time schema migration).
func MakeSchema(header []interface{}) (*Schema, []string, error) {
	if len(header) == 0 {
		return nil, nil, fmt.Errorf("Missing/invalid header row")
	}

	// .. build index
	index := map[string]int{}
	for i, v := range header {
		k := normalise(fmt.Sprintf("%v", v))
		if k == "" {
			continue
		}

		if _, ok := index[k]; ok {
			return nil, nil, fmt.Errorf("Duplicate column name '%v'", v)
		}

		index[k] = i
	}

	schema := Schema{
		Name:         -1,
		Email:        -1,
		FolderID:     -1,
		Shared:       -1,
		FolderExists: -1,
		LastLog:      -1,
		Columns:      len(header),
	}

	for _, k := range nameColumns {
		if ix, ok := index[k]; ok {
			schema.Name = ix
			break
		}
	}

	for _, k := range emailColumns {
		if ix, ok := index[k]; ok {
			schema.Email = ix
			break
		}
	}

	if schema.Name < 0 {
		return nil, nil, fmt.Errorf("Missing 'name' column (or a recognized synonym)")
	}

	if schema.Email < 0 {
		return nil, nil, fmt.Errorf("Missing 'email' column (or a recognized synonym)")
	}

	// ... status columns, appended in a fixed order if absent
	missing := []string{}
	assign := func(field *int, title string) {
		if ix, ok := index[normalise(title)]; ok {
			*field = ix
			return
		}

		*field = schema.Columns
		schema.Columns++
		missing = append(missing, title)
	}

	assign(&schema.FolderID, ColumnFolderID)
	assign(&schema.Shared, ColumnShared)
	assign(&schema.FolderExists, ColumnFolderExists)
	assign(&schema.LastLog, ColumnLastLog)

	return &schema, missing, nil
}

// MakeRoster converts worksheet rows into participant records. rows[0] is
// the header row; top is the 1-based worksheet row of the header, so data
// rows start at worksheet row top+1. Rows without a name and email are
// ignored (trailing padding).
func MakeRoster(rows [][]interface{}, schema *Schema, top int) ([]Record, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("No data rows in worksheet")
	}

	records := []Record{}
	for i, row := range rows[1:] {
		record := Record{
			Row:          top + 1 + i,
			Name:         clean(cell(row, schema.Name)),
			Email:        clean(cell(row, schema.Email)),
			FolderID:     clean(cell(row, schema.FolderID)),
			Shared:       clean(cell(row, schema.Shared)),
			FolderExists: clean(cell(row, schema.FolderExists)),
			LastLog:      cell(row, schema.LastLog),
		}

		if record.Name == "" && record.Email == "" {
			continue
		}

		records = append(records, record)
	}

	return records, nil
}

func cell(row []interface{}, ix int) string {
	if ix < 0 || ix >= len(row) {
		return ""
	}

	return fmt.Sprintf("%v", row[ix])
}

// ColumnName converts a 0-based column index to its worksheet letter form
// (A, B, .. Z, AA, AB, ..).
func ColumnName(ix int) string {
	name := ""
	for ix >= 0 {
		name = string(rune('A'+ix%26)) + name
		ix = ix/26 - 1
	}

	return name
}
