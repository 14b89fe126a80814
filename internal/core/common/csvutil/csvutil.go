// Package csvutil reads and writes the CSV files used by the import/export
// endpoints. Values containing a comma, quote or line break are quoted and
// embedded quotes are doubled.
package csvutil

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/frahmantamala/agency-ops/internal"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Record is one data row keyed by header name. Line is the 1-based line
// number in the source file, so the first data row is line 2.
type Record struct {
	Line   int
	values map[string]string
}

func (r Record) Get(column string) string {
	return strings.TrimSpace(r.values[column])
}

func (r Record) Has(column string) bool {
	_, ok := r.values[column]
	return ok
}

// Write renders header and rows as CSV.
func Write(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Parse reads data and checks that every required column is present in the
// header. Blank lines are skipped.
func Parse(data []byte, required ...string) ([]Record, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, internal.NewValidationError("CSV file is empty", internal.ErrCodeInvalidCSV)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, internal.NewValidationError(fmt.Sprintf("failed to read CSV header: %v", err), internal.ErrCodeInvalidCSV)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	if missing := MissingHeaders(header, required...); len(missing) > 0 {
		details := internal.ValidationErrors{}
		for _, m := range missing {
			details.Errors = append(details.Errors, internal.ValidationError{
				Field:   m,
				Message: fmt.Sprintf("missing required column %q", m),
				Code:    string(internal.ErrCodeMissingHeaders),
			})
		}
		return nil, internal.NewValidationError("CSV is missing required columns: "+strings.Join(missing, ", "), internal.ErrCodeMissingHeaders).
			WithDetails(details)
	}

	var records []Record
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, internal.NewValidationError(fmt.Sprintf("malformed CSV: %v", err), internal.ErrCodeInvalidCSV)
		}
		line, _ := r.FieldPos(0)
		if isBlank(row) {
			continue
		}
		values := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				values[col] = row[i]
			}
		}
		records = append(records, Record{Line: line, values: values})
	}
	return records, nil
}

// MissingHeaders returns the required columns absent from header.
func MissingHeaders(header []string, required ...string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, req := range required {
		if !present[req] {
			missing = append(missing, req)
		}
	}
	return missing
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// OptionalInt64 parses column as a positive id, nil when empty.
func (r Record) OptionalInt64(column string) (*int64, error) {
	return ParseOptionalID(column, r.Get(column))
}

// ParseOptionalID parses a positive integer cell; an empty cell is nil.
func ParseOptionalID(column, raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return nil, fmt.Errorf("%s must be a positive integer", column)
	}
	return &v, nil
}

// RowError reports a rejected row by its line number.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarises a CSV import.
type ImportResult struct {
	Imported int        `json:"imported"`
	Updated  int        `json:"updated"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors"`
}

func NewImportResult() *ImportResult {
	return &ImportResult{Errors: []RowError{}}
}

// Skip records row as skipped with a reason.
func (r *ImportResult) Skip(row int, format string, args ...interface{}) {
	r.Skipped++
	r.Errors = append(r.Errors, RowError{Row: row, Message: fmt.Sprintf(format, args...)})
}
