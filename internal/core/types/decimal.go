package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Decimal is a money or quantity value kept in its decimal string form.
// Postgres hands NUMERIC back as text while SQLite may return float64, so
// Scan normalises both.
type Decimal string

func NewDecimal(f float64) Decimal {
	return Decimal(strconv.FormatFloat(f, 'f', 2, 64))
}

// ParseDecimal validates s as a finite decimal number.
func ParseDecimal(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "0", nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return "", fmt.Errorf("invalid decimal %q", s)
	}
	return Decimal(s), nil
}

func (d Decimal) Float64() float64 {
	if d == "" {
		return 0
	}
	f, err := strconv.ParseFloat(string(d), 64)
	if err != nil {
		return 0
	}
	return f
}

func (d Decimal) String() string {
	if d == "" {
		return "0"
	}
	return string(d)
}

func (d Decimal) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Decimal) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = "0"
	case string:
		*d = Decimal(v)
	case []byte:
		*d = Decimal(string(v))
	case float64:
		*d = Decimal(strconv.FormatFloat(v, 'f', -1, 64))
	case int64:
		*d = Decimal(strconv.FormatInt(v, 10))
	default:
		return fmt.Errorf("cannot scan %T into Decimal", src)
	}
	return nil
}

// UnmarshalJSON accepts both "12.50" and 12.5.
func (d *Decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*d = "0"
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := ParseDecimal(s)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid decimal %s", string(b))
	}
	*d = Decimal(n.String())
	return nil
}
