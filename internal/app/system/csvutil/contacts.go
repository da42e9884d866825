// internal/app/system/csvutil/contacts.go
package csvutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dalemusser/voicedesk/internal/app/system/inputval"
	"github.com/dalemusser/voicedesk/internal/app/system/normalize"
)

// ErrTooManyRows is returned when an upload exceeds the row limit.
var ErrTooManyRows = errors.New("too many rows")

// ContactRow is one normalized contact read from an upload.
type ContactRow struct {
	Name  string
	Phone string
	Email string
}

// RowError describes a rejected record. Line is the 1-based record number,
// header included.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (e RowError) String() string { return fmt.Sprintf("line %d: %s", e.Line, e.Reason) }

// ParseOptions controls ParseContactsCSV.
type ParseOptions struct {
	MaxRows int
}

func DefaultParseOptions() ParseOptions {
	return ParseOptions{MaxRows: MaxRows}
}

// ParseResult holds the accepted rows and every rejected line.
type ParseResult struct {
	Rows   []ContactRow
	Errors []RowError
}

func (r ParseResult) HasErrors() bool { return len(r.Errors) > 0 }

// Messages returns up to the first few row errors as strings.
func (r ParseResult) Messages() []string {
	n := len(r.Errors)
	if n > maxReportedErrors {
		n = maxReportedErrors
	}
	out := make([]string, 0, n)
	for _, e := range r.Errors[:n] {
		out = append(out, e.String())
	}
	return out
}

func isHeader(rec []string) bool {
	if len(rec) < 2 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(rec[0]))
	second := strings.ToLower(strings.TrimSpace(rec[1]))
	return (first == "name" || first == "full name") && (second == "phone" || second == "mobile")
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return strings.TrimSpace(rec[i])
	}
	return ""
}

// ParseContactsCSV reads name,phone[,email] rows. A header row and a UTF-8
// BOM are skipped, blank rows are ignored and a phone number repeated in the
// file is reported once per extra occurrence. It never touches the database.
func ParseContactsCSV(r io.Reader, opts ParseOptions) (ParseResult, error) {
	if opts.MaxRows <= 0 {
		opts.MaxRows = MaxRows
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var res ParseResult
	seen := map[string]int{}
	line := 0
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return ParseResult{}, err
		}
		if line == 1 && len(rec) > 0 {
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
			if isHeader(rec) {
				continue
			}
		}

		row := ContactRow{
			Name:  normalize.Name(field(rec, 0)),
			Phone: normalize.Phone(field(rec, 1)),
			Email: normalize.Email(field(rec, 2)),
		}
		if row.Name == "" && row.Phone == "" && row.Email == "" {
			continue
		}
		switch {
		case row.Name == "":
			res.Errors = append(res.Errors, RowError{line, "missing name"})
			continue
		case row.Phone == "":
			res.Errors = append(res.Errors, RowError{line, "missing phone"})
			continue
		case row.Email != "" && !inputval.IsValidEmail(row.Email):
			res.Errors = append(res.Errors, RowError{line, "invalid email"})
			continue
		}
		if first, dup := seen[row.Phone]; dup {
			res.Errors = append(res.Errors, RowError{line, fmt.Sprintf("duplicate phone (first on line %d)", first)})
			continue
		}
		seen[row.Phone] = line

		if len(res.Rows) >= opts.MaxRows {
			return ParseResult{}, ErrTooManyRows
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}
