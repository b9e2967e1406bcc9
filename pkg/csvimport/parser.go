package csvimport

import (
	"encoding/csv"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Record is one normalized, validated lead row ready for insertion.
type Record struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Company   string
	JobTitle  string
	Source    string
	Priority  int
	Tags      []string
}

// Result is the outcome of validating an uploaded file: the rows that
// passed plus one error string per rejected row. The caller decides
// whether to proceed with a partial import.
type Result struct {
	Records   []Record
	RowErrors []string
}

// MissingColumnsError aborts validation entirely: without the required
// header columns no row can be trusted.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

var requiredColumns = []string{"first_name", "last_name", "phone"}

// Permissive phone check: optional leading +, then digits with spaces,
// hyphens, dots and parentheses.
var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\s\-().]*$`)

// header aliases, normalized to lowercase with spaces/underscores
// stripped
var columnAliases = map[string]string{
	"firstname": "first_name",
	"lastname":  "last_name",
	"phone":     "phone",
	"phonenumber": "phone",
	"email":     "email",
	"company":   "company",
	"companyname": "company",
	"jobtitle":  "job_title",
	"title":     "job_title",
	"source":    "source",
	"priority":  "priority",
	"tags":      "tags",
}

// Parse validates raw delimited text into normalized lead records. The
// first non-empty line is the header; column names are case-insensitive
// and whitespace-trimmed. Row failures are isolated: one bad row is
// recorded and the rest keep going.
func Parse(raw string) (*Result, error) {
	reader := csv.NewReader(strings.NewReader(strings.TrimLeft(raw, "\r\n")))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not parse CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, &MissingColumnsError{Columns: requiredColumns}
	}

	columns := mapHeader(rows[0])

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	result := &Result{}
	for i, row := range rows[1:] {
		rowNum := i + 1 // data rows count from 1, header excluded

		record, reason := parseRow(row, columns)
		if reason != "" {
			result.RowErrors = append(result.RowErrors, fmt.Sprintf("Row %d: %s", rowNum, reason))
			continue
		}
		result.Records = append(result.Records, record)
	}

	return result, nil
}

func mapHeader(header []string) map[string]int {
	columns := make(map[string]int)
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		key = strings.ReplaceAll(key, " ", "")
		key = strings.ReplaceAll(key, "_", "")
		if canonical, ok := columnAliases[key]; ok {
			if _, seen := columns[canonical]; !seen {
				columns[canonical] = i
			}
		}
	}
	return columns
}

func parseRow(row []string, columns map[string]int) (Record, string) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	record := Record{
		FirstName: field("first_name"),
		LastName:  field("last_name"),
		Phone:     field("phone"),
		Email:     field("email"),
		Company:   field("company"),
		JobTitle:  field("job_title"),
		Source:    field("source"),
		Tags:      []string{},
	}

	if record.FirstName == "" {
		return record, "first name is required"
	}
	if record.LastName == "" {
		return record, "last name is required"
	}
	if record.Phone == "" {
		return record, "phone is required"
	}
	if !phonePattern.MatchString(record.Phone) {
		return record, fmt.Sprintf("invalid phone format %q", record.Phone)
	}

	if raw := field("priority"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil {
			record.Priority = p
		}
	}

	if raw := field("tags"); raw != "" {
		for _, tag := range strings.Split(raw, "|") {
			if tag = strings.TrimSpace(tag); tag != "" {
				record.Tags = append(record.Tags, tag)
			}
		}
	}

	return record, ""
}
