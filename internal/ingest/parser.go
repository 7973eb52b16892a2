package ingest

import (
	"fmt"
	"strings"

	"github.com/budgeteer-dev/budgeteer/internal/model"
)

// ParseError is a per-line parse failure. Failures never abort the parse;
// the offending line is skipped and recorded.
type ParseError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Parse turns raw CSV text into header-keyed rows. The first non-blank line
// is the header; each data row keeps the 1-based line number it started on.
// Quoted fields may contain commas and escaped quotes (""), but may not
// span lines.
func Parse(text string) ([]model.RawRow, []ParseError) {
	var errors []ParseError
	if text == "" {
		return nil, errors
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	headerIdx := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return nil, errors
	}

	headerCells, err := splitLine(lines[headerIdx])
	if err != nil {
		errors = append(errors, ParseError{Line: headerIdx + 1, Message: err.Error()})
		return nil, errors
	}
	headers := make([]string, len(headerCells))
	for i, h := range headerCells {
		headers[i] = strings.TrimSpace(h)
	}

	var rows []model.RawRow
	for i := headerIdx + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		cols, err := splitLine(lines[i])
		if err != nil {
			errors = append(errors, ParseError{Line: i + 1, Message: err.Error()})
			continue
		}
		if len(cols) == 0 {
			continue
		}
		fields := make(map[string]string, len(headers))
		for j, h := range headers {
			if j < len(cols) {
				fields[h] = cols[j]
			} else {
				fields[h] = ""
			}
		}
		rows = append(rows, model.RawRow{Fields: fields, Line: i + 1})
	}
	return rows, errors
}

// splitLine splits one CSV line on commas, honoring double quotes. A ""
// inside a quoted field is an escaped quote.
func splitLine(line string) ([]string, error) {
	var result []string
	var cur strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if i+1 < len(line) && line[i+1] == '"' {
				cur.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			result = append(result, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if inQuotes {
		return nil, fmt.Errorf("unterminated quoted field")
	}
	result = append(result, cur.String())
	return result, nil
}
