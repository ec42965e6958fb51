package segment

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// titleFields is the priority order for picking a row's section title.
var titleFields = []string{"name", "full_name", "employee_id", "id", "title", "role"}

// SegmentCSV converts tabular data into one chunk per row. The first record
// is the header. Cells are trimmed and empty or null-ish cells dropped; a row
// with no surviving field, or whose "column: value" join is under MinRowWords
// words, is dropped silently. ChunkIndex is the row's original position and
// TotalChunks the true row count of the source, dropped rows included.
func SegmentCSV(source []byte) ([]Chunk, error) {
	reader := csv.NewReader(bytes.NewReader(source))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := make([]string, len(header))
	for i, col := range header {
		columns[i] = strings.TrimSpace(col)
	}

	// Malformed rows are isolated, not fatal: the row still occupies its
	// position in the total count.
	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			rows = append(rows, nil)
			continue
		}
		rows = append(rows, record)
	}

	total := len(rows)
	var chunks []Chunk
	for index, record := range rows {
		fields := cleanRow(columns, record)
		if len(fields) == 0 {
			continue
		}

		parts := make([]string, len(fields))
		for i, f := range fields {
			parts[i] = fmt.Sprintf("%s: %s", f.Column, f.Value)
		}
		content := strings.Join(parts, " | ")
		wc := wordCount(content)
		if wc < MinRowWords {
			continue
		}

		t := total
		chunks = append(chunks, Chunk{
			Content:      content,
			SectionTitle: rowTitle(fields),
			HeadingLevel: 1,
			ChunkIndex:   index,
			TotalChunks:  &t,
			RowData:      fields,
			WordCount:    wc,
		})
	}
	return chunks, nil
}

// cleanRow pairs cells with their columns, discarding blank and null cells.
func cleanRow(columns []string, record []string) RowFields {
	var fields RowFields
	for i, col := range columns {
		if col == "" || i >= len(record) {
			continue
		}
		value := strings.TrimSpace(record[i])
		if value == "" || isNullValue(value) {
			continue
		}
		fields = append(fields, RowField{Column: col, Value: value})
	}
	return fields
}

func isNullValue(v string) bool {
	switch strings.ToLower(v) {
	case "null", "nan", "none":
		return true
	}
	return false
}

// rowTitle picks the first priority field present in the row and renders it
// as "Field Label: value"; rows with no identifying field become a generic
// "Data Record".
func rowTitle(fields RowFields) string {
	for _, want := range titleFields {
		for _, f := range fields {
			if normalizeColumn(f.Column) == want {
				return fmt.Sprintf("%s: %s", fieldLabel(want), f.Value)
			}
		}
	}
	return "Data Record"
}

func normalizeColumn(col string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(col)), " ", "_")
}

// fieldLabel turns "full_name" into "Full Name".
func fieldLabel(field string) string {
	words := strings.Split(field, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
