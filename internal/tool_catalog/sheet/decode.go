// Package sheet turns an uploaded workbook into ordered header/value rows and
// implements the header conventions the catalog spreadsheets follow.
package sheet

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"tool-catalog/pkg/apperr"
)

// Row maps a header to its cell value. Missing cells are "".
type Row map[string]string

// Sheet is the decoded first worksheet.
type Sheet struct {
	Name    string
	Headers []string // in column order, empty header cells dropped
	Rows    []Row
}

// Decode reads the first worksheet of an xlsx buffer. The first row is the header row;
// fully blank data rows are dropped. Repeated headers get a "_1", "_2" suffix.
func Decode(buf []byte) (*Sheet, error) {
	if len(buf) == 0 {
		return nil, apperr.NewValidationError("file", "upload is empty")
	}
	f, err := excelize.OpenReader(bytes.NewReader(buf))
	if err != nil {
		return nil, apperr.NewValidationError("file", fmt.Sprintf("not a readable workbook: %v", err))
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.NewValidationError("file", "workbook has no worksheets")
	}
	grid, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.NewValidationError("file", fmt.Sprintf("read worksheet %q: %v", sheets[0], err))
	}
	if len(grid) == 0 {
		return nil, apperr.NewValidationError("file", "worksheet has no header row")
	}

	out := &Sheet{Name: sheets[0]}
	// column index -> header, only for non-empty header cells
	cols := make(map[int]string)
	seen := make(map[string]int)
	for i, h := range grid[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = fmt.Sprintf("%s_%d", h, n+1)
		} else {
			seen[h] = 0
		}
		cols[i] = h
		out.Headers = append(out.Headers, h)
	}
	if len(out.Headers) == 0 {
		return nil, apperr.NewValidationError("file", "header row is empty")
	}

	for _, cells := range grid[1:] {
		row := make(Row, len(out.Headers))
		blank := true
		for i, h := range cols {
			v := ""
			if i < len(cells) {
				v = cells[i]
			}
			if !IsEmpty(v) {
				blank = false
			}
			row[h] = v
		}
		if blank {
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// IsEmpty reports whether a cell carries no value.
func IsEmpty(v string) bool {
	return strings.TrimSpace(v) == ""
}
