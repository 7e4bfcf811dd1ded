package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed indicates the description tab does not follow the
// four-column convention (Tab, Header Row, Column, Column Description).
var ErrMalformed = errors.New("malformed description tab")

// ignoreToken marks tabs and columns the sheet author wants excluded
// from discovery. Matched case-insensitively anywhere in the name.
const ignoreToken = "ignore"

// Parse builds a Schema from the raw rows of a description tab.
//
// The first row whose leading four non-empty cells read like
// "Tab / Header Row / Column / Column Description" is the header; every
// row below it declares one column of one tab. Rows and columns whose
// name contains "ignore" are dropped. Header-row indexes that fail to
// parse default to 1.
func Parse(rows [][]string) (*Schema, error) {
	headerIdx := findHeaderRow(rows)
	if headerIdx < 0 {
		return nil, fmt.Errorf("%w: no header row found (expected columns Tab, Header Row, Column, Column Description)", ErrMalformed)
	}

	s := &Schema{}
	byName := make(map[string]int)

	for _, row := range rows[headerIdx+1:] {
		if len(row) < 4 {
			continue
		}
		tabName := strings.TrimSpace(row[0])
		colName := strings.TrimSpace(row[2])
		if tabName == "" || colName == "" {
			continue
		}
		if containsIgnore(tabName) {
			continue
		}
		if containsIgnore(colName) {
			continue
		}

		headerRow := 1
		if n, err := strconv.Atoi(strings.TrimSpace(row[1])); err == nil && n > 0 {
			headerRow = n
		}

		idx, ok := byName[tabName]
		if !ok {
			s.Tabs = append(s.Tabs, TabSchema{Name: tabName, HeaderRow: headerRow})
			idx = len(s.Tabs) - 1
			byName[tabName] = idx
		}
		s.Tabs[idx].Columns = append(s.Tabs[idx].Columns, ColumnSpec{
			Name:        colName,
			Description: strings.TrimSpace(row[3]),
		})
	}

	if len(s.Tabs) == 0 {
		return nil, fmt.Errorf("%w: no tab definitions below the header row", ErrMalformed)
	}
	return s, nil
}

// findHeaderRow returns the index of the first row whose leading four
// non-empty cells contain the expected tokens, or -1.
func findHeaderRow(rows [][]string) int {
	for i, row := range rows {
		var cells []string
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				cells = append(cells, strings.ToLower(c))
			}
			if len(cells) == 4 {
				break
			}
		}
		if len(cells) < 4 {
			continue
		}
		if strings.Contains(cells[0], "tab") &&
			strings.Contains(cells[1], "header") &&
			strings.Contains(cells[2], "column") &&
			strings.Contains(cells[3], "column") {
			return i
		}
	}
	return -1
}

func containsIgnore(name string) bool {
	return strings.Contains(strings.ToLower(name), ignoreToken)
}
