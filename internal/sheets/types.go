package sheets

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// QuoteTab wraps a worksheet name in single quotes for A1 notation.
// Embedded apostrophes are doubled, per the A1 escaping rules.
func QuoteTab(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// Grid is a rectangular block of cell values. The remote API returns
// cells as untyped JSON (strings, numbers, booleans); everything is
// normalized to text here because the mapper treats all cells as text
// and parses numbers itself.
type Grid [][]string

// UnmarshalJSON coerces the API's mixed-type cell values to strings.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var raw [][]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	grid := make(Grid, len(raw))
	for i, row := range raw {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = cellString(cell)
		}
		grid[i] = cells
	}
	*g = grid
	return nil
}

func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(c)
	default:
		return fmt.Sprintf("%v", c)
	}
}

// ValueRange is the wire shape for range reads, writes and appends.
type ValueRange struct {
	Range  string `json:"range,omitempty"`
	Values Grid   `json:"values"`
}

// ResourceMetadata describes a remote spreadsheet: its title and the
// worksheets it contains, in document order.
type ResourceMetadata struct {
	Title    string
	TabNames []string
}

// resourceResponse is the raw metadata payload.
type resourceResponse struct {
	Properties struct {
		Title string `json:"title"`
	} `json:"properties"`
	Sheets []struct {
		Properties struct {
			Title string `json:"title"`
		} `json:"properties"`
	} `json:"sheets"`
}

func (r *resourceResponse) metadata() *ResourceMetadata {
	md := &ResourceMetadata{Title: r.Properties.Title}
	for _, s := range r.Sheets {
		md.TabNames = append(md.TabNames, s.Properties.Title)
	}
	return md
}
