package event

import (
	"fmt"
	"strconv"
	"strings"

	"plansheet/internal/schema"
	"plansheet/internal/sheets"
)

// maxUpcomingTasks caps the upcoming list in the aggregate; the full
// count still lands in Tasks.Total.
const maxUpcomingTasks = 5

// Tab-name tokens per aggregate section. A tab is classified by
// case-insensitive substring match; one tab can feed several sections
// when it matches more than one token set ("Tasks & Timeline" feeds
// both tasks and timeline).
var (
	overviewTokens = []string{"overview", "info"}
	budgetTokens   = []string{"budget", "expense"}
	taskTokens     = []string{"task", "todo", "timeline"}
	vendorTokens   = []string{"vendor", "supplier", "contact"}
	timelineTokens = []string{"timeline"}
)

func matchesAny(tabName string, tokens []string) bool {
	lower := strings.ToLower(tabName)
	for _, tok := range tokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// MapAggregate folds raw per-tab rows into the domain aggregate using
// the discovered schema. Tabs are processed in schema order so repeated
// reads produce identical aggregates. The resource title is the
// fallback event name until an overview tab supplies one.
func MapAggregate(perTab map[string]sheets.Grid, s *schema.Schema, resourceTitle string) *EventAggregate {
	agg := &EventAggregate{Name: resourceTitle}

	for _, tab := range s.Tabs {
		rows := perTab[tab.Name]
		if len(rows) == 0 {
			continue
		}

		if matchesAny(tab.Name, overviewTokens) {
			mapOverview(agg, rows)
		}
		if matchesAny(tab.Name, budgetTokens) {
			mapBudget(agg, rows, tab.HeaderRow)
		}
		if matchesAny(tab.Name, taskTokens) {
			mapTasks(agg, rows, tab.HeaderRow)
		}
		if matchesAny(tab.Name, vendorTokens) {
			mapVendors(agg, rows, tab.HeaderRow)
		}
		if matchesAny(tab.Name, timelineTokens) {
			mapTimeline(agg, rows, tab.HeaderRow)
		}
	}

	agg.Budget.Remaining = agg.Budget.Total - agg.Budget.Spent
	return agg
}

// mapOverview scans every row for label/value pairs. Overview tabs are
// free-form, so the header row is irrelevant here.
func mapOverview(agg *EventAggregate, rows sheets.Grid) {
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		label := strings.ToLower(row[0])
		value := strings.TrimSpace(row[1])
		if value == "" {
			continue
		}
		switch {
		case strings.Contains(label, "event") && strings.Contains(label, "name"):
			agg.Name = value
		case strings.Contains(label, "date"):
			agg.Date = value
		case strings.Contains(label, "budget") && strings.Contains(label, "total"):
			agg.Budget.Total = parseNumber(value)
		}
	}
}

// mapBudget sums spending from data rows. Only the first numeric cell
// after the category column counts, so tabs with estimate and actual
// columns side by side are not double-counted.
func mapBudget(agg *EventAggregate, rows sheets.Grid, headerRow int) {
	for _, row := range dataRows(rows, headerRow) {
		if len(row) < 2 {
			continue
		}
		for _, cell := range row[1:] {
			if n := parseNumber(cell); n > 0 {
				agg.Budget.Spent += n
				break
			}
		}
	}
}

func mapTasks(agg *EventAggregate, rows sheets.Grid, headerRow int) {
	for _, row := range dataRows(rows, headerRow) {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		task := Task{
			Name:       strings.TrimSpace(row[0]),
			DueDate:    cellAt(row, 1),
			AssignedTo: cellAt(row, 2),
			Priority:   ParsePriority(cellAt(row, 3)),
		}

		agg.Tasks.Total++
		if isCompleted(task) {
			agg.Tasks.Completed++
		} else if len(agg.Tasks.Upcoming) < maxUpcomingTasks {
			agg.Tasks.Upcoming = append(agg.Tasks.Upcoming, task)
		}
	}
}

// isCompleted checks the task's own text for completion markers; sheet
// authors tend to write "done"-style notes into the name or assignee.
func isCompleted(t Task) bool {
	return strings.Contains(strings.ToLower(t.Name), "complete") ||
		strings.Contains(strings.ToLower(t.AssignedTo), "complete")
}

func mapVendors(agg *EventAggregate, rows sheets.Grid, headerRow int) {
	for _, row := range dataRows(rows, headerRow) {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		vendor := Vendor{
			Name:     strings.TrimSpace(row[0]),
			Category: cellAt(row, 1),
			Contact:  cellAt(row, 2),
			Email:    cellAt(row, 3),
			Phone:    cellAt(row, 4),
			Status:   cellAt(row, 5),
		}
		if vendor.Status == "" {
			vendor.Status = "pending"
		}
		agg.Vendors = append(agg.Vendors, vendor)
	}
}

func mapTimeline(agg *EventAggregate, rows sheets.Grid, headerRow int) {
	for _, row := range dataRows(rows, headerRow) {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		agg.Timeline = append(agg.Timeline, TimelineItem{
			Task:       strings.TrimSpace(row[0]),
			DueDate:    cellAt(row, 1),
			Status:     ParseStatus(cellAt(row, 2)),
			AssignedTo: cellAt(row, 3),
		})
	}
}

// dataRows returns the rows after the tab's header row. headerRow is
// 1-based per the description-tab convention.
func dataRows(rows sheets.Grid, headerRow int) sheets.Grid {
	if headerRow < 1 {
		headerRow = 1
	}
	if headerRow >= len(rows) {
		return nil
	}
	return rows[headerRow:]
}

func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseNumber extracts a number from free text, tolerating currency
// symbols and thousands separators. Unparseable text is 0.
func parseNumber(text string) float64 {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	n, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return n
}

// ---------------------------------------------------------------------
// Write path
//
// Reads adapt to whatever structure the README declares; writes do not.
// They target the fixed worksheet names the extension has always
// written to. Known asymmetry: generalizing write-back would need a
// reverse column mapping the original system never had.
// ---------------------------------------------------------------------

// Update section names, reported back to callers on partial failure.
const (
	SectionOverview = "overview"
	SectionVendors  = "vendors"
	SectionTimeline = "timeline"
)

// AggregateUpdate is a partial write. Nil/empty sections are skipped.
type AggregateUpdate struct {
	Name     *string        `json:"name,omitempty"`
	Date     *string        `json:"date,omitempty"`
	Vendors  []Vendor       `json:"vendors,omitempty"`
	Timeline []TimelineItem `json:"timeline,omitempty"`
}

// Empty reports whether the update contains nothing to write.
func (u AggregateUpdate) Empty() bool {
	return u.Name == nil && u.Date == nil && len(u.Vendors) == 0 && len(u.Timeline) == 0
}

// SectionWrite is one range write derived from an update section.
type SectionWrite struct {
	Section string
	Range   string
	Values  sheets.Grid
}

// WritePlan projects an update onto the fixed worksheet ranges, one
// write per populated section.
func WritePlan(u AggregateUpdate) []SectionWrite {
	var plan []SectionWrite

	if u.Name != nil || u.Date != nil {
		var rows sheets.Grid
		if u.Name != nil {
			rows = append(rows, []string{"Event Name", *u.Name})
		}
		if u.Date != nil {
			rows = append(rows, []string{"Event Date", *u.Date})
		}
		plan = append(plan, SectionWrite{
			Section: SectionOverview,
			Range:   fmt.Sprintf("'Event Overview'!A1:B%d", len(rows)),
			Values:  rows,
		})
	}

	if len(u.Vendors) > 0 {
		rows := sheets.Grid{{"Name", "Category", "Contact", "Email", "Phone", "Status"}}
		for _, v := range u.Vendors {
			rows = append(rows, []string{v.Name, v.Category, v.Contact, v.Email, v.Phone, v.Status})
		}
		plan = append(plan, SectionWrite{
			Section: SectionVendors,
			Range:   fmt.Sprintf("'Vendors'!A1:F%d", len(rows)),
			Values:  rows,
		})
	}

	if len(u.Timeline) > 0 {
		rows := sheets.Grid{{"Task", "Due Date", "Status", "Assigned To"}}
		for _, item := range u.Timeline {
			rows = append(rows, []string{item.Task, item.DueDate, string(item.Status), item.AssignedTo})
		}
		plan = append(plan, SectionWrite{
			Section: SectionTimeline,
			Range:   fmt.Sprintf("'Timeline'!A1:D%d", len(rows)),
			Values:  rows,
		})
	}

	return plan
}
