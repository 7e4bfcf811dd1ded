// Package schema discovers, validates and caches the structure of a
// remote spreadsheet from its README description tab. Nothing here
// assumes fixed worksheet names; the description tab is the only
// convention.
package schema

import "time"

// ColumnSpec describes one column of a tab: its header name and the
// free-text description the sheet author wrote for it.
type ColumnSpec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TabSchema describes one worksheet: where its header row sits and its
// columns in left-to-right order.
type TabSchema struct {
	Name      string       `json:"name"`
	HeaderRow int          `json:"headerRow"`
	Columns   []ColumnSpec `json:"columns"`
}

// Schema is the discovered structure of one spreadsheet. Tabs keep the
// order they appeared in the description table. A Schema is immutable
// once built; re-validation replaces it wholesale.
type Schema struct {
	Tabs []TabSchema `json:"tabs"`
}

// Tab returns the schema for the named tab, or nil if unknown.
func (s *Schema) Tab(name string) *TabSchema {
	for i := range s.Tabs {
		if s.Tabs[i].Name == name {
			return &s.Tabs[i]
		}
	}
	return nil
}

// TabNames returns the known tab names in discovery order.
func (s *Schema) TabNames() []string {
	names := make([]string, len(s.Tabs))
	for i, t := range s.Tabs {
		names[i] = t.Name
	}
	return names
}

// CachedSchema is the persisted form of a discovered schema.
type CachedSchema struct {
	Schema        *Schema   `json:"schema"`
	ResourceTitle string    `json:"resourceTitle"`
	TabCount      int       `json:"tabCount"`
	CachedAt      time.Time `json:"cachedAt"`
}
