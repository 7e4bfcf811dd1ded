package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"plansheet/internal/event"
	"plansheet/internal/kvstore"
	"plansheet/internal/schema"
	"plansheet/internal/sheets"
)

// fakeAPI serves canned data and records writes for facade tests.
type fakeAPI struct {
	mu sync.Mutex

	metadata      *sheets.ResourceMetadata
	ranges        map[string]sheets.Grid
	readErrs      map[string]error
	writeErr      map[string]error // keyed by range prefix
	metadataCalls int
	readRanges    []string

	writes  map[string]sheets.Grid
	appends []sheets.Grid
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		metadata: &sheets.ResourceMetadata{
			Title:    "Spring Gala",
			TabNames: []string{"README", "Overview", "Vendors"},
		},
		ranges: map[string]sheets.Grid{
			"'README'": {
				{"Tab", "Header Row", "Column", "Column Description"},
				{"Overview", "1", "Field", ""},
				{"Overview", "1", "Value", ""},
				{"Vendors", "1", "Name", ""},
			},
			"'Overview'": {
				{"Event Name", "Spring Gala 2026"},
				{"Event Date", "2026-04-18"},
			},
			"'Vendors'": {
				{"Name", "Category", "Contact", "Email", "Phone", "Status"},
				{"Bloom & Co", "Flowers", "", "", "555-0101", "confirmed"},
			},
		},
		readErrs: make(map[string]error),
		writeErr: make(map[string]error),
		writes:   make(map[string]sheets.Grid),
	}
}

func (f *fakeAPI) Metadata(ctx context.Context, resourceID string) (*sheets.ResourceMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metadataCalls++
	return f.metadata, nil
}

func (f *fakeAPI) ReadRange(ctx context.Context, resourceID, rangeExpr string) (sheets.Grid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readRanges = append(f.readRanges, rangeExpr)
	if err := f.readErrs[rangeExpr]; err != nil {
		return nil, err
	}
	return f.ranges[rangeExpr], nil
}

func (f *fakeAPI) WriteRange(ctx context.Context, resourceID, rangeExpr string, values sheets.Grid) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for prefix, err := range f.writeErr {
		if strings.HasPrefix(rangeExpr, prefix) {
			return err
		}
	}
	f.writes[rangeExpr] = values
	return nil
}

func (f *fakeAPI) AppendRows(ctx context.Context, resourceID, rangeExpr string, values sheets.Grid) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rangeExpr != "'Activity Log'!A:C" {
		return errors.New("unexpected append range " + rangeExpr)
	}
	f.appends = append(f.appends, values)
	return nil
}

func newTestPlanner(api *fakeAPI) *Planner {
	store := kvstore.NewMemoryStore()
	cache := schema.NewCache(store, time.Hour, nil)
	return NewPlanner(api, cache, store, nil, nil)
}

func TestReadAggregate(t *testing.T) {
	api := newFakeAPI()
	p := newTestPlanner(api)

	agg, err := p.ReadAggregate(context.Background(), "sheet-1")
	if err != nil {
		t.Fatalf("ReadAggregate() error = %v", err)
	}
	if agg.Name != "Spring Gala 2026" {
		t.Errorf("Name = %q", agg.Name)
	}
	if len(agg.Vendors) != 1 || agg.Vendors[0].Name != "Bloom & Co" {
		t.Errorf("Vendors = %+v", agg.Vendors)
	}

	// The session follows the read.
	if got := p.LastSession(context.Background()); got != "sheet-1" {
		t.Errorf("LastSession() = %q", got)
	}
}

func TestReadAggregate_QuotesApostropheTabNames(t *testing.T) {
	api := newFakeAPI()
	api.metadata.TabNames = []string{"README", "Bob's List"}
	api.ranges["'README'"] = sheets.Grid{
		{"Tab", "Header Row", "Column", "Column Description"},
		{"Bob's List", "1", "Name", ""},
	}
	p := newTestPlanner(api)

	if _, err := p.ReadAggregate(context.Background(), "sheet-1"); err != nil {
		t.Fatalf("ReadAggregate() error = %v", err)
	}

	found := false
	for _, r := range api.readRanges {
		if r == "'Bob''s List'" {
			found = true
		}
	}
	if !found {
		t.Errorf("read ranges = %v, want escaped 'Bob''s List'", api.readRanges)
	}
}

func TestReadAggregate_ToleratesFailingTab(t *testing.T) {
	api := newFakeAPI()
	api.readErrs["'Vendors'"] = &sheets.APIError{Kind: sheets.KindServerError, Message: "boom"}
	p := newTestPlanner(api)

	agg, err := p.ReadAggregate(context.Background(), "sheet-1")
	if err != nil {
		t.Fatalf("ReadAggregate() error = %v", err)
	}
	if agg.Name != "Spring Gala 2026" {
		t.Errorf("Name = %q, overview tab should still map", agg.Name)
	}
	if len(agg.Vendors) != 0 {
		t.Errorf("Vendors = %+v, want empty for the failed tab", agg.Vendors)
	}
}

func TestReadAggregate_SchemaCachedAcrossReads(t *testing.T) {
	api := newFakeAPI()
	p := newTestPlanner(api)
	ctx := context.Background()

	if _, err := p.ReadAggregate(ctx, "sheet-1"); err != nil {
		t.Fatalf("first read: %v", err)
	}
	if _, err := p.ReadAggregate(ctx, "sheet-1"); err != nil {
		t.Fatalf("second read: %v", err)
	}

	// Discovery (metadata + README read) runs once; the second read
	// serves the schema from cache.
	if api.metadataCalls != 1 {
		t.Errorf("metadata calls = %d, want 1", api.metadataCalls)
	}
}

func TestReadAggregate_InvalidResource(t *testing.T) {
	api := newFakeAPI()
	api.metadata = &sheets.ResourceMetadata{Title: "X", TabNames: []string{"Tasks"}}
	p := newTestPlanner(api)

	_, err := p.ReadAggregate(context.Background(), "sheet-1")

	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if valErr.Reason != schema.ReasonMissingDescriptionTab {
		t.Errorf("Reason = %q", valErr.Reason)
	}
}

func TestWriteAggregate_AllSections(t *testing.T) {
	api := newFakeAPI()
	p := newTestPlanner(api)

	name := "Renamed Gala"
	update := event.AggregateUpdate{
		Name:    &name,
		Vendors: []event.Vendor{{Name: "New Vendor", Status: "pending"}},
	}

	report, err := p.WriteAggregate(context.Background(), "sheet-1", update)
	if err != nil {
		t.Fatalf("WriteAggregate() error = %v", err)
	}
	if len(report.Written) != 2 || report.Failed != nil {
		t.Fatalf("report = %+v", report)
	}

	if _, ok := api.writes["'Event Overview'!A1:B1"]; !ok {
		t.Error("overview range not written")
	}
	vendorRows, ok := api.writes["'Vendors'!A1:F2"]
	if !ok {
		t.Fatal("vendors range not written")
	}
	if vendorRows[1][0] != "New Vendor" {
		t.Errorf("vendor row = %+v", vendorRows[1])
	}
}

func TestWriteAggregate_PartialFailure(t *testing.T) {
	api := newFakeAPI()
	api.writeErr["'Vendors'"] = &sheets.APIError{Kind: sheets.KindServerError, Message: "boom"}
	p := newTestPlanner(api)

	name := "Renamed"
	update := event.AggregateUpdate{
		Name:    &name,
		Vendors: []event.Vendor{{Name: "V"}},
	}

	report, err := p.WriteAggregate(context.Background(), "sheet-1", update)
	if err != nil {
		t.Fatalf("WriteAggregate() error = %v, partial failure should not error", err)
	}
	if len(report.Written) != 1 || report.Written[0] != event.SectionOverview {
		t.Errorf("Written = %v", report.Written)
	}
	if _, ok := report.Failed[event.SectionVendors]; !ok {
		t.Errorf("Failed = %v, want vendors failure recorded", report.Failed)
	}
}

func TestWriteAggregate_AllFail(t *testing.T) {
	api := newFakeAPI()
	api.writeErr["'Event Overview'"] = &sheets.APIError{Kind: sheets.KindServerError, Message: "boom"}
	p := newTestPlanner(api)

	name := "Renamed"
	_, err := p.WriteAggregate(context.Background(), "sheet-1", event.AggregateUpdate{Name: &name})
	if err == nil {
		t.Fatal("expected error when every section fails")
	}

	var apiErr *sheets.APIError
	if !errors.As(err, &apiErr) {
		t.Errorf("error = %v, want wrapped APIError", err)
	}
}

func TestWriteAggregate_EmptyUpdate(t *testing.T) {
	api := newFakeAPI()
	p := newTestPlanner(api)

	_, err := p.WriteAggregate(context.Background(), "sheet-1", event.AggregateUpdate{})
	if err == nil {
		t.Fatal("expected error for empty update")
	}
	// The remote resource is never touched.
	if api.metadataCalls != 0 {
		t.Errorf("metadata calls = %d, want 0", api.metadataCalls)
	}
}

func TestAppendLogEntry(t *testing.T) {
	api := newFakeAPI()
	p := newTestPlanner(api)

	before := time.Now().UTC()
	if err := p.AppendLogEntry(context.Background(), "sheet-1", "Confirmed the caterer"); err != nil {
		t.Fatalf("AppendLogEntry() error = %v", err)
	}

	if len(api.appends) != 1 {
		t.Fatalf("appends = %d, want 1", len(api.appends))
	}
	rows := api.appends[0]
	if len(rows) != 1 || len(rows[0]) != 3 {
		t.Fatalf("appended rows = %+v, want one three-cell row", rows)
	}

	ts, err := time.Parse(time.RFC3339, rows[0][0])
	if err != nil {
		t.Fatalf("timestamp %q not RFC3339: %v", rows[0][0], err)
	}
	if ts.Before(before.Truncate(time.Second)) || ts.After(time.Now().UTC().Add(time.Second)) {
		t.Errorf("timestamp %v outside test window", ts)
	}
	if rows[0][1] != "Confirmed the caterer" {
		t.Errorf("text cell = %q", rows[0][1])
	}
	if rows[0][2] != "Extension" {
		t.Errorf("source cell = %q", rows[0][2])
	}
}

func TestValidate_OverwritesStaleCache(t *testing.T) {
	api := newFakeAPI()
	p := newTestPlanner(api)
	ctx := context.Background()

	if _, err := p.Validate(ctx, "sheet-1"); err != nil {
		t.Fatalf("first validate: %v", err)
	}
	if _, err := p.Validate(ctx, "sheet-1"); err != nil {
		t.Fatalf("second validate: %v", err)
	}

	// Validate always re-discovers; both calls hit the remote.
	if api.metadataCalls != 2 {
		t.Errorf("metadata calls = %d, want 2", api.metadataCalls)
	}
}

func TestDispatchContacts_NoDispatcher(t *testing.T) {
	p := newTestPlanner(newFakeAPI())

	_, err := p.DispatchContacts(context.Background(), "sheet-1", "hello")
	if err == nil {
		t.Fatal("expected error with no dispatcher configured")
	}
}
