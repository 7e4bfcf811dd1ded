// Package service provides the planner facade: the single entry point
// combining structure discovery, caching, mapping and the remote client.
// The facade keeps no state of its own beyond the injected cache; every
// read reconstructs the aggregate from the remote resource.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"plansheet/internal/contacts"
	"plansheet/internal/event"
	"plansheet/internal/kvstore"
	"plansheet/internal/schema"
	"plansheet/internal/sheets"
)

// appendLogRange is the fixed target for quick-note appends. Appending
// does not require a validated schema; the log tab is created by the
// sheet template, not discovered.
const appendLogRange = "'Activity Log'!A:C"

// appendLogSource marks rows written by this system, so sheet owners
// can tell them apart from manual edits.
const appendLogSource = "Extension"

// sessionKey stores the most recently used resource for CLI defaults.
const sessionKey = "session:last"

// SheetsAPI is the slice of the sheets client the facade consumes.
type SheetsAPI interface {
	Metadata(ctx context.Context, resourceID string) (*sheets.ResourceMetadata, error)
	ReadRange(ctx context.Context, resourceID, rangeExpr string) (sheets.Grid, error)
	WriteRange(ctx context.Context, resourceID, rangeExpr string, values sheets.Grid) error
	AppendRows(ctx context.Context, resourceID, rangeExpr string, values sheets.Grid) error
}

// ValidationError is a structural failure surfaced from ReadAggregate
// or WriteAggregate: the remote resource needs fixing by the user and
// the call is not retried.
type ValidationError struct {
	Reason  schema.InvalidReason
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("resource not usable (%s): %s", e.Reason, e.Message)
}

// WriteReport describes the outcome of a partial write. A write call
// only fails outright when every section fails; otherwise the report
// carries the per-section failures.
type WriteReport struct {
	Written []string          `json:"written"`
	Failed  map[string]string `json:"failed,omitempty"`
}

// Session records the last resource the user worked with.
type Session struct {
	ResourceID string    `json:"resourceId"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Planner is the sync facade over one user's spreadsheets.
type Planner struct {
	client     SheetsAPI
	validator  *schema.Validator
	cache      *schema.Cache
	store      kvstore.Store
	dispatcher contacts.Dispatcher
	logger     *slog.Logger
}

// NewPlanner creates the facade. store persists session context and may
// be the same store backing the cache. dispatcher may be nil when
// contact delivery is not wired. If logger is nil, slog.Default() is
// used.
func NewPlanner(client SheetsAPI, cache *schema.Cache, store kvstore.Store, dispatcher contacts.Dispatcher, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{
		client:     client,
		validator:  schema.NewValidator(client, logger),
		cache:      cache,
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Validate forces structure discovery regardless of cache freshness and
// overwrites the cache on success.
func (p *Planner) Validate(ctx context.Context, resourceID string) (*schema.ValidationResult, error) {
	result, err := p.validator.Validate(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if result.Valid {
		if err := p.cache.Put(ctx, resourceID, result.Schema, result.ResourceTitle); err != nil {
			// The schema is still usable this call; only persistence failed.
			p.logger.Warn("failed to cache schema", "resource", resourceID, "error", err)
		}
		p.touchSession(ctx, resourceID)
	}
	return result, nil
}

// ensureSchema returns a usable schema: fresh from cache, or discovered
// and cached. Structural failures come back as *ValidationError.
func (p *Planner) ensureSchema(ctx context.Context, resourceID string) (*schema.CachedSchema, error) {
	cached, err := p.cache.Get(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	result, err := p.Validate(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &ValidationError{Reason: result.Reason, Message: result.Message}
	}
	return &schema.CachedSchema{
		Schema:        result.Schema,
		ResourceTitle: result.ResourceTitle,
		TabCount:      len(result.Schema.Tabs),
	}, nil
}

// ReadAggregate assembles the event aggregate from every known tab.
// Tabs are read concurrently; a failing tab is logged and contributes
// empty data rather than failing the whole read.
func (p *Planner) ReadAggregate(ctx context.Context, resourceID string) (*event.EventAggregate, error) {
	cached, err := p.ensureSchema(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		perTab = make(map[string]sheets.Grid, len(cached.Schema.Tabs))
	)

	for _, tab := range cached.Schema.Tabs {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			rows, err := p.client.ReadRange(ctx, resourceID, sheets.QuoteTab(name))
			if err != nil {
				p.logger.Warn("tab read failed, treating as empty",
					"resource", resourceID, "tab", name, "error", err)
				return
			}
			mu.Lock()
			perTab[name] = rows
			mu.Unlock()
		}(tab.Name)
	}
	wg.Wait()

	agg := event.MapAggregate(perTab, cached.Schema, cached.ResourceTitle)
	p.touchSession(ctx, resourceID)
	return agg, nil
}

// WriteAggregate writes each populated section of the update
// concurrently. The call fails only if every section write fails;
// partial success is reported through the WriteReport.
func (p *Planner) WriteAggregate(ctx context.Context, resourceID string, update event.AggregateUpdate) (*WriteReport, error) {
	if update.Empty() {
		return nil, fmt.Errorf("nothing to write: update has no populated sections")
	}

	if _, err := p.ensureSchema(ctx, resourceID); err != nil {
		return nil, err
	}

	plan := event.WritePlan(update)

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		report  = WriteReport{Failed: make(map[string]string)}
		lastErr error
	)

	for _, write := range plan {
		wg.Add(1)
		go func(w event.SectionWrite) {
			defer wg.Done()
			err := p.client.WriteRange(ctx, resourceID, w.Range, w.Values)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				p.logger.Warn("section write failed",
					"resource", resourceID, "section", w.Section, "error", err)
				report.Failed[w.Section] = err.Error()
				lastErr = err
				return
			}
			report.Written = append(report.Written, w.Section)
		}(write)
	}
	wg.Wait()

	if len(report.Written) == 0 {
		return nil, fmt.Errorf("all section writes failed: %w", lastErr)
	}
	if len(report.Failed) == 0 {
		report.Failed = nil
	}
	return &report, nil
}

// AppendLogEntry appends a timestamped note to the activity log. No
// schema validation is required; the log range is fixed.
func (p *Planner) AppendLogEntry(ctx context.Context, resourceID, text string) error {
	row := []string{time.Now().UTC().Format(time.RFC3339), text, appendLogSource}
	if err := p.client.AppendRows(ctx, resourceID, appendLogRange, sheets.Grid{row}); err != nil {
		return fmt.Errorf("append log entry: %w", err)
	}
	return nil
}

// DispatchContacts reads the aggregate, resolves its contact list and
// hands it to the configured dispatcher.
func (p *Planner) DispatchContacts(ctx context.Context, resourceID, message string) ([]contacts.DispatchResult, error) {
	if p.dispatcher == nil {
		return nil, fmt.Errorf("no contact dispatcher configured")
	}

	agg, err := p.ReadAggregate(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	list := contacts.Resolve(agg)
	if len(list) == 0 {
		return nil, fmt.Errorf("no reachable contacts in resource %s", resourceID)
	}
	return p.dispatcher.Dispatch(ctx, list, message)
}

// InvalidateSchema drops the cached schema for the resource.
func (p *Planner) InvalidateSchema(ctx context.Context, resourceID string) error {
	return p.cache.Invalidate(ctx, resourceID)
}

// LastSession returns the most recently used resource id, or "".
func (p *Planner) LastSession(ctx context.Context) string {
	var s Session
	found, err := kvstore.GetJSON(ctx, p.store, sessionKey, &s)
	if err != nil || !found {
		return ""
	}
	return s.ResourceID
}

// touchSession records the resource as most recently used. Best-effort;
// session tracking never fails a user operation.
func (p *Planner) touchSession(ctx context.Context, resourceID string) {
	s := Session{ResourceID: resourceID, UpdatedAt: time.Now().UTC()}
	if err := kvstore.SetJSON(ctx, p.store, sessionKey, s); err != nil {
		p.logger.Debug("failed to record session", "error", err)
	}
}
