package schema

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"plansheet/internal/sheets"
)

// descriptionTabName is the convention-named tab whose content defines
// the schema. Matched case-insensitively.
const descriptionTabName = "readme"

// missingDescriptionGuidance tells the sheet owner how to fix their
// spreadsheet. Surfaced verbatim to the UI.
const missingDescriptionGuidance = "Add a tab named README with four columns: " +
	"Tab, Header Row, Column, Column Description. Each row below the header " +
	"describes one column of one tab."

// InvalidReason classifies why a resource failed validation.
type InvalidReason string

const (
	ReasonMissingDescriptionTab InvalidReason = "missing_description_tab"
	ReasonUnreadable            InvalidReason = "unreadable"
	ReasonPermissionDenied      InvalidReason = "permission_denied"
	ReasonNotFound              InvalidReason = "not_found"
	ReasonMalformed             InvalidReason = "malformed"
	ReasonNetwork               InvalidReason = "network"
	ReasonQuota                 InvalidReason = "quota"
)

// ValidationResult reports whether a resource can be used. Structural
// problems are values here, not errors: they are user-fixable states of
// the remote sheet, and they are never retried automatically.
type ValidationResult struct {
	Valid         bool
	Schema        *Schema
	ResourceTitle string
	Reason        InvalidReason
	Message       string
}

func invalid(reason InvalidReason, message string) *ValidationResult {
	return &ValidationResult{Reason: reason, Message: message}
}

// Reader is the slice of the sheets client the validator consumes.
type Reader interface {
	Metadata(ctx context.Context, resourceID string) (*sheets.ResourceMetadata, error)
	ReadRange(ctx context.Context, resourceID, rangeExpr string) (sheets.Grid, error)
}

// Validator checks remote resources against the description-tab
// convention. Validation never touches the cache; the caller decides
// whether a Valid result should be stored.
type Validator struct {
	reader Reader
	logger *slog.Logger
}

// NewValidator creates a validator. If logger is nil, slog.Default()
// is used.
func NewValidator(reader Reader, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{reader: reader, logger: logger}
}

// Validate confirms the resource is reachable, finds its description
// tab, and parses it into a Schema. Authentication failures and other
// unexpected errors are returned as errors; every user-fixable state
// comes back as an Invalid result.
func (v *Validator) Validate(ctx context.Context, resourceID string) (*ValidationResult, error) {
	md, err := v.reader.Metadata(ctx, resourceID)
	if err != nil {
		return v.classifyAccessError(resourceID, err)
	}

	descTab := findDescriptionTab(md.TabNames)
	if descTab == "" {
		v.logger.Info("resource has no description tab", "resource", resourceID, "tabs", len(md.TabNames))
		return invalid(ReasonMissingDescriptionTab, missingDescriptionGuidance), nil
	}

	rows, err := v.reader.ReadRange(ctx, resourceID, sheets.QuoteTab(descTab))
	if err != nil {
		return v.classifyAccessError(resourceID, err)
	}
	if len(rows) == 0 {
		return invalid(ReasonUnreadable, "The README tab is empty."), nil
	}

	s, err := Parse(rows)
	if err != nil {
		if errors.Is(err, ErrMalformed) {
			return invalid(ReasonMalformed, err.Error()), nil
		}
		return nil, fmt.Errorf("parse description tab: %w", err)
	}

	v.logger.Debug("resource validated", "resource", resourceID, "title", md.Title, "tabs", len(s.Tabs))
	return &ValidationResult{Valid: true, Schema: s, ResourceTitle: md.Title}, nil
}

// classifyAccessError turns transport-level failures into Invalid
// results where the user can act on them, and propagates the rest.
func (v *Validator) classifyAccessError(resourceID string, err error) (*ValidationResult, error) {
	if errors.Is(err, sheets.ErrUnauthenticated) {
		return nil, err
	}

	var apiErr *sheets.APIError
	if !errors.As(err, &apiErr) {
		return nil, err
	}

	switch apiErr.Kind {
	case sheets.KindPermissionDenied:
		return invalid(ReasonPermissionDenied, "You don't have access to this spreadsheet. Ask the owner to share it with you."), nil
	case sheets.KindNotFound:
		return invalid(ReasonNotFound, "Spreadsheet not found. Check the sheet ID or URL."), nil
	case sheets.KindQuotaExceeded, sheets.KindRateLimited:
		return invalid(ReasonQuota, "API quota exceeded. Wait a minute and try again."), nil
	case sheets.KindTransport, sheets.KindServerError:
		return invalid(ReasonNetwork, "Could not reach the spreadsheet service. Check your connection and try again."), nil
	default:
		v.logger.Warn("unclassified validation failure", "resource", resourceID, "error", err)
		return nil, err
	}
}

// findDescriptionTab returns the actual (cased) name of the README tab,
// or "" if none exists.
func findDescriptionTab(tabNames []string) string {
	for _, name := range tabNames {
		if strings.EqualFold(strings.TrimSpace(name), descriptionTabName) {
			return name
		}
	}
	return ""
}
