package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"plansheet/internal/config"
	"plansheet/internal/event"
	"plansheet/internal/service"
	"plansheet/internal/sheets"
)

// resourceRequest addresses one spreadsheet.
type resourceRequest struct {
	ResourceID string `json:"resourceId"`
}

// appendLogRequest adds a quick note to the activity log.
type appendLogRequest struct {
	ResourceID string `json:"resourceId"`
	Text       string `json:"text"`
}

// updateRequest writes back part of the aggregate.
type updateRequest struct {
	ResourceID string                `json:"resourceId"`
	Update     event.AggregateUpdate `json:"update"`
}

// shareRequest sends a message to the event's contacts.
type shareRequest struct {
	ResourceID string `json:"resourceId"`
	Message    string `json:"message"`
}

// validateReply mirrors the extension's expected validation response.
type validateReply struct {
	Valid         bool     `json:"valid"`
	ResourceTitle string   `json:"resourceTitle,omitempty"`
	Tabs          []string `json:"tabs,omitempty"`
	Reason        string   `json:"reason,omitempty"`
	Message       string   `json:"message,omitempty"`
}

// RegisterPlanner wires the facade's operations onto the channel.
func RegisterPlanner(ch *Channel, planner *service.Planner, ring *config.RingHandler, logger *slog.Logger) {
	ch.Register(TypeValidateSheet, func(ctx context.Context, payload json.RawMessage) (any, error) {
		var req resourceRequest
		if err := decode(payload, &req); err != nil {
			return nil, err
		}
		result, err := planner.Validate(ctx, req.ResourceID)
		if err != nil {
			return nil, userError(err)
		}
		reply := validateReply{
			Valid:         result.Valid,
			ResourceTitle: result.ResourceTitle,
			Reason:        string(result.Reason),
			Message:       result.Message,
		}
		if result.Valid {
			reply.Tabs = result.Schema.TabNames()
		}
		return reply, nil
	})

	ch.Register(TypeReadEventData, func(ctx context.Context, payload json.RawMessage) (any, error) {
		var req resourceRequest
		if err := decode(payload, &req); err != nil {
			return nil, err
		}
		agg, err := planner.ReadAggregate(ctx, req.ResourceID)
		if err != nil {
			return nil, userError(err)
		}
		return agg, nil
	})

	ch.Register(TypeUpdateEventData, func(ctx context.Context, payload json.RawMessage) (any, error) {
		var req updateRequest
		if err := decode(payload, &req); err != nil {
			return nil, err
		}
		report, err := planner.WriteAggregate(ctx, req.ResourceID, req.Update)
		if err != nil {
			return nil, userError(err)
		}
		return report, nil
	})

	ch.Register(TypeAppendLog, func(ctx context.Context, payload json.RawMessage) (any, error) {
		var req appendLogRequest
		if err := decode(payload, &req); err != nil {
			return nil, err
		}
		if req.Text == "" {
			return nil, fmt.Errorf("log text is required")
		}
		if err := planner.AppendLogEntry(ctx, req.ResourceID, req.Text); err != nil {
			return nil, userError(err)
		}
		return map[string]bool{"appended": true}, nil
	})

	ch.Register(TypeShareContacts, func(ctx context.Context, payload json.RawMessage) (any, error) {
		var req shareRequest
		if err := decode(payload, &req); err != nil {
			return nil, err
		}
		results, err := planner.DispatchContacts(ctx, req.ResourceID, req.Message)
		if err != nil {
			return nil, userError(err)
		}
		return results, nil
	})

	ch.Register(TypeGetLogs, func(ctx context.Context, payload json.RawMessage) (any, error) {
		entries := ring.Entries()
		lines := make([]string, len(entries))
		for i, e := range entries {
			lines[i] = e.String()
		}
		return lines, nil
	})

	logger.Debug("channel handlers registered", "count", 6)
}

func decode(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return fmt.Errorf("missing payload")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("invalid payload: %v", err)
	}
	return nil
}

// userError collapses the internal error taxonomy into the short
// human-readable strings the UI displays. The typed detail stays below
// this boundary.
func userError(err error) error {
	if errors.Is(err, sheets.ErrUnauthenticated) {
		return fmt.Errorf("not connected to your spreadsheet account; reconnect and try again")
	}

	var valErr *service.ValidationError
	if errors.As(err, &valErr) {
		return fmt.Errorf("%s", valErr.Message)
	}

	var apiErr *sheets.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case sheets.KindPermissionDenied:
			return fmt.Errorf("you don't have access to this spreadsheet")
		case sheets.KindNotFound:
			return fmt.Errorf("spreadsheet not found; check the sheet ID")
		case sheets.KindRateLimited, sheets.KindQuotaExceeded:
			return fmt.Errorf("the spreadsheet service is rate limiting requests; try again in a minute")
		default:
			return fmt.Errorf("could not reach the spreadsheet service; try again")
		}
	}

	return err
}
