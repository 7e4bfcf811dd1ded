package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"plansheet/internal/event"
)

// UpdateInput defines the input schema for the update_event_data tool.
type UpdateInput struct {
	SheetID  string               `json:"sheet_id" jsonschema:"required,The spreadsheet ID to update"`
	Name     string               `json:"name,omitempty" jsonschema:"New event name"`
	Date     string               `json:"date,omitempty" jsonschema:"New event date"`
	Vendors  []event.Vendor       `json:"vendors,omitempty" jsonschema:"Replacement vendor list"`
	Timeline []event.TimelineItem `json:"timeline,omitempty" jsonschema:"Replacement timeline"`
}

// NewUpdateHandler creates the update_event_data tool handler.
// Only sections present in the input are written; an empty update is
// rejected before touching the remote resource.
func NewUpdateHandler(deps *Dependencies) mcp.ToolHandlerFor[UpdateInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input UpdateInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.SheetID == "" {
			return ErrorResult("sheet_id cannot be empty", "Provide the spreadsheet ID"), nil, nil
		}

		update := event.AggregateUpdate{
			Vendors:  input.Vendors,
			Timeline: input.Timeline,
		}
		if input.Name != "" {
			update.Name = &input.Name
		}
		if input.Date != "" {
			update.Date = &input.Date
		}
		if update.Empty() {
			return ErrorResult("Nothing to update", "Provide name, date, vendors, or timeline"), nil, nil
		}

		report, err := deps.Planner.WriteAggregate(ctx, input.SheetID, update)
		if err != nil {
			if res := AccessErrorResult(err); res != nil {
				return res, nil, nil
			}
			deps.Logger.Error("update failed", "sheet_id", input.SheetID, "error", err)
			return ErrorResult("Failed to update event data", "Retry or check the server log"), nil, nil
		}

		jsonBytes, _ := json.MarshalIndent(report, "", "  ")

		deps.Logger.Info("event data updated",
			"sheet_id", input.SheetID,
			"written", len(report.Written),
			"failed", len(report.Failed))
		return TextResult(string(jsonBytes)), nil, nil
	}
}
