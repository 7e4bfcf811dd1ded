package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReadInput defines the input schema for the read_event_data tool.
type ReadInput struct {
	SheetID string `json:"sheet_id" jsonschema:"required,The spreadsheet ID to read"`
}

// NewReadHandler creates the read_event_data tool handler.
func NewReadHandler(deps *Dependencies) mcp.ToolHandlerFor[ReadInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ReadInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.SheetID == "" {
			return ErrorResult("sheet_id cannot be empty", "Provide the spreadsheet ID"), nil, nil
		}

		agg, err := deps.Planner.ReadAggregate(ctx, input.SheetID)
		if err != nil {
			if res := AccessErrorResult(err); res != nil {
				return res, nil, nil
			}
			deps.Logger.Error("read failed", "sheet_id", input.SheetID, "error", err)
			return ErrorResult("Failed to read event data", "Retry or check the server log"), nil, nil
		}

		jsonBytes, _ := json.MarshalIndent(agg, "", "  ")

		deps.Logger.Info("event data read",
			"sheet_id", input.SheetID,
			"vendors", len(agg.Vendors),
			"timeline", len(agg.Timeline))
		return TextResult(string(jsonBytes)), nil, nil
	}
}
