package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AppendLogInput defines the input schema for the append_log tool.
type AppendLogInput struct {
	SheetID string `json:"sheet_id" jsonschema:"required,The spreadsheet ID"`
	Text    string `json:"text" jsonschema:"required,The note to append to the activity log"`
}

// NewAppendLogHandler creates the append_log tool handler.
func NewAppendLogHandler(deps *Dependencies) mcp.ToolHandlerFor[AppendLogInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AppendLogInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.SheetID == "" {
			return ErrorResult("sheet_id cannot be empty", "Provide the spreadsheet ID"), nil, nil
		}
		if input.Text == "" {
			return ErrorResult("text cannot be empty", "Provide the note to append"), nil, nil
		}

		if err := deps.Planner.AppendLogEntry(ctx, input.SheetID, input.Text); err != nil {
			if res := AccessErrorResult(err); res != nil {
				return res, nil, nil
			}
			deps.Logger.Error("append failed", "sheet_id", input.SheetID, "error", err)
			return ErrorResult("Failed to append the log entry", "Retry or check the server log"), nil, nil
		}

		deps.Logger.Info("log entry appended", "sheet_id", input.SheetID)
		return TextResult("Log entry appended"), nil, nil
	}
}
