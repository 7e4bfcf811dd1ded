package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ValidateInput defines the input schema for the validate_sheet tool.
type ValidateInput struct {
	SheetID string `json:"sheet_id" jsonschema:"required,The spreadsheet ID to validate"`
}

// NewValidateHandler creates the validate_sheet tool handler.
func NewValidateHandler(deps *Dependencies) mcp.ToolHandlerFor[ValidateInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ValidateInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.SheetID == "" {
			return ErrorResult("sheet_id cannot be empty", "Provide the spreadsheet ID"), nil, nil
		}

		result, err := deps.Planner.Validate(ctx, input.SheetID)
		if err != nil {
			if res := AccessErrorResult(err); res != nil {
				return res, nil, nil
			}
			deps.Logger.Error("validation failed", "sheet_id", input.SheetID, "error", err)
			return ErrorResult("Validation failed", "Retry or check the server log"), nil, nil
		}

		if !result.Valid {
			return ErrorResult(result.Message, ""), nil, nil
		}

		out := map[string]any{
			"valid":          true,
			"resource_title": result.ResourceTitle,
			"tabs":           result.Schema.TabNames(),
		}
		jsonBytes, _ := json.MarshalIndent(out, "", "  ")

		deps.Logger.Info("sheet validated", "sheet_id", input.SheetID, "tabs", len(result.Schema.Tabs))
		return TextResult(string(jsonBytes)), nil, nil
	}
}
