package tools

import (
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"plansheet/internal/service"
	"plansheet/internal/sheets"
)

// ErrorResult creates a tool error result with optional recovery hint.
// If hint is non-empty, formats as "{msg}. {hint}".
// Returns IsError=true so the caller can see the error and self-correct.
func ErrorResult(msg, hint string) *mcp.CallToolResult {
	text := msg
	if hint != "" {
		text = msg + ". " + hint
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: true,
	}
}

// TextResult creates a success result with text content.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// AccessErrorResult maps the client error taxonomy to an actionable
// tool error. Returns nil when err is not an access-level failure.
func AccessErrorResult(err error) *mcp.CallToolResult {
	if errors.Is(err, sheets.ErrUnauthenticated) {
		return ErrorResult("Not authenticated with the spreadsheet service", "Reconnect the account and retry")
	}

	var valErr *service.ValidationError
	if errors.As(err, &valErr) {
		return ErrorResult(valErr.Message, "Run validate_sheet for details")
	}

	var apiErr *sheets.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case sheets.KindPermissionDenied:
			return ErrorResult("No access to this spreadsheet", "Ask the owner to share it")
		case sheets.KindNotFound:
			return ErrorResult("Spreadsheet not found", "Check the sheet ID")
		case sheets.KindRateLimited, sheets.KindQuotaExceeded:
			return ErrorResult("The spreadsheet service is rate limiting", "Wait a minute and retry")
		default:
			return ErrorResult("Could not reach the spreadsheet service", "Check network connectivity")
		}
	}
	return nil
}
