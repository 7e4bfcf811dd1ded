package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers all tools with the MCP server.
// This is called from main after server creation but before Run().
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_sheet",
		Description: "Validate that a spreadsheet carries a README description tab and parse its schema",
	}, NewValidateHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "read_event_data",
		Description: "Read the full event aggregate (overview, budget, tasks, vendors, timeline) from a spreadsheet",
	}, NewReadHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_event_data",
		Description: "Write event overview, vendor, or timeline changes back to the spreadsheet",
	}, NewUpdateHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "append_log",
		Description: "Append a timestamped note to the spreadsheet's activity log",
	}, NewAppendLogHandler(deps))
}
