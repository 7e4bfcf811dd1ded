// Package tools provides MCP tool handlers and registration.
package tools

import (
	"log/slog"

	"plansheet/internal/service"
)

// Dependencies holds shared services for tool handlers.
// Passed to handler factories via closure capture.
type Dependencies struct {
	Planner *service.Planner
	Logger  *slog.Logger
}
