package apperrors

import "errors"

var (
	// ErrUnsupportedSourceType indicates a source type with no profiler or
	// introspector variant. Fatal to the triggering call.
	ErrUnsupportedSourceType = errors.New("unsupported source type")

	// ErrConnectionFailed indicates a database connection could not be
	// established at setup. No profile can be produced without it.
	ErrConnectionFailed = errors.New("failed to connect to database")

	// ErrInvalidToolConfig indicates an MCP server registration is missing
	// required fields (command/args) or names more than one server.
	ErrInvalidToolConfig = errors.New("invalid tool server configuration")

	// ErrSourceNotFound indicates an endpoint is not registered with the manager.
	ErrSourceNotFound = errors.New("data source not found")
)
