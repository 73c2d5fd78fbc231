// Package mcp connects to external MCP servers over stdio and exposes their
// tools to the pipeline. Database sources are accessed exclusively through
// such a server; tool results pass through the response truncator before
// anything downstream sees them.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/ekaya-inc/profile-engine/pkg/apperrors"
	"github.com/ekaya-inc/profile-engine/pkg/truncate"
)

// ServerSpec describes one stdio MCP server: the process to spawn and its
// arguments.
type ServerSpec struct {
	Name    string
	Command string
	Args    []string
	Env     []string
}

// SpecFromConfig reads a server spec out of a source's tool configuration.
// The configuration must name exactly one server, and that server must carry
// both a command and its arguments.
func SpecFromConfig(cfg map[string]any) (ServerSpec, error) {
	raw, ok := cfg["mcp_server"].(map[string]any)
	if !ok || len(raw) == 0 {
		return ServerSpec{}, fmt.Errorf("mcp_server section is missing: %w", apperrors.ErrInvalidToolConfig)
	}
	if len(raw) != 1 {
		return ServerSpec{}, fmt.Errorf("mcp_server must name exactly one server, got %d: %w",
			len(raw), apperrors.ErrInvalidToolConfig)
	}

	var spec ServerSpec
	for name, entry := range raw {
		spec.Name = name
		settings, ok := entry.(map[string]any)
		if !ok {
			return ServerSpec{}, fmt.Errorf("mcp_server %q is not a settings map: %w",
				name, apperrors.ErrInvalidToolConfig)
		}

		spec.Command, _ = settings["command"].(string)
		if spec.Command == "" {
			return ServerSpec{}, fmt.Errorf("mcp_server %q has no command: %w",
				name, apperrors.ErrInvalidToolConfig)
		}

		args, ok := settings["args"].([]any)
		if !ok || len(args) == 0 {
			return ServerSpec{}, fmt.Errorf("mcp_server %q has no args: %w",
				name, apperrors.ErrInvalidToolConfig)
		}
		for _, a := range args {
			s, ok := a.(string)
			if !ok {
				return ServerSpec{}, fmt.Errorf("mcp_server %q has a non-string arg: %w",
					name, apperrors.ErrInvalidToolConfig)
			}
			spec.Args = append(spec.Args, s)
		}

		if env, ok := settings["env"].(map[string]any); ok {
			for k, v := range env {
				spec.Env = append(spec.Env, fmt.Sprintf("%s=%v", k, v))
			}
		}
	}
	return spec, nil
}

// Connector is a live stdio connection to one MCP server.
type Connector struct {
	spec      ServerSpec
	client    *client.Client
	tools     []string
	truncator *truncate.Truncator
	logger    *zap.Logger
}

// Connect spawns the server process, runs the MCP handshake, and lists the
// available tools.
func Connect(ctx context.Context, spec ServerSpec, truncator *truncate.Truncator, logger *zap.Logger) (*Connector, error) {
	c, err := client.NewStdioMCPClient(spec.Command, spec.Env, spec.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to start MCP server %q: %w", spec.Name, err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "profile-engine",
		Version: "1.0.0",
	}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize MCP server %q: %w", spec.Name, err)
	}

	toolsResult, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to list tools of MCP server %q: %w", spec.Name, err)
	}

	tools := make([]string, 0, len(toolsResult.Tools))
	for _, tool := range toolsResult.Tools {
		tools = append(tools, tool.Name)
	}

	logger.Info("connected to MCP server",
		zap.String("server", spec.Name),
		zap.Strings("tools", tools))

	return &Connector{
		spec:      spec,
		client:    c,
		tools:     tools,
		truncator: truncator,
		logger:    logger.Named("mcp"),
	}, nil
}

// Name returns the configured server name.
func (c *Connector) Name() string {
	return c.spec.Name
}

// ToolNames returns the tools advertised by the server.
func (c *Connector) ToolNames() []string {
	out := make([]string, len(c.tools))
	copy(out, c.tools)
	return out
}

// CallTool invokes a tool and returns its text output, truncated to the
// response budget.
func (c *Connector) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := c.client.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("tool %s on server %q: %w", name, c.spec.Name, err)
	}

	var parts []string
	for _, content := range result.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	text := strings.Join(parts, "\n")

	if result.IsError {
		return "", fmt.Errorf("tool %s on server %q failed: %s", name, c.spec.Name, text)
	}
	if c.truncator != nil {
		text = c.truncator.Truncate(c.spec.Name+"_"+name, text)
	}
	return text, nil
}

// Close shuts the server process down.
func (c *Connector) Close() error {
	return c.client.Close()
}
