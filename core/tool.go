// Package core declares the contracts the server registers: tools and prompts.
package core

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// Tool is an MCP tool: a descriptor and the handler that answers calls to it.
type Tool interface {
	Handle() mcp.Tool
	Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Prompt is an MCP prompt template.
type Prompt interface {
	Handle() mcp.Prompt
	Handler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error)
}
