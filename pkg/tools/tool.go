// Package tools provides the shared plumbing for MCP tools: argument schemas,
// validation, dispatch and result rendering.
package tools

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// Standard errors for consistent error handling
var (
	ErrInvalidParams = errors.New("invalid parameters")
	ErrUnknownTool   = errors.New("unknown tool")
)

// BaseTool provides common functionality for all tools
type BaseTool struct {
	name   string
	handle mcp.Tool
}

// NewBaseTool creates a new BaseTool with the given handle
func NewBaseTool(handle mcp.Tool) *BaseTool {
	return &BaseTool{
		name:   handle.Name,
		handle: handle,
	}
}

// Handle returns the MCP Tool definition
func (b *BaseTool) Handle() mcp.Tool {
	return b.handle
}

// Name returns the name of the tool
func (b *BaseTool) Name() string {
	return b.name
}

// WrapError wraps a domain error with a context message
func WrapError(err error, msg string) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// NewErrorResult creates a standard error result
func NewErrorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}

// NewTextResult creates a standard text result
func NewTextResult(text string) *mcp.CallToolResult {
	return mcp.NewToolResultText(text)
}

// NewBlocksResult creates a result with one text content block per string
func NewBlocksResult(blocks ...string) *mcp.CallToolResult {
	content := make([]interface{}, 0, len(blocks))
	for _, block := range blocks {
		content = append(content, mcp.NewTextContent(block))
	}

	return &mcp.CallToolResult{Content: content}
}
