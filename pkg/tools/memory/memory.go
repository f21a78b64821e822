// Package memory provides the tools that store and recall memories
package memory

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/mcp-server-weaviate/pkg/connector"
	"github.com/theapemachine/mcp-server-weaviate/pkg/tools"
)

const (
	StoreToolName = "weaviate-store-memory"
	FindToolName  = "weaviate-find-memories"
)

// Storer persists a memory.
type Storer interface {
	Store(ctx context.Context, text string) error
}

// Finder looks memories up by meaning.
type Finder interface {
	FindMemories(ctx context.Context, query string, limit int) connector.SearchResult
}

type storeArgs struct {
	Information string `json:"information" jsonschema:"required" jsonschema_description:"The information to store"`
}

type findArgs struct {
	Query string `json:"query" jsonschema:"required" jsonschema_description:"The query to search for in the memories"`
	Limit int    `json:"limit,omitempty" jsonschema:"minimum=1" jsonschema_description:"Maximum number of memories to return (default 10)"`
}

// StoreTool keeps a piece of information for later.
type StoreTool struct {
	*tools.BaseTool
	storer Storer
}

// NewStoreTool creates the store memory tool.
func NewStoreTool(storer Storer) *StoreTool {
	return &StoreTool{
		BaseTool: tools.NewBaseTool(tools.NewTool[storeArgs](
			StoreToolName,
			"Keep the memory for later use, when you are asked to remember something.",
		)),
		storer: storer,
	}
}

// Handler stores the information and echoes it back
func (tool *StoreTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args storeArgs
	if err := tools.Bind(request.Params.Arguments, &args); err != nil {
		return tools.NewErrorResult(err), nil
	}

	if err := tool.storer.Store(ctx, args.Information); err != nil {
		return tools.NewErrorResult(err), nil
	}

	return tools.NewTextResult(fmt.Sprintf("Remembered: %s", args.Information)), nil
}

// FindTool looks up stored memories.
type FindTool struct {
	*tools.BaseTool
	finder   Finder
	renderer tools.SearchRenderer
}

// NewFindTool creates the find memories tool. With mask set a failed search
// answers with no memories instead of an error.
func NewFindTool(finder Finder, mask bool) *FindTool {
	return &FindTool{
		BaseTool: tools.NewBaseTool(tools.NewTool[findArgs](
			FindToolName,
			"Look up memories in Weaviate. Use this tool when you need to: \n"+
				" - Find memories by their content \n"+
				" - Access memories for further analysis \n"+
				" - Get some personal information about the user",
		)),
		finder:   finder,
		renderer: tools.SearchRenderer{Mask: mask},
	}
}

// Handler searches memories and returns one block per match
func (tool *FindTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args findArgs
	if err := tools.Bind(request.Params.Arguments, &args); err != nil {
		return tools.NewErrorResult(err), nil
	}

	result := tool.finder.FindMemories(ctx, args.Query, args.Limit)

	return tool.renderer.Render(
		fmt.Sprintf("Memories for the query '%s'", args.Query),
		"memory",
		result,
	), nil
}
