// Package knowledge provides the knowledge base search tool
package knowledge

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/mcp-server-weaviate/pkg/connector"
	"github.com/theapemachine/mcp-server-weaviate/pkg/tools"
)

const ToolName = "weaviate-search-knowledge"

// Searcher answers knowledge base queries.
type Searcher interface {
	SearchKnowledgeBase(ctx context.Context, query string) connector.KnowledgeResult
}

type searchArgs struct {
	Query string `json:"query" jsonschema:"required" jsonschema_description:"The query to search for in the knowledge base"`
}

// Tool searches the knowledge base collection.
type Tool struct {
	*tools.BaseTool
	searcher Searcher
	renderer tools.SearchRenderer
}

// New creates the knowledge base search tool.
func New(searcher Searcher, mask bool) *Tool {
	return &Tool{
		BaseTool: tools.NewBaseTool(tools.NewTool[searchArgs](
			ToolName,
			"Search the knowledge base in Weaviate. Use this tool when you need to: \n"+
				" - Find relevant information from the knowledge base \n"+
				" - Access structured knowledge \n"+
				" - Get factual information",
		)),
		searcher: searcher,
		renderer: tools.SearchRenderer{Mask: mask},
	}
}

// Handler returns either the agent's final answer or one block per match,
// both under the same header.
func (tool *Tool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args searchArgs
	if err := tools.Bind(request.Params.Arguments, &args); err != nil {
		return tools.NewErrorResult(err), nil
	}

	header := fmt.Sprintf("Knowledge base results for the query '%s'", args.Query)
	result := tool.searcher.SearchKnowledgeBase(ctx, args.Query)

	if result.Answer != nil {
		return tools.NewBlocksResult(header, fmt.Sprintf("<result>%s</result>", result.Answer.FinalAnswer)), nil
	}

	return tool.renderer.Render(header, "result", result.Results), nil
}
