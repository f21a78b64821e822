// Package query provides the generic collection tools: hybrid query and
// single object insert.
package query

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/mcp-server-weaviate/pkg/tools"
)

const (
	HybridToolName = "weaviate-hybrid-query"
	InsertToolName = "weaviate-insert-one"
)

// Hybrider runs a hybrid query and returns the formatted report.
type Hybrider interface {
	HybridSearch(ctx context.Context, collection, query string, limit int, properties []string) (string, error)
}

// Inserter inserts one object and returns its id.
type Inserter interface {
	InsertOne(ctx context.Context, collection string, properties map[string]any) (string, error)
}

type hybridArgs struct {
	Collection       string   `json:"collection" jsonschema:"required" jsonschema_description:"Name of the collection to query"`
	Query            string   `json:"query" jsonschema:"required" jsonschema_description:"Text to match by keyword and by meaning"`
	Limit            int      `json:"limit,omitempty" jsonschema:"minimum=1" jsonschema_description:"Maximum number of objects to return (default 5)"`
	ReturnProperties []string `json:"return_properties,omitempty" jsonschema_description:"Properties to return for each object (default content)"`
}

type insertArgs struct {
	Collection string         `json:"collection,omitempty" jsonschema_description:"Name of the target collection (default the memory collection)"`
	Properties map[string]any `json:"properties" jsonschema:"required" jsonschema_description:"Object properties to insert"`
}

// HybridTool runs a hybrid query against any collection.
type HybridTool struct {
	*tools.BaseTool
	hybrider Hybrider
}

// NewHybridTool creates the hybrid query tool.
func NewHybridTool(hybrider Hybrider) *HybridTool {
	return &HybridTool{
		BaseTool: tools.NewBaseTool(tools.NewTool[hybridArgs](
			HybridToolName,
			"Run a hybrid (keyword and vector) query against a Weaviate collection and return a report of the matching objects.",
		)),
		hybrider: hybrider,
	}
}

// Handler returns the report as a single JSON encoded string
func (tool *HybridTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args hybridArgs
	if err := tools.Bind(request.Params.Arguments, &args); err != nil {
		return tools.NewErrorResult(err), nil
	}

	report, err := tool.hybrider.HybridSearch(ctx, args.Collection, args.Query, args.Limit, args.ReturnProperties)
	if err != nil {
		return tools.NewErrorResult(err), nil
	}

	encoded, err := json.Marshal(report)
	if err != nil {
		return tools.NewErrorResult(tools.WrapError(err, "failed to encode report")), nil
	}

	return tools.NewTextResult(string(encoded)), nil
}

// InsertTool inserts one object with arbitrary properties.
type InsertTool struct {
	*tools.BaseTool
	inserter Inserter
}

// NewInsertTool creates the insert one tool.
func NewInsertTool(inserter Inserter) *InsertTool {
	return &InsertTool{
		BaseTool: tools.NewBaseTool(tools.NewTool[insertArgs](
			InsertToolName,
			"Insert one object into a Weaviate collection and return its id.",
		)),
		inserter: inserter,
	}
}

// Handler inserts the object and returns the new id
func (tool *InsertTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args insertArgs
	if err := tools.Bind(request.Params.Arguments, &args); err != nil {
		return tools.NewErrorResult(err), nil
	}

	id, err := tool.inserter.InsertOne(ctx, args.Collection, args.Properties)
	if err != nil {
		return tools.NewErrorResult(tools.WrapError(err, "failed to insert object")), nil
	}

	return tools.NewTextResult(id), nil
}
