package tools

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/mcp-server-weaviate/pkg/connector"
)

// SearchRenderer turns search results into a header block followed by one
// tagged block per item.
type SearchRenderer struct {
	// Mask hides failed searches behind an empty result list.
	Mask bool
}

// Render wraps each item as <tag>item</tag> after the header. A failed search
// either renders with no items (masked) or as an error result.
func (renderer SearchRenderer) Render(header, tag string, result connector.SearchResult) *mcp.CallToolResult {
	if result.Failed() {
		if !renderer.Mask {
			return NewErrorResult(fmt.Errorf("search failed (%s): %w", result.Status, result.Err))
		}

		log.Warn("Search failed, returning no results", "status", result.Status, "error", result.Err)
		return NewBlocksResult(header)
	}

	blocks := make([]string, 0, len(result.Items)+1)
	blocks = append(blocks, header)

	for _, item := range result.Items {
		blocks = append(blocks, fmt.Sprintf("<%s>%s</%s>", tag, item, tag))
	}

	return NewBlocksResult(blocks...)
}
