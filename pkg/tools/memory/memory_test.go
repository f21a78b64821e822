// Package memory provides the tools that store and recall memories
package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/mcp-server-weaviate/pkg/connector"
	memstore "github.com/theapemachine/mcp-server-weaviate/pkg/memory"
)

// MockStorer records stored text
type MockStorer struct {
	documents []string
	err       error
}

func (m *MockStorer) Store(ctx context.Context, text string) error {
	if m.err != nil {
		return m.err
	}
	m.documents = append(m.documents, text)
	return nil
}

// MockFinder returns a canned search result
type MockFinder struct {
	queries []string
	limits  []int
	result  connector.SearchResult
}

func (m *MockFinder) FindMemories(ctx context.Context, query string, limit int) connector.SearchResult {
	m.queries = append(m.queries, query)
	m.limits = append(m.limits, limit)
	return m.result
}

// Helper function for creating mock request
func newMockRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: struct {
			Name      string                 `json:"name"`
			Arguments map[string]interface{} `json:"arguments,omitempty"`
			Meta      *struct {
				ProgressToken mcp.ProgressToken `json:"progressToken,omitempty"`
			} `json:"_meta,omitempty"`
		}{
			Name:      name,
			Arguments: args,
		},
	}
}

func text(result *mcp.CallToolResult, i int) string {
	return result.Content[i].(mcp.TextContent).Text
}

// TestNew tests the constructors
func TestNew(t *testing.T) {
	Convey("Given a storer and a finder", t, func() {
		Convey("The store tool should require information", func() {
			tool := NewStoreTool(&MockStorer{})
			So(tool.Name(), ShouldEqual, "weaviate-store-memory")
			So(tool.Handle().InputSchema.Required, ShouldResemble, []string{"information"})
		})

		Convey("The find tool should require a query", func() {
			tool := NewFindTool(&MockFinder{}, true)
			So(tool.Name(), ShouldEqual, "weaviate-find-memories")
			So(tool.Handle().InputSchema.Required, ShouldResemble, []string{"query"})
			So(tool.Handle().InputSchema.Properties, ShouldContainKey, "limit")
		})
	})
}

// TestStoreHandler tests storing memories
func TestStoreHandler(t *testing.T) {
	Convey("Given a store tool", t, func() {
		storer := &MockStorer{}
		tool := NewStoreTool(storer)

		Convey("When storing information", func() {
			result, err := tool.Handler(context.Background(), newMockRequest(StoreToolName, map[string]interface{}{
				"information": "the sky is blue",
			}))

			Convey("It should confirm what was remembered", func() {
				So(err, ShouldBeNil)
				So(result.IsError, ShouldBeFalse)
				So(text(result, 0), ShouldEqual, "Remembered: the sky is blue")
				So(storer.documents, ShouldResemble, []string{"the sky is blue"})
			})
		})

		Convey("When the store fails", func() {
			storer.err = errors.New("failed to store memory: connection refused")

			result, err := tool.Handler(context.Background(), newMockRequest(StoreToolName, map[string]interface{}{
				"information": "the sky is blue",
			}))

			Convey("It should return an error result", func() {
				So(err, ShouldBeNil)
				So(result.IsError, ShouldBeTrue)
				So(text(result, 0), ShouldContainSubstring, "connection refused")
			})
		})
	})
}

// TestFindHandler tests looking memories up
func TestFindHandler(t *testing.T) {
	Convey("Given a find tool", t, func() {
		finder := &MockFinder{}
		tool := NewFindTool(finder, true)

		Convey("When memories match", func() {
			finder.result = connector.SearchResult{
				Items:  []string{"the sky is blue"},
				Status: connector.StatusOK,
			}

			result, err := tool.Handler(context.Background(), newMockRequest(FindToolName, map[string]interface{}{
				"query": "sky color",
				"limit": float64(2),
			}))

			Convey("It should return a header and one block per memory", func() {
				So(err, ShouldBeNil)
				So(result.Content, ShouldHaveLength, 2)
				So(text(result, 0), ShouldEqual, "Memories for the query 'sky color'")
				So(text(result, 1), ShouldEqual, "<memory>the sky is blue</memory>")
				So(finder.limits, ShouldResemble, []int{2})
			})
		})

		Convey("When the collection does not exist", func() {
			finder.result = connector.SearchResult{
				Status: connector.StatusNotFound,
				Err:    memstore.ErrCollectionNotFound,
			}

			result, err := tool.Handler(context.Background(), newMockRequest(FindToolName, map[string]interface{}{
				"query": "sky color",
			}))

			Convey("It should return an empty list, not an error", func() {
				So(err, ShouldBeNil)
				So(result.IsError, ShouldBeFalse)
				So(result.Content, ShouldHaveLength, 1)
				So(finder.limits, ShouldResemble, []int{0})
			})
		})
	})
}
