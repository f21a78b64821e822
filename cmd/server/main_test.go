package main

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/mcp-server-weaviate/pkg/config"
	"github.com/theapemachine/mcp-server-weaviate/pkg/memory"
	"github.com/theapemachine/mcp-server-weaviate/pkg/provision"
)

// wordHash embeds text as a normalized bag of hashed words.
func wordHash(ctx context.Context, text string) ([]float32, error) {
	vector := make([]float32, 64)

	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(strings.Trim(word, ".,?!")))
		vector[h.Sum32()%64]++
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v * v)
	}

	if norm == 0 {
		vector[0] = 1
		return vector, nil
	}

	for i := range vector {
		vector[i] = float32(float64(vector[i]) / math.Sqrt(norm))
	}

	return vector, nil
}

// testConfig loads the configuration from the environment, leaving every
// setting other than the collections, the key and the backend at its default.
func testConfig(t *testing.T) *config.Config {
	for _, name := range []string{
		"WEAVIATE_URL", "WEAVIATE_API_KEY", "COHERE_API_KEY", "QDRANT_URL", "QDRANT_API_KEY",
		"KNOWLEDGE_AGENT", "AGENT_MODEL", "ANTHROPIC_API_KEY", "MASK_SEARCH_ERRORS", "FIND_SCOPE", "LOG_LEVEL",
	} {
		t.Setenv(name, "")
	}

	t.Setenv("VECTOR_BACKEND", memory.BackendEmbedded)
	t.Setenv("SEARCH_COLLECTION_NAME", "Knowledge")
	t.Setenv("STORE_COLLECTION_NAME", "Memories")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := config.Load(nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	return cfg
}

func call(name string, args map[string]interface{}) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args
	return request
}

func texts(result *mcp.CallToolResult) []string {
	out := make([]string, 0, len(result.Content))
	for _, content := range result.Content {
		out = append(out, content.(mcp.TextContent).Text)
	}
	return out
}

func TestNewServer(t *testing.T) {
	Convey("Given a server over a provisioned embedded store", t, func() {
		ctx := context.Background()
		cfg := testConfig(t)
		store := memory.NewEmbeddedStore(wordHash)

		provisioner, err := provision.New(store, cfg.Embedding)
		So(err, ShouldBeNil)
		So(provisioner.Provision(ctx, provision.Collections(cfg.Collections.Search, cfg.Collections.Store)...), ShouldBeNil)

		_, registry, err := newServer(cfg, store)
		So(err, ShouldBeNil)

		Convey("It should register every tool", func() {
			names := []string{}
			for _, tool := range registry.Tools() {
				names = append(names, tool.Name)
			}

			So(names, ShouldResemble, []string{
				"weaviate-find-memories",
				"weaviate-hybrid-query",
				"weaviate-insert-one",
				"weaviate-search-knowledge",
				"weaviate-store-memory",
			})
		})

		Convey("A stored memory should be found again", func() {
			So(cfg.FindScope, ShouldEqual, "store")

			for _, information := range []string{"the sky is blue", "grass is green", "fire is hot"} {
				result, err := registry.Call(ctx, call("weaviate-store-memory", map[string]interface{}{
					"information": information,
				}))
				So(err, ShouldBeNil)
				So(texts(result), ShouldResemble, []string{"Remembered: " + information})
			}

			result, err := registry.Call(ctx, call("weaviate-find-memories", map[string]interface{}{
				"query": "sky color",
			}))

			So(err, ShouldBeNil)
			So(result.IsError, ShouldBeFalse)

			blocks := texts(result)
			So(blocks[0], ShouldEqual, "Memories for the query 'sky color'")
			So(blocks, ShouldContain, "<memory>the sky is blue</memory>")
			So(blocks[1], ShouldEqual, "<memory>the sky is blue</memory>")
		})

		Convey("Searching a missing collection should return an empty list", func() {
			So(store.DeleteCollection(ctx, "Knowledge"), ShouldBeNil)

			result, err := registry.Call(ctx, call("weaviate-search-knowledge", map[string]interface{}{
				"query": "sky",
			}))

			So(err, ShouldBeNil)
			So(result.IsError, ShouldBeFalse)
			So(texts(result), ShouldResemble, []string{"Knowledge base results for the query 'sky'"})
		})

		Convey("A hybrid query should return a JSON encoded report", func() {
			_, err := registry.Call(ctx, call("weaviate-insert-one", map[string]interface{}{
				"collection": "Knowledge",
				"properties": map[string]interface{}{"content": "grass is green"},
			}))
			So(err, ShouldBeNil)

			result, err := registry.Call(ctx, call("weaviate-hybrid-query", map[string]interface{}{
				"collection": "Knowledge",
				"query":      "grass",
			}))

			So(err, ShouldBeNil)
			So(texts(result), ShouldHaveLength, 1)
			So(texts(result)[0], ShouldStartWith, `"----------------------------------------\n`)
			So(texts(result)[0], ShouldContainSubstring, `content: grass is green`)
		})

		Convey("An unknown tool should return an error result", func() {
			result, err := registry.Call(ctx, call("weaviate-drop-everything", nil))
			So(err, ShouldBeNil)
			So(result.IsError, ShouldBeTrue)
		})

		Convey("A call without its required argument should name it", func() {
			result, err := registry.Call(ctx, call("weaviate-find-memories", map[string]interface{}{}))
			So(err, ShouldBeNil)
			So(result.IsError, ShouldBeTrue)
			So(texts(result)[0], ShouldContainSubstring, "query")
		})
	})
}

func TestNewServerAgent(t *testing.T) {
	Convey("Given an agent without its key", t, func() {
		cfg := testConfig(t)
		cfg.Agent.Provider = "anthropic"

		_, _, err := newServer(cfg, memory.NewEmbeddedStore(wordHash))

		Convey("It should refuse to build the server", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
