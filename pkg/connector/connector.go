// Package connector translates plain arguments into vector store calls and
// flattens what comes back into strings.
package connector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/mcp-server-weaviate/pkg/agent"
	"github.com/theapemachine/mcp-server-weaviate/pkg/memory"
)

const (
	DefaultFindLimit   = 10
	DefaultHybridLimit = 5

	separator = "----------------------------------------"
)

// Scope selects the collection that FindMemories reads.
type Scope string

const (
	ScopeSearch Scope = "search"
	ScopeStore  Scope = "store"
)

// Status classifies the outcome of a search so the caller can decide whether
// to surface a failure or hide it behind an empty list.
type Status int

const (
	StatusOK Status = iota
	StatusEmpty
	StatusNotFound
	StatusTransportError
)

func (status Status) String() string {
	switch status {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusNotFound:
		return "not found"
	case StatusTransportError:
		return "transport error"
	}

	return "unknown"
}

// SearchResult holds the content strings of a search in database order.
type SearchResult struct {
	Items  []string
	Status Status
	Err    error
}

// Failed reports whether the search did not reach a usable collection.
func (result SearchResult) Failed() bool {
	return result.Status == StatusNotFound || result.Status == StatusTransportError
}

// KnowledgeResult is either a synthesized answer or a plain list of results.
type KnowledgeResult struct {
	Answer  *agent.Answer
	Results SearchResult
}

// Option configures a Connector.
type Option func(*Connector)

// WithAgent delegates knowledge base searches to a query agent.
func WithAgent(queryAgent agent.QueryAgent) Option {
	return func(connector *Connector) {
		connector.agent = queryAgent
	}
}

// WithFindScope chooses the collection FindMemories searches.
func WithFindScope(scope Scope) Option {
	return func(connector *Connector) {
		connector.scope = scope
	}
}

// Connector is the adapter between the tool front-end and one vector store.
type Connector struct {
	store            memory.VectorStore
	searchCollection string
	storeCollection  string
	scope            Scope
	agent            agent.QueryAgent
}

// New creates a Connector over an already opened store.
func New(store memory.VectorStore, searchCollection, storeCollection string, options ...Option) *Connector {
	connector := &Connector{
		store:            store,
		searchCollection: searchCollection,
		storeCollection:  storeCollection,
		scope:            ScopeStore,
	}

	for _, option := range options {
		option(connector)
	}

	return connector
}

// SearchCollection returns the knowledge base collection name.
func (connector *Connector) SearchCollection() string {
	return connector.searchCollection
}

// StoreCollection returns the memory collection name.
func (connector *Connector) StoreCollection() string {
	return connector.storeCollection
}

// HasAgent reports whether knowledge searches are answered by a query agent.
func (connector *Connector) HasAgent() bool {
	return connector.agent != nil
}

// Store inserts text as the content of a new object in the store collection.
func (connector *Connector) Store(ctx context.Context, text string) error {
	if _, err := connector.store.Insert(ctx, connector.storeCollection, map[string]any{
		memory.ContentProperty: text,
	}); err != nil {
		return fmt.Errorf("failed to store memory: %w", err)
	}

	return nil
}

// Find runs a semantic search against the search collection.
func (connector *Connector) Find(ctx context.Context, query string, limit int) SearchResult {
	return connector.find(ctx, connector.searchCollection, query, limit)
}

// FindMemories runs a semantic search against the collection selected by the
// find scope, the store collection unless configured otherwise.
func (connector *Connector) FindMemories(ctx context.Context, query string, limit int) SearchResult {
	collection := connector.searchCollection
	if connector.scope == ScopeStore {
		collection = connector.storeCollection
	}

	return connector.find(ctx, collection, query, limit)
}

// SearchKnowledgeBase answers with the query agent when one is configured,
// otherwise it behaves like Find with the default limit.
func (connector *Connector) SearchKnowledgeBase(ctx context.Context, query string) KnowledgeResult {
	if connector.agent == nil {
		return KnowledgeResult{Results: connector.Find(ctx, query, DefaultFindLimit)}
	}

	answer, err := connector.agent.Run(ctx, query)
	if err != nil {
		return KnowledgeResult{Results: classify(nil, err)}
	}

	return KnowledgeResult{Answer: &answer, Results: SearchResult{Status: StatusOK}}
}

// HybridSearch runs a lexical plus vector query against any collection and
// returns the formatted report.
func (connector *Connector) HybridSearch(
	ctx context.Context, collection, query string, limit int, properties []string,
) (string, error) {
	if limit <= 0 {
		limit = DefaultHybridLimit
	}

	if len(properties) == 0 {
		properties = []string{memory.ContentProperty}
	}

	result, err := connector.store.Hybrid(ctx, collection, query, limit, properties)
	if err != nil {
		return "", fmt.Errorf("hybrid query on %s failed: %w", collection, err)
	}

	return FormatHybrid(result), nil
}

// InsertOne inserts an arbitrary property map and returns the new object id.
// An empty collection means the store collection.
func (connector *Connector) InsertOne(ctx context.Context, collection string, properties map[string]any) (string, error) {
	if collection == "" {
		collection = connector.storeCollection
	}

	id, err := connector.store.Insert(ctx, collection, properties)
	if err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", collection, err)
	}

	return id, nil
}

func (connector *Connector) find(ctx context.Context, collection, query string, limit int) SearchResult {
	if limit <= 0 {
		limit = DefaultFindLimit
	}

	items, err := connector.store.NearText(ctx, collection, query, limit)
	if err != nil {
		log.Debug("Search failed", "collection", collection, "error", err)
	}

	return classify(items, err)
}

func classify(items []string, err error) SearchResult {
	switch {
	case errors.Is(err, memory.ErrCollectionNotFound):
		return SearchResult{Status: StatusNotFound, Err: err}
	case err != nil:
		return SearchResult{Status: StatusTransportError, Err: err}
	case len(items) == 0:
		return SearchResult{Status: StatusEmpty}
	}

	return SearchResult{Items: items, Status: StatusOK}
}

// FormatHybrid renders a hybrid result as a plain text report.
func FormatHybrid(result memory.HybridResult) string {
	if result.Kind == memory.ResultRaw {
		return result.Raw
	}

	var report strings.Builder

	for _, object := range result.Objects {
		report.WriteString(separator)
		report.WriteString("\n")

		for _, property := range object.Properties {
			value := property.Value
			if value == nil {
				value = ""
			}
			fmt.Fprintf(&report, "%s: %v\n", property.Key, value)
		}
	}

	if result.TotalCount != nil {
		fmt.Fprintf(&report, "\nTotal matching results: %d\n", *result.TotalCount)
	}

	return report.String()
}
