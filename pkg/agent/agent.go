// Package agent answers knowledge-base questions with a short retrieve-then-
// synthesize loop over one or more collections.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/theapemachine/mcp-server-weaviate/pkg/memory"
)

const (
	rewritePrompt = "You turn questions into short search queries for a semantic search engine. " +
		"Reply with the query only, no quotes and no explanation."

	answerPrompt = "You answer questions using only the numbered sources provided. " +
		"If the sources do not contain the answer, say that the knowledge base has no information about it."

	// NoInformation is the answer returned when no collection yielded a source.
	NoInformation = "The knowledge base has no information about this."
)

// Answer is the result of a query agent run.
type Answer struct {
	FinalAnswer string
	Sources     []string
}

// QueryAgent answers a question in one call.
type QueryAgent interface {
	Run(ctx context.Context, query string) (Answer, error)
}

// Completer is a single-turn chat completion.
type Completer interface {
	Complete(ctx context.Context, system string, user string) (string, error)
}

// Agent is the QueryAgent backed by a vector store and a language model.
type Agent struct {
	store       memory.VectorStore
	completer   Completer
	collections []string
	limit       int
}

// New creates an Agent searching the given collections. Duplicate and empty
// names are dropped.
func New(store memory.VectorStore, completer Completer, collections ...string) *Agent {
	named := lo.Filter(collections, func(name string, _ int) bool {
		return name != ""
	})

	return &Agent{
		store:       store,
		completer:   completer,
		collections: lo.Uniq(named),
		limit:       5,
	}
}

// Run rewrites the question into a search query, gathers matches from every
// collection and asks the model for a final answer grounded in them. A
// collection that does not exist is skipped; any other error aborts the run.
func (agent *Agent) Run(ctx context.Context, query string) (Answer, error) {
	searchQuery, err := agent.completer.Complete(ctx, rewritePrompt, query)
	if err != nil {
		return Answer{}, fmt.Errorf("failed to rewrite query: %w", err)
	}

	searchQuery = strings.TrimSpace(searchQuery)
	if searchQuery == "" {
		searchQuery = query
	}

	var sources []string

	for _, collection := range agent.collections {
		results, err := agent.store.NearText(ctx, collection, searchQuery, agent.limit)
		if errors.Is(err, memory.ErrCollectionNotFound) {
			log.Warn("Skipping missing collection", "collection", collection)
			continue
		}

		if err != nil {
			return Answer{}, fmt.Errorf("failed to search %s: %w", collection, err)
		}

		sources = append(sources, results...)
	}

	if len(sources) == 0 {
		return Answer{FinalAnswer: NoInformation}, nil
	}

	var prompt strings.Builder
	prompt.WriteString("Sources:\n")
	for i, source := range sources {
		fmt.Fprintf(&prompt, "[%d] %s\n", i+1, source)
	}
	fmt.Fprintf(&prompt, "\nQuestion: %s", query)

	answer, err := agent.completer.Complete(ctx, answerPrompt, prompt.String())
	if err != nil {
		return Answer{}, fmt.Errorf("failed to synthesize answer: %w", err)
	}

	return Answer{
		FinalAnswer: strings.TrimSpace(answer),
		Sources:     sources,
	}, nil
}
