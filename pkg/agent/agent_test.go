package agent

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/mock"
	"github.com/theapemachine/mcp-server-weaviate/pkg/memory"
)

// MockCompleter mocks the language model
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, system string, user string) (string, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Error(1)
}

// MockVectorStore returns canned results per collection
type MockVectorStore struct {
	results map[string][]string
	errs    map[string]error
	queries []string
}

func (m *MockVectorStore) Insert(ctx context.Context, collection string, properties map[string]any) (string, error) {
	return "", nil
}

func (m *MockVectorStore) NearText(ctx context.Context, collection string, query string, limit int) ([]string, error) {
	m.queries = append(m.queries, collection+":"+query)
	if err := m.errs[collection]; err != nil {
		return nil, err
	}
	return m.results[collection], nil
}

func (m *MockVectorStore) Hybrid(ctx context.Context, collection string, query string, limit int, properties []string) (memory.HybridResult, error) {
	return memory.HybridResult{}, nil
}

func TestNewAgent(t *testing.T) {
	Convey("Given duplicated collection names", t, func() {
		agent := New(&MockVectorStore{}, &MockCompleter{}, "Knowledge", "", "Knowledge", "Memories")

		Convey("It should search each collection once", func() {
			So(agent.collections, ShouldResemble, []string{"Knowledge", "Memories"})
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given an agent over two collections", t, func() {
		ctx := context.Background()
		completer := &MockCompleter{}
		store := &MockVectorStore{
			results: map[string][]string{
				"Knowledge": {"Valencia is in Spain"},
				"Memories":  {"The user lives in Valencia"},
			},
		}
		agent := New(store, completer, "Knowledge", "Memories")

		completer.On("Complete", ctx, rewritePrompt, "Which country does the user live in?").
			Return("user country of residence", nil)

		Convey("When both collections return sources", func() {
			completer.On("Complete", ctx, answerPrompt, mock.Anything).Return(" The user lives in Spain. ", nil)

			answer, err := agent.Run(ctx, "Which country does the user live in?")

			Convey("It should answer from the sources of every collection", func() {
				So(err, ShouldBeNil)
				So(answer.FinalAnswer, ShouldEqual, "The user lives in Spain.")
				So(answer.Sources, ShouldResemble, []string{"Valencia is in Spain", "The user lives in Valencia"})
				So(store.queries, ShouldResemble, []string{
					"Knowledge:user country of residence",
					"Memories:user country of residence",
				})

				prompt := completer.Calls[1].Arguments.String(2)
				So(prompt, ShouldContainSubstring, "[1] Valencia is in Spain")
				So(prompt, ShouldContainSubstring, "[2] The user lives in Valencia")
				So(prompt, ShouldContainSubstring, "Question: Which country does the user live in?")
			})
		})

		Convey("When a collection does not exist", func() {
			store.errs = map[string]error{"Knowledge": memory.ErrCollectionNotFound}
			completer.On("Complete", ctx, answerPrompt, mock.Anything).Return("Spain", nil)

			answer, err := agent.Run(ctx, "Which country does the user live in?")

			Convey("It should skip it", func() {
				So(err, ShouldBeNil)
				So(answer.Sources, ShouldResemble, []string{"The user lives in Valencia"})
			})
		})

		Convey("When no collection returns anything", func() {
			store.results = nil

			answer, err := agent.Run(ctx, "Which country does the user live in?")

			Convey("It should not call the model a second time", func() {
				So(err, ShouldBeNil)
				So(answer.FinalAnswer, ShouldEqual, NoInformation)
				completer.AssertNumberOfCalls(t, "Complete", 1)
			})
		})

		Convey("When the search fails", func() {
			store.errs = map[string]error{"Memories": errors.New("connection refused")}

			_, err := agent.Run(ctx, "Which country does the user live in?")

			Convey("It should return the error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "connection refused")
			})
		})
	})

	Convey("Given a model that returns an empty rewrite", t, func() {
		ctx := context.Background()
		completer := &MockCompleter{}
		store := &MockVectorStore{}
		agent := New(store, completer, "Knowledge")

		completer.On("Complete", ctx, rewritePrompt, "sky color").Return("  ", nil)

		_, err := agent.Run(ctx, "sky color")

		Convey("It should search with the original question", func() {
			So(err, ShouldBeNil)
			So(store.queries, ShouldResemble, []string{"Knowledge:sky color"})
		})
	})
}

func TestNewCompleter(t *testing.T) {
	Convey("Given query agent providers", t, func() {
		Convey("OpenAI without a key should fail", func() {
			_, err := NewCompleter(ProviderOpenAI, "", "", "")
			So(errors.Is(err, ErrMissingAPIKey), ShouldBeTrue)
		})

		Convey("Anthropic with a key should build a completer", func() {
			completer, err := NewCompleter(ProviderAnthropic, "", "", "sk-ant")
			So(err, ShouldBeNil)
			So(completer, ShouldHaveSameTypeAs, &AnthropicCompleter{})
		})

		Convey("An unknown provider should fail", func() {
			_, err := NewCompleter("mistral", "", "sk", "sk")
			So(err, ShouldNotBeNil)
		})
	})
}
