// Package prompts provides prompt templates that steer a model toward the
// memory tools.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/theapemachine/mcp-server-weaviate/core"
	"github.com/theapemachine/mcp-server-weaviate/pkg/tools/memory"
)

const (
	RememberPromptName = "weaviate-remember"
	RecallPromptName   = "weaviate-recall"
)

// Remember asks the model to store a piece of information.
type Remember struct{}

func (Remember) Handle() mcp.Prompt {
	return mcp.NewPrompt(RememberPromptName,
		mcp.WithPromptDescription("Store a piece of information as a memory"),
		mcp.WithArgument("information",
			mcp.ArgumentDescription("The information to remember"),
			mcp.RequiredArgument(),
		),
	)
}

func (Remember) Handler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	information, ok := request.Params.Arguments["information"]
	if !ok || information == "" {
		return nil, fmt.Errorf("information is required")
	}

	return mcp.NewGetPromptResult(
		"Remember information",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(
				"system",
				mcp.NewTextContent(fmt.Sprintf("You keep memories for the user with the %s tool. Store each fact as one short, self-contained sentence.", memory.StoreToolName)),
			),
			mcp.NewPromptMessage(
				"user",
				mcp.NewTextContent(fmt.Sprintf("Please remember this: %s", information)),
			),
		},
	), nil
}

// Recall asks the model to look memories up before answering.
type Recall struct{}

func (Recall) Handle() mcp.Prompt {
	return mcp.NewPrompt(RecallPromptName,
		mcp.WithPromptDescription("Recall what is known about a topic"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("The topic to recall memories about"),
			mcp.RequiredArgument(),
		),
	)
}

func (Recall) Handler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic, ok := request.Params.Arguments["topic"]
	if !ok || topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	return mcp.NewGetPromptResult(
		"Recall memories",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(
				"system",
				mcp.NewTextContent(fmt.Sprintf("Before answering, call the %s tool and base your answer on the memories it returns. Say so when nothing relevant is found.", memory.FindToolName)),
			),
			mcp.NewPromptMessage(
				"user",
				mcp.NewTextContent(fmt.Sprintf("What do you remember about %s?", topic)),
			),
		},
	), nil
}

// All returns every prompt the server offers.
func All() []core.Prompt {
	return []core.Prompt{Remember{}, Recall{}}
}

// Register adds every prompt to the server.
func Register(s *server.MCPServer) {
	for _, prompt := range All() {
		s.AddPrompt(prompt.Handle(), prompt.Handler)
	}
}
