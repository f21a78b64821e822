package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAICompleter implements Completer with OpenAI chat completions
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

// NewOpenAICompleter creates a completer; an empty model means gpt-4o-mini.
func NewOpenAICompleter(apiKey, model string) *OpenAICompleter {
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}

	return &OpenAICompleter{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Complete sends one system and one user message and returns the reply
func (completer *OpenAICompleter) Complete(ctx context.Context, system string, user string) (string, error) {
	chat, err := completer.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		}),
		Model: openai.F(completer.model),
	})
	if err != nil {
		return "", fmt.Errorf("openai completion error: %w", err)
	}

	if len(chat.Choices) == 0 {
		return "", errors.New("no choices in response")
	}

	return chat.Choices[0].Message.Content, nil
}
