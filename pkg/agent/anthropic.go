package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicCompleter implements Completer for Anthropic Claude models
type AnthropicCompleter struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicCompleter creates a completer; an empty model means the default Sonnet.
func NewAnthropicCompleter(apiKey, model string) *AnthropicCompleter {
	if model == "" {
		model = "claude-3-5-sonnet-20240620"
	}

	return &AnthropicCompleter{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: 1024,
	}
}

// Complete sends the system prompt and one user message and concatenates the text blocks of the reply
func (completer *AnthropicCompleter) Complete(ctx context.Context, system string, user string) (string, error) {
	response, err := completer.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F(completer.model),
		MaxTokens: anthropic.Int(completer.maxTokens),
		System: anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(system),
		}),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		}),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	text := ""
	for _, block := range response.Content {
		if textBlock, ok := block.AsUnion().(anthropic.TextBlock); ok {
			text += textBlock.Text
		}
	}

	if text == "" {
		return "", errors.New("no text in response")
	}

	return text, nil
}
