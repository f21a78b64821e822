package agent

import (
	"errors"
	"fmt"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

var ErrMissingAPIKey = errors.New("missing API key for query agent")

// NewCompleter returns the Completer for the named provider.
func NewCompleter(provider, model, openAIKey, anthropicKey string) (Completer, error) {
	switch provider {
	case ProviderOpenAI:
		if openAIKey == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingAPIKey, provider)
		}
		return NewOpenAICompleter(openAIKey, model), nil
	case ProviderAnthropic:
		if anthropicKey == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingAPIKey, provider)
		}
		return NewAnthropicCompleter(anthropicKey, model), nil
	default:
		return nil, fmt.Errorf("unknown query agent provider %q", provider)
	}
}
