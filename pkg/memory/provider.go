package memory

// Provider names an embedding backend a collection vectorizes with.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderCohere Provider = "cohere"
)

// Keys holds the embedding provider API keys.
type Keys struct {
	OpenAI string
	Cohere string
}

// Any reports whether at least one provider key is set.
func (k Keys) Any() bool {
	return k.OpenAI != "" || k.Cohere != ""
}

// SelectProvider picks the vectorizer for new collections. OpenAI wins when
// both keys are present.
func SelectProvider(keys Keys) (Provider, error) {
	switch {
	case keys.OpenAI != "":
		return ProviderOpenAI, nil
	case keys.Cohere != "":
		return ProviderCohere, nil
	default:
		return "", ErrNoEmbeddingProvider
	}
}

// ProviderHeaders returns the headers that hand the embedding keys to the
// database-side vectorizer modules.
func ProviderHeaders(keys Keys) map[string]string {
	headers := make(map[string]string)

	if keys.Cohere != "" {
		headers["X-Cohere-Api-Key"] = keys.Cohere
	}

	if keys.OpenAI != "" {
		headers["X-OpenAI-Api-Key"] = keys.OpenAI
	}

	return headers
}

// Vectorizer returns the Weaviate module name for the provider.
func (p Provider) Vectorizer() string {
	switch p {
	case ProviderCohere:
		return "text2vec-cohere"
	default:
		return "text2vec-openai"
	}
}
