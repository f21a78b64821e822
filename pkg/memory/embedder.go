package memory

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/ristretto"
	chromem "github.com/philippgille/chromem-go"
)

// Vector sizes of the default models, needed to size Qdrant collections.
const (
	openAIDimensions = 1536 // text-embedding-3-small
	cohereDimensions = 1024 // embed-english-v3.0
)

// NewEmbeddingFunc returns the client-side embedding function for the
// preferred provider along with its vector size. Backends without a
// server-side vectorizer (Qdrant, embedded) use it.
func NewEmbeddingFunc(keys Keys) (chromem.EmbeddingFunc, int, error) {
	provider, err := SelectProvider(keys)
	if err != nil {
		return nil, 0, err
	}

	var (
		embed chromem.EmbeddingFunc
		dims  int
	)

	switch provider {
	case ProviderCohere:
		embed = chromem.NewEmbeddingFuncCohere(keys.Cohere, chromem.EmbeddingModelCohereEnglishV3)
		dims = cohereDimensions
	default:
		embed = chromem.NewEmbeddingFuncOpenAI(keys.OpenAI, chromem.EmbeddingModelOpenAI3Small)
		dims = openAIDimensions
	}

	cached, err := CachedEmbeddingFunc(embed)
	if err != nil {
		return nil, 0, err
	}

	return cached, dims, nil
}

// CachedEmbeddingFunc wraps embed so repeated texts (typically repeated
// queries) are not sent to the provider twice.
func CachedEmbeddingFunc(embed chromem.EmbeddingFunc) (chromem.EmbeddingFunc, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     64 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}

	return func(ctx context.Context, text string) ([]float32, error) {
		if cached, ok := cache.Get(text); ok {
			if vector, ok := cached.([]float32); ok {
				return vector, nil
			}
		}

		vector, err := embed(ctx, text)
		if err != nil {
			return nil, err
		}

		if !cache.Set(text, vector, int64(len(vector)*4)) {
			log.Debug("embedding not cached", "length", len(text))
		}

		return vector, nil
	}, nil
}
