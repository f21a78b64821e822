package memory

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	BackendWeaviate = "weaviate"
	BackendQdrant   = "qdrant"
	BackendEmbedded = "embedded"
)

// Options configures the connection to a backend.
type Options struct {
	Backend string
	URL     string
	APIKey  string
	Keys    Keys

	QdrantURL    string
	QdrantAPIKey string
}

// Connect opens the backend named by opts.Backend. It fails with
// ErrNoEmbeddingProvider before touching the network when no key is set.
func Connect(opts Options) (Store, error) {
	if _, err := SelectProvider(opts.Keys); err != nil {
		return nil, err
	}

	switch opts.Backend {
	case "", BackendWeaviate:
		return NewWeaviateStore(opts.URL, opts.APIKey, opts.Keys)
	case BackendQdrant:
		embed, dims, err := NewEmbeddingFunc(opts.Keys)
		if err != nil {
			return nil, err
		}
		return NewQdrantStore(opts.QdrantURL, opts.QdrantAPIKey, embed, dims)
	case BackendEmbedded:
		embed, _, err := NewEmbeddingFunc(opts.Keys)
		if err != nil {
			return nil, err
		}
		return NewEmbeddedStore(embed), nil
	default:
		return nil, fmt.Errorf("unknown vector backend %q", opts.Backend)
	}
}

// splitURL turns a user supplied URL into scheme and host. An empty URL
// means a local instance; a URL without a scheme is assumed to be a cloud
// cluster reached over https.
func splitURL(raw, defaultHost string) (scheme string, host string, err error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		return "http", defaultHost, nil
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid url %q: %w", raw, err)
	}

	if u.Host == "" {
		return "", "", fmt.Errorf("invalid url %q: missing host", raw)
	}

	return u.Scheme, u.Host, nil
}
