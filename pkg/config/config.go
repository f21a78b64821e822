// Package config provides centralized configuration management for the Weaviate MCP server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/theapemachine/mcp-server-weaviate/pkg/agent"
	"github.com/theapemachine/mcp-server-weaviate/pkg/connector"
	"github.com/theapemachine/mcp-server-weaviate/pkg/memory"
)

// Keys double as flag names. Each one is bound to its environment variable.
const (
	KeyWeaviateURL      = "weaviate-url"
	KeyWeaviateAPIKey   = "weaviate-api-key"
	KeySearchCollection = "search-collection-name"
	KeyStoreCollection  = "store-collection-name"
	KeyOpenAIAPIKey     = "openai-api-key"
	KeyCohereAPIKey     = "cohere-api-key"
	KeyBackend          = "backend"
	KeyQdrantURL        = "qdrant-url"
	KeyQdrantAPIKey     = "qdrant-api-key"
	KeyKnowledgeAgent   = "knowledge-agent"
	KeyAgentModel       = "agent-model"
	KeyAnthropicAPIKey  = "anthropic-api-key"
	KeyMaskSearchErrors = "mask-search-errors"
	KeyFindScope        = "find-scope"
	KeyLogLevel         = "log-level"
)

var env = map[string]string{
	KeyWeaviateURL:      "WEAVIATE_URL",
	KeyWeaviateAPIKey:   "WEAVIATE_API_KEY",
	KeySearchCollection: "SEARCH_COLLECTION_NAME",
	KeyStoreCollection:  "STORE_COLLECTION_NAME",
	KeyOpenAIAPIKey:     "OPENAI_API_KEY",
	KeyCohereAPIKey:     "COHERE_API_KEY",
	KeyBackend:          "VECTOR_BACKEND",
	KeyQdrantURL:        "QDRANT_URL",
	KeyQdrantAPIKey:     "QDRANT_API_KEY",
	KeyKnowledgeAgent:   "KNOWLEDGE_AGENT",
	KeyAgentModel:       "AGENT_MODEL",
	KeyAnthropicAPIKey:  "ANTHROPIC_API_KEY",
	KeyMaskSearchErrors: "MASK_SEARCH_ERRORS",
	KeyFindScope:        "FIND_SCOPE",
	KeyLogLevel:         "LOG_LEVEL",
}

// Config holds the complete configuration for the application
type Config struct {
	Backend string

	// Weaviate connection
	Weaviate struct {
		URL    string
		APIKey string
	}

	// Qdrant connection, used when Backend is qdrant
	Qdrant struct {
		URL    string
		APIKey string
	}

	Collections struct {
		Search string
		Store  string
	}

	// Embedding provider keys
	Embedding memory.Keys

	// Optional query agent for knowledge searches
	Agent struct {
		Provider        string
		Model           string
		AnthropicAPIKey string
	}

	MaskSearchErrors bool
	FindScope        string
	LogLevel         string
}

// RegisterFlags declares every setting as a flag on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(KeyWeaviateURL, "", "Weaviate URL (default a local instance)")
	fs.String(KeyWeaviateAPIKey, "", "Weaviate API key")
	fs.String(KeySearchCollection, "", "Name of collection to search from")
	fs.String(KeyStoreCollection, "", "Name of collection to store memories in")
	fs.String(KeyOpenAIAPIKey, "", "OpenAI API key")
	fs.String(KeyCohereAPIKey, "", "Cohere API key")
	fs.String(KeyBackend, memory.BackendWeaviate, "Vector backend: weaviate, qdrant or embedded")
	fs.String(KeyQdrantURL, "", "Qdrant URL (default localhost:6334)")
	fs.String(KeyQdrantAPIKey, "", "Qdrant API key")
	fs.String(KeyKnowledgeAgent, "", "Answer knowledge searches with a query agent: openai or anthropic")
	fs.String(KeyAgentModel, "", "Model used by the query agent")
	fs.String(KeyAnthropicAPIKey, "", "Anthropic API key")
	fs.Bool(KeyMaskSearchErrors, true, "Return empty results instead of errors when a search fails")
	fs.String(KeyFindScope, string(connector.ScopeStore), "Collection the find memories tool reads: search or store")
	fs.String(KeyLogLevel, "info", "Log level: debug, info, warn or error")
}

// Load reads the configuration from flags and environment variables. Flags
// that were set explicitly win over the environment. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault(KeyBackend, memory.BackendWeaviate)
	v.SetDefault(KeyMaskSearchErrors, true)
	v.SetDefault(KeyFindScope, string(connector.ScopeStore))
	v.SetDefault(KeyLogLevel, "info")

	for key, name := range env {
		if err := v.BindEnv(key, name); err != nil {
			return nil, err
		}
	}

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	cfg := &Config{}
	cfg.Backend = strings.ToLower(v.GetString(KeyBackend))
	cfg.Weaviate.URL = v.GetString(KeyWeaviateURL)
	cfg.Weaviate.APIKey = v.GetString(KeyWeaviateAPIKey)
	cfg.Qdrant.URL = v.GetString(KeyQdrantURL)
	cfg.Qdrant.APIKey = v.GetString(KeyQdrantAPIKey)
	cfg.Collections.Search = v.GetString(KeySearchCollection)
	cfg.Collections.Store = v.GetString(KeyStoreCollection)
	cfg.Embedding.OpenAI = v.GetString(KeyOpenAIAPIKey)
	cfg.Embedding.Cohere = v.GetString(KeyCohereAPIKey)
	cfg.Agent.Provider = strings.ToLower(v.GetString(KeyKnowledgeAgent))
	cfg.Agent.Model = v.GetString(KeyAgentModel)
	cfg.Agent.AnthropicAPIKey = v.GetString(KeyAnthropicAPIKey)
	cfg.MaskSearchErrors = v.GetBool(KeyMaskSearchErrors)
	cfg.FindScope = strings.ToLower(v.GetString(KeyFindScope))
	cfg.LogLevel = v.GetString(KeyLogLevel)

	return cfg, nil
}

// Validate checks if all required configuration values are set and reports
// every problem at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Collections.Search == "" {
		result = multierror.Append(result, fmt.Errorf("%s is required", env[KeySearchCollection]))
	}

	if c.Collections.Store == "" {
		result = multierror.Append(result, fmt.Errorf("%s is required", env[KeyStoreCollection]))
	}

	if !c.Embedding.Any() {
		result = multierror.Append(result, memory.ErrNoEmbeddingProvider)
	}

	switch c.Backend {
	case memory.BackendWeaviate, memory.BackendQdrant, memory.BackendEmbedded:
	default:
		result = multierror.Append(result, fmt.Errorf("unknown vector backend %q", c.Backend))
	}

	switch connector.Scope(c.FindScope) {
	case connector.ScopeSearch, connector.ScopeStore:
	default:
		result = multierror.Append(result, fmt.Errorf("unknown find scope %q", c.FindScope))
	}

	switch c.Agent.Provider {
	case "":
	case agent.ProviderOpenAI:
		if c.Embedding.OpenAI == "" {
			result = multierror.Append(result, errors.New("the openai query agent needs OPENAI_API_KEY"))
		}
	case agent.ProviderAnthropic:
		if c.Agent.AnthropicAPIKey == "" {
			result = multierror.Append(result, errors.New("the anthropic query agent needs ANTHROPIC_API_KEY"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("unknown query agent %q", c.Agent.Provider))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		result = multierror.Append(result, fmt.Errorf("invalid log level %q", c.LogLevel))
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	return nil
}

// MemoryOptions returns the connection options for memory.Connect.
func (c *Config) MemoryOptions() memory.Options {
	return memory.Options{
		Backend:      c.Backend,
		URL:          c.Weaviate.URL,
		APIKey:       c.Weaviate.APIKey,
		Keys:         c.Embedding,
		QdrantURL:    c.Qdrant.URL,
		QdrantAPIKey: c.Qdrant.APIKey,
	}
}

// SetupLogging configures the default logger. Logs go to stderr because
// stdout carries the protocol.
func SetupLogging(level string) error {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           parsed,
	})

	log.SetDefault(logger)
	return nil
}
