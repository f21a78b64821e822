// Command server exposes Weaviate memories and knowledge as MCP tools over stdio
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/theapemachine/mcp-server-weaviate/core/middleware"
	"github.com/theapemachine/mcp-server-weaviate/pkg/agent"
	"github.com/theapemachine/mcp-server-weaviate/pkg/config"
	"github.com/theapemachine/mcp-server-weaviate/pkg/connector"
	"github.com/theapemachine/mcp-server-weaviate/pkg/memory"
	"github.com/theapemachine/mcp-server-weaviate/pkg/tools"
	"github.com/theapemachine/mcp-server-weaviate/pkg/tools/knowledge"
	memtools "github.com/theapemachine/mcp-server-weaviate/pkg/tools/memory"
	"github.com/theapemachine/mcp-server-weaviate/pkg/tools/prompts"
	"github.com/theapemachine/mcp-server-weaviate/pkg/tools/query"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mcp-server-weaviate",
		Short:         "MCP server for Weaviate memories and knowledge",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := config.SetupLogging(cfg.LogLevel); err != nil {
				return err
			}

			store, err := memory.Connect(cfg.MemoryOptions())
			if err != nil {
				return fmt.Errorf("failed to connect to %s: %w", cfg.Backend, err)
			}
			defer store.Close()

			mcpServer, _, err := newServer(cfg, store)
			if err != nil {
				return err
			}

			log.Info("Server started, waiting for requests", "backend", cfg.Backend)

			if err := server.ServeStdio(mcpServer); err != nil {
				return fmt.Errorf("server error: %w", err)
			}

			log.Info("Server shutdown complete")
			return nil
		},
	}

	config.RegisterFlags(cmd.Flags())
	return cmd
}

// newServer wires the store into the connector, the tools and the prompts.
func newServer(cfg *config.Config, store memory.VectorStore) (*server.MCPServer, *tools.Registry, error) {
	options := []connector.Option{
		connector.WithFindScope(connector.Scope(cfg.FindScope)),
	}

	if cfg.Agent.Provider != "" {
		completer, err := agent.NewCompleter(
			cfg.Agent.Provider, cfg.Agent.Model, cfg.Embedding.OpenAI, cfg.Agent.AnthropicAPIKey,
		)
		if err != nil {
			return nil, nil, err
		}

		queryAgent := agent.New(store, completer, cfg.Collections.Search, cfg.Collections.Store)
		options = append(options, connector.WithAgent(queryAgent))
	}

	conn := connector.New(store, cfg.Collections.Search, cfg.Collections.Store, options...)

	log.Debug("Connector ready",
		"search", conn.SearchCollection(),
		"store", conn.StoreCollection(),
		"agent", conn.HasAgent(),
	)

	mcpServer := server.NewMCPServer(
		"Weaviate MCP Server",
		version,
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(true),
		server.WithLogging(),
	)

	registry := tools.NewRegistry(mcpServer)
	registry.Use(middleware.Logging(log.Default()))

	registry.RegisterTool(memtools.NewStoreTool(conn))
	registry.RegisterTool(memtools.NewFindTool(conn, cfg.MaskSearchErrors))
	registry.RegisterTool(knowledge.New(conn, cfg.MaskSearchErrors))
	registry.RegisterTool(query.NewHybridTool(conn))
	registry.RegisterTool(query.NewInsertTool(conn))

	prompts.Register(mcpServer)

	return mcpServer, registry, nil
}
