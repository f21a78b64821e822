// Command provision drops and recreates the search and store collections.
// Any data already stored under those names is lost.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/theapemachine/mcp-server-weaviate/pkg/config"
	"github.com/theapemachine/mcp-server-weaviate/pkg/memory"
	"github.com/theapemachine/mcp-server-weaviate/pkg/provision"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "provision",
		Short:         "Recreate the search and store collections",
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

			return run(cmd.Context(), cfg, store)
		},
	}

	config.RegisterFlags(cmd.Flags())
	return cmd
}

func run(ctx context.Context, cfg *config.Config, schema memory.Schema) error {
	provisioner, err := provision.New(schema, cfg.Embedding)
	if err != nil {
		return err
	}

	if err := provisioner.Provision(ctx, provision.Collections(cfg.Collections.Search, cfg.Collections.Store)...); err != nil {
		return err
	}

	log.Info("Collections provisioned", "search", cfg.Collections.Search, "store", cfg.Collections.Store)
	return nil
}
