// Package provision (re)creates the collections the server reads and writes.
package provision

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/mcp-server-weaviate/pkg/memory"
)

// Collection descriptions, kept on the content property.
const (
	SearchDescription = "The content of the knowledge base entry"
	StoreDescription  = "The content of the stored memory"
)

// Provisioner resets collections. It is destructive: any existing data under
// the target names is dropped.
type Provisioner struct {
	schema   memory.Schema
	provider memory.Provider
}

// New creates a Provisioner that vectorizes with the preferred provider in keys.
func New(schema memory.Schema, keys memory.Keys) (*Provisioner, error) {
	provider, err := memory.SelectProvider(keys)
	if err != nil {
		return nil, err
	}

	return &Provisioner{
		schema:   schema,
		provider: provider,
	}, nil
}

// Collections returns the search (knowledge base) and store (memories) specs.
func Collections(search, store string) []memory.CollectionSpec {
	return []memory.CollectionSpec{
		{Name: search, Description: SearchDescription},
		{Name: store, Description: StoreDescription},
	}
}

// Provision deletes every existing collection named in specs, then creates
// them all. The first failure is returned as is; there is no rollback.
func (p *Provisioner) Provision(ctx context.Context, specs ...memory.CollectionSpec) error {
	for _, spec := range specs {
		exists, err := p.schema.CollectionExists(ctx, spec.Name)
		if err != nil {
			return err
		}

		if !exists {
			continue
		}

		log.Info("Deleting collection", "collection", spec.Name)

		if err := p.schema.DeleteCollection(ctx, spec.Name); err != nil {
			return err
		}
	}

	for _, spec := range specs {
		spec.Provider = p.provider

		log.Info("Creating collection", "collection", spec.Name, "vectorizer", p.provider.Vectorizer())

		if err := p.schema.CreateCollection(ctx, spec); err != nil {
			return fmt.Errorf("provisioning stopped at %s: %w", spec.Name, err)
		}
	}

	return nil
}
