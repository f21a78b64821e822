package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

// EmbeddedStore implements Store on an in-process chromem-go database. It is
// meant for local runs and tests; data lives only as long as the process.
type EmbeddedStore struct {
	db    *chromem.DB
	embed chromem.EmbeddingFunc
}

// NewEmbeddedStore creates an empty in-memory store that embeds with embed.
func NewEmbeddedStore(embed chromem.EmbeddingFunc) *EmbeddedStore {
	return &EmbeddedStore{
		db:    chromem.NewDB(),
		embed: embed,
	}
}

// CollectionExists reports whether the collection was created
func (store *EmbeddedStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	return store.db.GetCollection(name, store.embed) != nil, nil
}

// DeleteCollection drops the collection
func (store *EmbeddedStore) DeleteCollection(ctx context.Context, name string) error {
	if err := store.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", name, err)
	}

	return nil
}

// CreateCollection creates an empty collection
func (store *EmbeddedStore) CreateCollection(ctx context.Context, spec CollectionSpec) error {
	metadata := map[string]string{
		"description": spec.Description,
		"vectorizer":  string(spec.Provider),
	}

	if _, err := store.db.CreateCollection(spec.Name, metadata, store.embed); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", spec.Name, err)
	}

	return nil
}

// Insert adds one document. Like Weaviate's auto-schema, inserting into an
// unknown collection creates it.
func (store *EmbeddedStore) Insert(ctx context.Context, collection string, properties map[string]any) (string, error) {
	col, err := store.db.GetOrCreateCollection(collection, nil, store.embed)
	if err != nil {
		return "", fmt.Errorf("failed to open collection %s: %w", collection, err)
	}

	content, err := embeddingText(properties)
	if err != nil {
		return "", err
	}

	metadata := make(map[string]string, len(properties))
	for key, value := range properties {
		if key == ContentProperty {
			continue
		}
		metadata[key] = metadataString(value)
	}

	doc := chromem.Document{
		ID:       uuid.NewString(),
		Content:  content,
		Metadata: metadata,
	}

	if err := col.AddDocument(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to add document: %w", err)
	}

	return doc.ID, nil
}

// NearText queries the collection by similarity to query
func (store *EmbeddedStore) NearText(ctx context.Context, collection string, query string, limit int) ([]string, error) {
	results, err := store.query(ctx, collection, query, limit)
	if err != nil {
		return nil, err
	}

	contents := make([]string, 0, len(results))
	for _, result := range results {
		contents = append(contents, result.Content)
	}

	return contents, nil
}

// Hybrid has no lexical index to fuse with, so it ranks by similarity only
// and does not report a total count.
func (store *EmbeddedStore) Hybrid(ctx context.Context, collection string, query string, limit int, properties []string) (HybridResult, error) {
	results, err := store.query(ctx, collection, query, limit)
	if err != nil {
		return HybridResult{}, err
	}

	objects := make([]Object, 0, len(results))
	for _, result := range results {
		object := Object{
			ID:         result.ID,
			Properties: make([]Property, 0, len(properties)),
		}

		for _, prop := range properties {
			var value any
			if prop == ContentProperty {
				value = result.Content
			} else if v, ok := result.Metadata[prop]; ok {
				value = v
			}
			object.Properties = append(object.Properties, Property{Key: prop, Value: value})
		}

		objects = append(objects, object)
	}

	return ObjectsResult(objects, nil), nil
}

// Close is a no-op for the in-memory database.
func (store *EmbeddedStore) Close() error {
	return nil
}

func (store *EmbeddedStore) query(ctx context.Context, collection string, query string, limit int) ([]chromem.Result, error) {
	col := store.db.GetCollection(collection, store.embed)
	if col == nil {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	// chromem-go rejects nResults larger than the collection
	n := min(limit, col.Count())
	if n <= 0 {
		return nil, nil
	}

	results, err := col.Query(ctx, query, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}

	return results, nil
}

func metadataString(value any) string {
	if str, ok := value.(string); ok {
		return str
	}

	buf, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}

	return string(buf)
}
