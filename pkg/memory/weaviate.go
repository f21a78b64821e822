package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const weaviateLocalHost = "localhost:8080"

// WeaviateStore implements Store against a Weaviate instance. Vectorization
// happens server side, the embedding keys travel as request headers.
type WeaviateStore struct {
	client *weaviate.Client
}

// NewWeaviateStore creates a client for the instance at rawURL. An empty URL
// connects to a local instance.
func NewWeaviateStore(rawURL, apiKey string, keys Keys) (*WeaviateStore, error) {
	if _, err := SelectProvider(keys); err != nil {
		return nil, err
	}

	scheme, host, err := splitURL(rawURL, weaviateLocalHost)
	if err != nil {
		return nil, err
	}

	cfg := weaviate.Config{
		Host:    host,
		Scheme:  scheme,
		Headers: ProviderHeaders(keys),
	}

	if apiKey != "" {
		cfg.AuthConfig = auth.ApiKey{Value: apiKey}
	}

	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Weaviate client: %w", err)
	}

	return &WeaviateStore{client: client}, nil
}

// CollectionExists checks the schema for a class with the exact name
func (store *WeaviateStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	name = className(name)

	exists, err := store.client.Schema().ClassExistenceChecker().WithClassName(name).Do(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check collection %s: %w", name, err)
	}

	return exists, nil
}

// DeleteCollection drops the class and its objects
func (store *WeaviateStore) DeleteCollection(ctx context.Context, name string) error {
	name = className(name)

	if err := store.client.Schema().ClassDeleter().WithClassName(name).Do(ctx); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", name, err)
	}

	return nil
}

// CreateCollection creates a class with one text property and the provider's vectorizer
func (store *WeaviateStore) CreateCollection(ctx context.Context, spec CollectionSpec) error {
	class := &models.Class{
		Class:      className(spec.Name),
		Vectorizer: spec.Provider.Vectorizer(),
		Properties: []*models.Property{
			{
				Name:        ContentProperty,
				DataType:    []string{"text"},
				Description: spec.Description,
			},
		},
	}

	if err := store.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", spec.Name, err)
	}

	return nil
}

// Insert stores one object through the batch endpoint so auto-schema applies
// and per-object errors are reported.
func (store *WeaviateStore) Insert(ctx context.Context, collection string, properties map[string]any) (string, error) {
	collection = className(collection)

	resp, err := store.client.Batch().ObjectsBatcher().WithObjects(&models.Object{
		Class:      collection,
		Properties: properties,
	}).Do(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to insert object: %w", err)
	}

	var errs *multierror.Error
	for _, res := range resp {
		if res.Result != nil && res.Result.Errors != nil {
			for _, item := range res.Result.Errors.Error {
				errs = multierror.Append(errs, errors.New(item.Message))
			}
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return "", fmt.Errorf("failed to insert object: %w", err)
	}

	if len(resp) == 0 {
		return "", fmt.Errorf("failed to insert object: empty batch response")
	}

	return resp[0].ID.String(), nil
}

// NearText performs a semantic search over the content property
func (store *WeaviateStore) NearText(ctx context.Context, collection string, query string, limit int) ([]string, error) {
	collection = className(collection)

	nearText := store.client.GraphQL().NearTextArgBuilder().WithConcepts([]string{query})

	resp, err := store.client.GraphQL().Get().
		WithClassName(collection).
		WithFields(graphql.Field{Name: ContentProperty}).
		WithNearText(nearText).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", collection, err)
	}

	if err := graphQLError(collection, resp); err != nil {
		return nil, err
	}

	items, _ := getObjects(resp, collection)

	results := make([]string, 0, len(items))
	for _, item := range items {
		if content, ok := item[ContentProperty].(string); ok {
			results = append(results, content)
		}
	}

	return results, nil
}

// Hybrid runs a hybrid query returning the requested properties of each match
func (store *WeaviateStore) Hybrid(ctx context.Context, collection string, query string, limit int, properties []string) (HybridResult, error) {
	collection = className(collection)

	hybrid := &graphql.HybridArgumentBuilder{}
	hybrid.WithQuery(query)

	fields := make([]graphql.Field, 0, len(properties)+1)
	for _, prop := range properties {
		fields = append(fields, graphql.Field{Name: prop})
	}
	fields = append(fields, graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "id"}}})

	resp, err := store.client.GraphQL().Get().
		WithClassName(collection).
		WithHybrid(hybrid).
		WithFields(fields...).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return HybridResult{}, fmt.Errorf("failed to process query: %w", err)
	}

	if err := graphQLError(collection, resp); err != nil {
		return HybridResult{}, err
	}

	items, ok := getObjects(resp, collection)
	if !ok {
		buf, err := json.Marshal(resp)
		if err != nil {
			return HybridResult{}, fmt.Errorf("failed to marshal query response: %w", err)
		}
		return RawResult(string(buf)), nil
	}

	objects := make([]Object, 0, len(items))
	for _, item := range items {
		object := Object{Properties: make([]Property, 0, len(properties))}

		if additional, ok := item["_additional"].(map[string]any); ok {
			object.ID, _ = additional["id"].(string)
		}

		for _, prop := range properties {
			object.Properties = append(object.Properties, Property{Key: prop, Value: item[prop]})
		}

		objects = append(objects, object)
	}

	return ObjectsResult(objects, nil), nil
}

// Close is a no-op, the Weaviate client holds no long-lived connection.
func (store *WeaviateStore) Close() error {
	return nil
}

// className normalizes a collection name the way Weaviate stores classes:
// with an upper case first letter.
func className(name string) string {
	first, size := utf8.DecodeRuneInString(name)
	if first == utf8.RuneError {
		return name
	}

	return string(unicode.ToUpper(first)) + name[size:]
}

// graphQLError turns GraphQL level errors into a Go error. Querying a class
// that is not in the schema fails validation with "Cannot query field".
func graphQLError(collection string, resp *models.GraphQLResponse) error {
	if resp == nil || len(resp.Errors) == 0 {
		return nil
	}

	messages := make([]string, 0, len(resp.Errors))
	for _, gqlErr := range resp.Errors {
		if strings.Contains(gqlErr.Message, "Cannot query field") {
			return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
		}
		messages = append(messages, gqlErr.Message)
	}

	return fmt.Errorf("query on %s failed: %s", collection, strings.Join(messages, "; "))
}

// getObjects digs the object list out of data.Get.<collection>. The second
// return is false when the response does not have that shape.
func getObjects(resp *models.GraphQLResponse, collection string) ([]map[string]any, bool) {
	if resp == nil {
		return nil, false
	}

	get, ok := resp.Data["Get"].(map[string]any)
	if !ok {
		return nil, false
	}

	raw, ok := get[collection].([]any)
	if !ok {
		return nil, false
	}

	items := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		if item, ok := entry.(map[string]any); ok {
			items = append(items, item)
		}
	}

	return items, true
}
