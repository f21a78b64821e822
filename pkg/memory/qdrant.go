package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
	sdk "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	qdrantLocalHost = "localhost"
	qdrantGRPCPort  = 6334
)

// QdrantStore implements Store for Qdrant. Qdrant has no server-side
// vectorizer, so texts are embedded client side.
type QdrantStore struct {
	client     *sdk.Client
	embed      chromem.EmbeddingFunc
	dimensions int
}

// NewQdrantStore creates a new vector store using Qdrant
func NewQdrantStore(rawURL, apiKey string, embed chromem.EmbeddingFunc, dimensions int) (*QdrantStore, error) {
	scheme, host, err := splitURL(rawURL, qdrantLocalHost)
	if err != nil {
		return nil, err
	}

	hostname, port, err := splitHostPort(host)
	if err != nil {
		return nil, err
	}

	client, err := sdk.NewClient(&sdk.Config{
		Host:                   hostname,
		Port:                   port,
		APIKey:                 apiKey,
		UseTLS:                 scheme == "https",
		SkipCompatibilityCheck: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{
		client:     client,
		embed:      embed,
		dimensions: dimensions,
	}, nil
}

// CollectionExists asks Qdrant whether the collection exists
func (store *QdrantStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	exists, err := store.client.CollectionExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to check collection %s: %w", name, err)
	}

	return exists, nil
}

// DeleteCollection drops the collection
func (store *QdrantStore) DeleteCollection(ctx context.Context, name string) error {
	if err := store.client.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", name, err)
	}

	return nil
}

// CreateCollection creates a cosine collection sized for the embedder and a
// full-text index on the content payload, which the hybrid query filters on.
func (store *QdrantStore) CreateCollection(ctx context.Context, spec CollectionSpec) error {
	defaultSegmentNumber := uint64(2)

	err := store.client.CreateCollection(ctx, &sdk.CreateCollection{
		CollectionName: spec.Name,
		VectorsConfig: sdk.NewVectorsConfig(&sdk.VectorParams{
			Size:     uint64(store.dimensions),
			Distance: sdk.Distance_Cosine,
		}),
		OptimizersConfig: &sdk.OptimizersConfigDiff{
			DefaultSegmentNumber: &defaultSegmentNumber,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", spec.Name, err)
	}

	wait := true
	if _, err := store.client.CreateFieldIndex(ctx, &sdk.CreateFieldIndexCollection{
		CollectionName: spec.Name,
		Wait:           &wait,
		FieldName:      ContentProperty,
		FieldType:      sdk.FieldType_FieldTypeText.Enum(),
	}); err != nil {
		return fmt.Errorf("failed to index collection %s: %w", spec.Name, err)
	}

	return nil
}

// Insert embeds the object's text and upserts it as a new point
func (store *QdrantStore) Insert(ctx context.Context, collection string, properties map[string]any) (string, error) {
	text, err := embeddingText(properties)
	if err != nil {
		return "", err
	}

	vector, err := store.embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("failed to embed object: %w", err)
	}

	id := uuid.NewString()
	waitUpsert := true

	_, err = store.client.Upsert(ctx, &sdk.UpsertPoints{
		CollectionName: collection,
		Wait:           &waitUpsert,
		Points: []*sdk.PointStruct{
			{
				Id:      sdk.NewID(id),
				Vectors: sdk.NewVectors(vector...),
				Payload: sdk.NewValueMap(properties),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upsert point: %w", qdrantError(collection, err))
	}

	return id, nil
}

// NearText performs a semantic search for similar texts
func (store *QdrantStore) NearText(ctx context.Context, collection string, query string, limit int) ([]string, error) {
	vector, err := store.embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	top := uint64(limit)
	searchedPoints, err := store.client.Query(ctx, &sdk.QueryPoints{
		CollectionName: collection,
		Query:          sdk.NewQuery(vector...),
		Limit:          &top,
		WithPayload:    sdk.NewWithPayloadInclude(ContentProperty),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", qdrantError(collection, err))
	}

	var results []string

	for _, point := range searchedPoints {
		if content, ok := point.Payload[ContentProperty]; ok {
			if contentStr := content.GetStringValue(); contentStr != "" {
				results = append(results, contentStr)
			}
		}
	}

	return results, nil
}

// Hybrid fuses a plain vector query with a vector query restricted to points
// whose content matches the query text, using Qdrant's reciprocal rank fusion.
// The total count is the number of lexical matches.
func (store *QdrantStore) Hybrid(ctx context.Context, collection string, query string, limit int, properties []string) (HybridResult, error) {
	vector, err := store.embed(ctx, query)
	if err != nil {
		return HybridResult{}, fmt.Errorf("failed to embed query: %w", err)
	}

	top := uint64(limit)
	textFilter := &sdk.Filter{
		Must: []*sdk.Condition{sdk.NewMatchText(ContentProperty, query)},
	}

	points, err := store.client.Query(ctx, &sdk.QueryPoints{
		CollectionName: collection,
		Prefetch: []*sdk.PrefetchQuery{
			{Query: sdk.NewQuery(vector...), Limit: &top},
			{Query: sdk.NewQuery(vector...), Filter: textFilter, Limit: &top},
		},
		Query:       sdk.NewQueryFusion(sdk.Fusion_RRF),
		Limit:       &top,
		WithPayload: sdk.NewWithPayloadInclude(properties...),
	})
	if err != nil {
		return HybridResult{}, fmt.Errorf("failed to process query: %w", qdrantError(collection, err))
	}

	exact := true
	total, err := store.client.Count(ctx, &sdk.CountPoints{
		CollectionName: collection,
		Filter:         textFilter,
		Exact:          &exact,
	})
	if err != nil {
		return HybridResult{}, fmt.Errorf("failed to count matches: %w", qdrantError(collection, err))
	}

	objects := make([]Object, 0, len(points))
	for _, point := range points {
		object := Object{
			ID:         point.GetId().GetUuid(),
			Properties: make([]Property, 0, len(properties)),
		}

		for _, prop := range properties {
			var value any
			if v, ok := point.Payload[prop]; ok {
				value = payloadString(v)
			}
			object.Properties = append(object.Properties, Property{Key: prop, Value: value})
		}

		objects = append(objects, object)
	}

	count := int64(total)
	return ObjectsResult(objects, &count), nil
}

// Close releases the gRPC connection
func (store *QdrantStore) Close() error {
	return store.client.Close()
}

// qdrantError maps a missing collection onto ErrCollectionNotFound.
func qdrantError(collection string, err error) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	return err
}

// embeddingText picks the text to embed: the content property when present,
// otherwise the JSON form of all properties.
func embeddingText(properties map[string]any) (string, error) {
	if content, ok := properties[ContentProperty].(string); ok && content != "" {
		return content, nil
	}

	buf, err := json.Marshal(properties)
	if err != nil {
		return "", fmt.Errorf("failed to encode properties: %w", err)
	}

	return string(buf), nil
}

func payloadString(v *sdk.Value) string {
	switch kind := v.GetKind().(type) {
	case *sdk.Value_StringValue:
		return kind.StringValue
	case *sdk.Value_IntegerValue:
		return strconv.FormatInt(kind.IntegerValue, 10)
	case *sdk.Value_DoubleValue:
		return strconv.FormatFloat(kind.DoubleValue, 'g', -1, 64)
	case *sdk.Value_BoolValue:
		return strconv.FormatBool(kind.BoolValue)
	case *sdk.Value_NullValue:
		return "null"
	default:
		return v.String()
	}
}

func splitHostPort(host string) (string, int, error) {
	hostname, rawPort, err := net.SplitHostPort(host)
	if err != nil {
		// no port in the address
		return host, qdrantGRPCPort, nil
	}

	port, err := strconv.Atoi(rawPort)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q: %w", rawPort, err)
	}

	return hostname, port, nil
}
