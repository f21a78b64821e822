// Package memory provides the vector database backends the server talks to.
package memory

import (
	"context"
	"errors"
)

// ContentProperty is the single text property every provisioned collection declares.
const ContentProperty = "content"

var (
	// ErrNoEmbeddingProvider is returned when neither embedding key is configured.
	ErrNoEmbeddingProvider = errors.New("either a Cohere or OpenAI API key must be provided")

	// ErrCollectionNotFound is returned when a query targets a collection that does not exist.
	ErrCollectionNotFound = errors.New("collection not found")
)

// CollectionSpec describes a collection to create.
type CollectionSpec struct {
	Name        string
	Description string // description of the content property
	Provider    Provider
}

// Property is one key/value pair of a returned object, kept in the order
// the backend produced it.
type Property struct {
	Key   string
	Value any
}

// Object is a single matched object of a hybrid query.
type Object struct {
	ID         string
	Properties []Property
}

// ResultKind tags which half of a HybridResult is populated.
type ResultKind int

const (
	ResultObjects ResultKind = iota
	ResultRaw
)

// HybridResult is what a backend returns from a hybrid query. Backends pick the
// kind explicitly: a list of objects (with an optional total count) when they
// could decode the response, or the raw response text when they could not.
type HybridResult struct {
	Kind       ResultKind
	Objects    []Object
	TotalCount *int64
	Raw        string
}

// ObjectsResult builds an object-shaped hybrid result.
func ObjectsResult(objects []Object, total *int64) HybridResult {
	return HybridResult{Kind: ResultObjects, Objects: objects, TotalCount: total}
}

// RawResult builds a raw hybrid result.
func RawResult(raw string) HybridResult {
	return HybridResult{Kind: ResultRaw, Raw: raw}
}

// Schema defines the collection management operations used by provisioning
type Schema interface {
	// CollectionExists reports whether a collection with the exact name exists
	CollectionExists(ctx context.Context, name string) (bool, error)

	// DeleteCollection drops the collection and all of its objects
	DeleteCollection(ctx context.Context, name string) error

	// CreateCollection creates a collection with a single text property
	CreateCollection(ctx context.Context, spec CollectionSpec) error
}

// VectorStore defines the interface for vector database operations
type VectorStore interface {
	// Insert stores one object and returns its id
	Insert(ctx context.Context, collection string, properties map[string]any) (string, error)

	// NearText performs a semantic search and returns the content property of each match
	NearText(ctx context.Context, collection string, query string, limit int) ([]string, error)

	// Hybrid runs a combined lexical and vector query
	Hybrid(ctx context.Context, collection string, query string, limit int, properties []string) (HybridResult, error)
}

// Store is a connected backend: both halves plus a way to release it.
type Store interface {
	Schema
	VectorStore
	Close() error
}
