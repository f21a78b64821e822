package main

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/mcp-server-weaviate/pkg/config"
	"github.com/theapemachine/mcp-server-weaviate/pkg/memory"
)

func constantEmbedding(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func TestRun(t *testing.T) {
	Convey("Given an embedded store with stale data", t, func() {
		ctx := context.Background()
		store := memory.NewEmbeddedStore(constantEmbedding)

		_, err := store.Insert(ctx, "Memories", map[string]any{"content": "stale"})
		So(err, ShouldBeNil)

		cfg := &config.Config{}
		cfg.Collections.Search = "Knowledge"
		cfg.Collections.Store = "Memories"
		cfg.Embedding.Cohere = "co-key"

		Convey("When provisioning", func() {
			err := run(ctx, cfg, store)

			Convey("Both collections should exist and be empty", func() {
				So(err, ShouldBeNil)

				for _, name := range []string{"Knowledge", "Memories"} {
					exists, err := store.CollectionExists(ctx, name)
					So(err, ShouldBeNil)
					So(exists, ShouldBeTrue)
				}

				items, err := store.NearText(ctx, "Memories", "stale", 10)
				So(err, ShouldBeNil)
				So(items, ShouldBeEmpty)
			})
		})

		Convey("When no embedding key is configured", func() {
			cfg.Embedding = memory.Keys{}
			err := run(ctx, cfg, store)

			Convey("It should fail before touching the store", func() {
				So(errors.Is(err, memory.ErrNoEmbeddingProvider), ShouldBeTrue)

				exists, _ := store.CollectionExists(ctx, "Knowledge")
				So(exists, ShouldBeFalse)
			})
		})
	})
}
