package memory

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSelectProvider(t *testing.T) {
	Convey("Given embedding provider keys", t, func() {
		Convey("When only Cohere is configured", func() {
			provider, err := SelectProvider(Keys{Cohere: "co-key"})

			Convey("It should select Cohere", func() {
				So(err, ShouldBeNil)
				So(provider, ShouldEqual, ProviderCohere)
				So(provider.Vectorizer(), ShouldEqual, "text2vec-cohere")
			})
		})

		Convey("When both keys are configured", func() {
			provider, err := SelectProvider(Keys{OpenAI: "sk-key", Cohere: "co-key"})

			Convey("It should prefer OpenAI", func() {
				So(err, ShouldBeNil)
				So(provider, ShouldEqual, ProviderOpenAI)
				So(provider.Vectorizer(), ShouldEqual, "text2vec-openai")
			})
		})

		Convey("When no key is configured", func() {
			_, err := SelectProvider(Keys{})

			Convey("It should fail", func() {
				So(err, ShouldEqual, ErrNoEmbeddingProvider)
			})
		})
	})
}

func TestProviderHeaders(t *testing.T) {
	Convey("Given both provider keys", t, func() {
		headers := ProviderHeaders(Keys{OpenAI: "sk-key", Cohere: "co-key"})

		Convey("It should inject one header per provider", func() {
			So(headers, ShouldHaveLength, 2)
			So(headers["X-OpenAI-Api-Key"], ShouldEqual, "sk-key")
			So(headers["X-Cohere-Api-Key"], ShouldEqual, "co-key")
		})
	})

	Convey("Given no keys", t, func() {
		So(ProviderHeaders(Keys{}), ShouldBeEmpty)
	})
}

func TestSplitURL(t *testing.T) {
	Convey("Given database URLs", t, func() {
		Convey("An empty URL should target the local instance", func() {
			scheme, host, err := splitURL("", weaviateLocalHost)
			So(err, ShouldBeNil)
			So(scheme, ShouldEqual, "http")
			So(host, ShouldEqual, "localhost:8080")
		})

		Convey("A bare cluster host should default to https", func() {
			scheme, host, err := splitURL("my-cluster.weaviate.cloud/", weaviateLocalHost)
			So(err, ShouldBeNil)
			So(scheme, ShouldEqual, "https")
			So(host, ShouldEqual, "my-cluster.weaviate.cloud")
		})

		Convey("An explicit scheme should be kept", func() {
			scheme, host, err := splitURL("http://weaviate:8080", weaviateLocalHost)
			So(err, ShouldBeNil)
			So(scheme, ShouldEqual, "http")
			So(host, ShouldEqual, "weaviate:8080")
		})
	})
}

func TestSplitHostPort(t *testing.T) {
	Convey("Given Qdrant hosts", t, func() {
		host, port, err := splitHostPort("qdrant.internal:7000")
		So(err, ShouldBeNil)
		So(host, ShouldEqual, "qdrant.internal")
		So(port, ShouldEqual, 7000)

		host, port, err = splitHostPort("localhost")
		So(err, ShouldBeNil)
		So(host, ShouldEqual, "localhost")
		So(port, ShouldEqual, qdrantGRPCPort)
	})
}

func TestConnect(t *testing.T) {
	Convey("Given connection options", t, func() {
		Convey("When no embedding key is configured", func() {
			store, err := Connect(Options{Backend: BackendWeaviate, URL: "http://unreachable.invalid"})

			Convey("It should fail before dialing", func() {
				So(store, ShouldBeNil)
				So(err, ShouldEqual, ErrNoEmbeddingProvider)
			})
		})

		Convey("When the backend is unknown", func() {
			_, err := Connect(Options{Backend: "pinecone", Keys: Keys{OpenAI: "sk-key"}})

			Convey("It should name the backend", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "pinecone")
			})
		})

		Convey("When the embedded backend is selected", func() {
			store, err := Connect(Options{Backend: BackendEmbedded, Keys: Keys{OpenAI: "sk-key"}})

			Convey("It should return an embedded store", func() {
				So(err, ShouldBeNil)
				So(store, ShouldHaveSameTypeAs, &EmbeddedStore{})
				So(store.Close(), ShouldBeNil)
			})
		})
	})
}
