package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/boneycanute/bare-bones-chat/internal/domain"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return f.vector, f.err
}

type fakeIndex struct {
	matches []Match
	err     error

	gotTopK      int
	gotNamespace string
}

func (f *fakeIndex) Query(ctx context.Context, vector []float32, topK int, namespace string) ([]Match, error) {
	f.gotTopK = topK
	f.gotNamespace = namespace
	return f.matches, f.err
}

func TestRetrieveReadsContentMetadata(t *testing.T) {
	index := &fakeIndex{matches: []Match{
		{ID: "v1", Score: 0.9, Metadata: map[string]interface{}{"content": "first snippet"}},
		{ID: "v2", Score: 0.8, Metadata: map[string]interface{}{"content": "second snippet", "text": "decoy"}},
		{ID: "v3", Score: 0.7, Metadata: map[string]interface{}{"text": "wrong field only"}},
	}}
	r := NewRetriever(&fakeEmbedder{vector: []float32{0.1}}, index)

	snippets, err := r.Retrieve(context.Background(), "q", "ns1")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	if index.gotTopK != 3 {
		t.Fatalf("expected topK=3, got %d", index.gotTopK)
	}
	if index.gotNamespace != "ns1" {
		t.Fatalf("expected namespace ns1, got %q", index.gotNamespace)
	}
	if len(snippets) != 3 {
		t.Fatalf("expected 3 snippets, got %+v", snippets)
	}
	if snippets[0].Content != "first snippet" || snippets[0].Source != 1 {
		t.Fatalf("unexpected first snippet: %+v", snippets[0])
	}
	if snippets[1].Content != "second snippet" {
		t.Fatalf("snippet must read the content field: %+v", snippets[1])
	}
	// A match without a content field yields empty text, not an error.
	if snippets[2].Content != "" {
		t.Fatalf("expected empty content for v3, got %+v", snippets[2])
	}
}

func TestRetrieveWrapsEmbeddingError(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{err: errors.New("auth")}, &fakeIndex{})

	_, err := r.Retrieve(context.Background(), "q", "ns")
	var rerr *domain.RetrievalError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RetrievalError, got %v", err)
	}
}

func TestRetrieveWrapsIndexError(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{vector: []float32{1}}, &fakeIndex{err: errors.New("index down")})

	_, err := r.Retrieve(context.Background(), "q", "ns")
	var rerr *domain.RetrievalError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RetrievalError, got %v", err)
	}
}
