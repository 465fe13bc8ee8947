package retrieval

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/boneycanute/bare-bones-chat/internal/domain"
)

// topK is the number of snippets returned per query.
const topK = 3

// Embedder turns a query string into a vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Index runs a similarity search over embedded vectors.
type Index interface {
	Query(ctx context.Context, vector []float32, topK int, namespace string) ([]Match, error)
}

// OpenAIEmbedder embeds queries with the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewOpenAIEmbedder creates an embedder using the given model.
func NewOpenAIEmbedder(client *openai.Client, model string) *OpenAIEmbedder {
	return &OpenAIEmbedder{client: client, model: openai.EmbeddingModel(model)}
}

// EmbedQuery embeds a single query string.
func (e *OpenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no data")
	}
	return resp.Data[0].Embedding, nil
}

// Retriever fetches the most similar snippets for a query from a namespace.
type Retriever struct {
	embedder Embedder
	index    Index
}

// NewRetriever creates a retriever over an embedder and an index.
func NewRetriever(embedder Embedder, index Index) *Retriever {
	return &Retriever{embedder: embedder, index: index}
}

// Retrieve returns at most three snippets ranked by similarity. The snippet
// text is the stored content metadata field; matches without one yield empty
// text rather than an error. Any backend failure wraps to
// domain.RetrievalError and is terminal for the request.
func (r *Retriever) Retrieve(ctx context.Context, query, namespace string) ([]domain.Snippet, error) {
	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, &domain.RetrievalError{Err: err}
	}

	matches, err := r.index.Query(ctx, vector, topK, namespace)
	if err != nil {
		return nil, &domain.RetrievalError{Err: err}
	}

	snippets := make([]domain.Snippet, 0, len(matches))
	for i, m := range matches {
		content, _ := m.Metadata["content"].(string)
		snippets = append(snippets, domain.Snippet{Content: content, Source: i + 1})
	}
	return snippets, nil
}
