package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
)

// Chunk is one retrieved document fragment, ranked by relevance.
type Chunk struct {
	ID        string
	Title     string
	Content   string
	Reference string
	Score     float64
}

// chunkSource mirrors the indexed document fields we read back.
type chunkSource struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Reference string `json:"reference"`
}

// Search runs a BM25 multi_match query against the index and returns up to
// size chunks, most relevant first.
func (c *Client) Search(ctx context.Context, query string, size int) ([]Chunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query string cannot be empty")
	}
	if size <= 0 {
		size = 5
	}
	if size > 100 {
		size = 100
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	body := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^2", "content"},
			},
		},
		"sort": []map[string]interface{}{
			{"_score": map[string]string{"order": "desc"}},
		},
	}

	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search body: %w", err)
	}

	req := &opensearchapi.SearchReq{
		Indices: []string{c.index},
		Body:    strings.NewReader(string(bodyJSON)),
	}

	resp, err := c.client.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w: %w", ErrUnavailable, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("received nil response from OpenSearch: %w", ErrUnavailable)
	}

	chunks := make([]Chunk, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		var source chunkSource
		if err := json.Unmarshal(hit.Source, &source); err != nil {
			continue
		}
		if source.Content == "" {
			continue
		}
		chunks = append(chunks, Chunk{
			ID:        hit.ID,
			Title:     source.Title,
			Content:   source.Content,
			Reference: source.Reference,
			Score:     float64(hit.Score),
		})
	}

	return chunks, nil
}
