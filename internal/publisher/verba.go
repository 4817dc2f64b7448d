package publisher

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/idyllic-ai/trademark-indexer/internal/adapter"
	"github.com/idyllic-ai/trademark-indexer/internal/domain"
)

// Config holds the document-index client configuration
type Config struct {
	BaseURL      string
	ChunkUnits   int
	ChunkOverlap int
}

// verbaClient implements Publisher against a Verba-style document API
type verbaClient struct {
	httpClient adapter.HTTPClient
	config     Config
}

// NewVerbaClient creates a Publisher backed by a Verba-style document API
func NewVerbaClient(httpClient adapter.HTTPClient, config Config) Publisher {
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	if config.ChunkUnits == 0 {
		config.ChunkUnits = 100
	}
	if config.ChunkOverlap == 0 {
		config.ChunkOverlap = 25
	}
	return &verbaClient{httpClient: httpClient, config: config}
}

// loadPayload is the import request shape expected by the document API
type loadPayload struct {
	Reader       string   `json:"reader"`
	Chunker      string   `json:"chunker"`
	Embedder     string   `json:"embedder"`
	FileBytes    []string `json:"fileBytes"`
	FileNames    []string `json:"fileNames"`
	FilePath     string   `json:"filePath"`
	DocumentType string   `json:"document_type"`
	ChunkUnits   int      `json:"chunkUnits"`
	ChunkOverlap int      `json:"chunkOverlap"`
}

type loadResponse struct {
	Status        int `json:"status"`
	DocumentCount int `json:"document_count"`
	ChunkCount    int `json:"chunk_count"`
}

type documentsResponse struct {
	Documents []struct {
		Name       string `json:"doc_name"`
		Type       string `json:"doc_type"`
		Additional struct {
			ID string `json:"id"`
		} `json:"_additional"`
	} `json:"documents"`
}

// Publish sends one batch of feed records as base64 document bodies
func (c *verbaClient) Publish(ctx context.Context, records []domain.FeedRecord, docType string) (int, error) {
	payload := loadPayload{
		Reader:       "SimpleReader",
		Chunker:      "TokenChunker",
		Embedder:     "MiniLMEmbedder",
		FileBytes:    make([]string, 0, len(records)),
		FileNames:    make([]string, 0, len(records)),
		DocumentType: docType,
		ChunkUnits:   c.config.ChunkUnits,
		ChunkOverlap: c.config.ChunkOverlap,
	}
	for _, record := range records {
		body, err := record.JSONString()
		if err != nil {
			return 0, err
		}
		payload.FileBytes = append(payload.FileBytes, base64.StdEncoding.EncodeToString([]byte(body)))
		payload.FileNames = append(payload.FileNames, record.DocumentName())
	}

	var response loadResponse
	if err := c.post(ctx, "/api/load_data", payload, &response); err != nil {
		return 0, fmt.Errorf("failed to publish documents: %w", err)
	}
	if response.Status != http.StatusOK {
		return 0, fmt.Errorf("document API returned status %d", response.Status)
	}

	return response.DocumentCount, nil
}

// SearchDocuments looks up indexed documents by name query
func (c *verbaClient) SearchDocuments(ctx context.Context, query string, docType string) ([]Document, error) {
	endpoint := "/api/search_documents"
	if query == "" {
		endpoint = "/api/get_all_documents"
	}

	request := map[string]string{
		"query":    query,
		"doc_type": docType,
	}

	var response documentsResponse
	if err := c.post(ctx, endpoint, request, &response); err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}

	documents := make([]Document, 0, len(response.Documents))
	for _, doc := range response.Documents {
		documents = append(documents, Document{
			ID:   doc.Additional.ID,
			Name: doc.Name,
			Type: doc.Type,
		})
	}
	return documents, nil
}

// DeleteDocuments removes the documents with the given IDs
func (c *verbaClient) DeleteDocuments(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	request := map[string][]string{"document_ids": ids}
	if err := c.post(ctx, "/api/delete_many_documents", request, nil); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return nil
}

func (c *verbaClient) post(ctx context.Context, endpoint string, request interface{}, response interface{}) error {
	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	respBody, err := c.httpClient.Post(ctx, c.config.BaseURL+endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}

	if response != nil {
		if err := json.Unmarshal(respBody, response); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
