package publisher

import (
	"context"

	"github.com/idyllic-ai/trademark-indexer/internal/domain"
)

// Document is one entry in the external document index
type Document struct {
	ID   string
	Name string
	Type string
}

// Publisher defines the interface to the downstream document-indexing/RAG
// service. Chunking, embedding and retrieval are internal to that service.
type Publisher interface {
	// Publish sends one batch of feed records for indexing and returns the
	// number of documents the service accepted. Callers treat an accepted
	// count below the batch size as fatal.
	Publish(ctx context.Context, records []domain.FeedRecord, docType string) (int, error)
	// SearchDocuments looks up indexed documents by name query; an empty
	// query lists all documents of the type
	SearchDocuments(ctx context.Context, query string, docType string) ([]Document, error)
	// DeleteDocuments removes the documents with the given IDs
	DeleteDocuments(ctx context.Context, ids []string) error
}
