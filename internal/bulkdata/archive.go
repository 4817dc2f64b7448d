package bulkdata

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/idyllic-ai/trademark-indexer/internal/adapter"
	"github.com/idyllic-ai/trademark-indexer/internal/domain"
	"github.com/idyllic-ai/trademark-indexer/internal/logger"
)

// Client downloads bulk-data archives from the USPTO directory index. Each
// archive is a zip holding exactly one XML file of matching base name.
type Client struct {
	httpClient adapter.HTTPClient
	baseURL    string
}

// NewClient creates a bulk-data client for the given directory index URL
func NewClient(httpClient adapter.HTTPClient, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// Open downloads the named archive and returns a reader over its inner XML
// entry. The zip format needs random access, so the archive is buffered in
// memory before the entry is opened.
func (c *Client) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	url := c.baseURL + "/" + filename

	logger.Info("Downloading bulk archive", zap.String("file", filename))
	data, err := c.httpClient.GetRaw(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to download archive %s: %w", filename, err)
	}
	logger.Info("Downloaded bulk archive", zap.String("file", filename), zap.Int("bytes", len(data)))

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", filename, err)
	}

	entryName := strings.TrimSuffix(filename, ".zip") + ".xml"
	for _, entry := range reader.File {
		if entry.Name == entryName {
			rc, err := entry.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open entry %s: %w", entryName, err)
			}
			return rc, nil
		}
	}

	return nil, fmt.Errorf("%w: %s in %s", domain.ErrEntryNotFound, entryName, filename)
}
