package bulkdata

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// ListArchives fetches the bulk-data directory index and returns the archive
// filenames it links to, sorted descending. The filenames embed the drop date
// so descending order processes the most recent drops first.
func (c *Client) ListArchives(ctx context.Context) ([]string, error) {
	body, err := c.httpClient.GetRaw(ctx, c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch directory index: %w", err)
	}

	links, err := ExtractArchiveLinks(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse directory index: %w", err)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(links)))
	return links, nil
}

// ExtractArchiveLinks parses an HTML directory listing and collects anchor
// hrefs pointing at zip archives.
func ExtractArchiveLinks(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" && strings.HasSuffix(attr.Val, ".zip") {
					links = append(links, attr.Val)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return links, nil
}
