// Package media implements the client for the external photo provider.
// The provider hosts the actual image bytes; this API only ever holds
// back-references (external id + url).
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tripfolio/tripfolio-api/internal/apperr"
	"github.com/tripfolio/tripfolio-api/internal/config"
	"github.com/tripfolio/tripfolio-api/internal/model"
)

// Searcher is the capability the photo service consumes. Results may lag
// the provider's true state; successive pages carry no consistency
// guarantee.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int, cursor string) (*model.SearchResponse, error)
}

// Client calls the provider over HTTP
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a provider client from configuration
func NewClient(cfg config.MediaConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type providerPhoto struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Format    string `json:"format"`
	CreatedAt string `json:"created_at"`
}

type providerPage struct {
	Photos []providerPhoto `json:"photos"`
	Next   string          `json:"next"`
}

// Search queries the provider by tag or folder. An empty returned cursor
// signals the last page. No retry is attempted; failures surface with
// provider detail attached.
func (c *Client) Search(ctx context.Context, query string, maxResults int, cursor string) (*model.SearchResponse, error) {
	params := url.Values{}
	params.Set("tag", query)
	params.Set("max", strconv.Itoa(maxResults))
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/photos?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, apperr.UpstreamGateway("build search request", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.UpstreamGateway("media provider unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperr.UpstreamGateway(
			fmt.Sprintf("media provider returned %d", resp.StatusCode),
			fmt.Errorf("%s", detail))
	}

	var page providerPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, apperr.UpstreamGateway("malformed provider payload", err)
	}

	out := &model.SearchResponse{
		Photos:     make([]model.PhotoDescriptor, 0, len(page.Photos)),
		NextCursor: page.Next,
	}
	for _, p := range page.Photos {
		out.Photos = append(out.Photos, model.PhotoDescriptor{
			ExternalID: p.ID,
			URL:        p.URL,
			Format:     p.Format,
			CreatedAt:  p.CreatedAt,
		})
	}
	return out, nil
}
