// Package embeds resolves URLs into embed metadata via an external
// resolver service.
package embeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/lukasmoran/accord/internal/models"
)

// Client calls the embed resolver over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a resolver client. baseURL points at the embed
// service, e.g. http://localhost:7070.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch resolves one URL into an embed. A URL the service cannot embed
// yields (nil, nil).
func (c *Client) Fetch(ctx context.Context, target string) (*models.Embed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/embed?url="+url.QueryEscape(target), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusUnprocessableEntity:
		return nil, nil
	default:
		return nil, fmt.Errorf("embed resolver returned %d", resp.StatusCode)
	}

	var embed models.Embed
	if err := json.NewDecoder(resp.Body).Decode(&embed); err != nil {
		return nil, fmt.Errorf("decoding embed: %w", err)
	}
	if embed.Type == "" {
		embed.Type = models.EmbedTypeWebsite
	}
	return &embed, nil
}
