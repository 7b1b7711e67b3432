// Package posts fetches the text content the automation types into the
// editor, from a JSONPlaceholder-style posts API.
package posts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the public JSONPlaceholder endpoint.
const DefaultBaseURL = "https://jsonplaceholder.typicode.com"

const requestTimeout = 10 * time.Second

// Post is one blog post as returned by the API.
type Post struct {
	UserID int    `json:"userId"`
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Validate reports whether the post has the fields the automation needs.
func (p Post) Validate() bool {
	return p.ID > 0 && strings.TrimSpace(p.Title) != "" && strings.TrimSpace(p.Body) != ""
}

// FormatContent renders the post in the layout typed into the editor.
func (p Post) FormatContent() string {
	return fmt.Sprintf("Title: %s\n\n%s\n", strings.TrimSpace(p.Title), strings.TrimSpace(p.Body))
}

// Client fetches posts over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the given base URL; empty selects
// DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// FetchPosts retrieves up to limit posts. A non-positive limit returns all
// posts the API serves.
func (c *Client) FetchPosts(ctx context.Context, limit int) ([]Post, error) {
	url := c.baseURL + "/posts"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch posts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("posts API returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var all []Post
	if err := json.NewDecoder(resp.Body).Decode(&all); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
