package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"vnotes/internal/errors"
)

// API is the slice of the document service the synchronizer depends on.
// The pure upsert logic is tested against an in-memory implementation.
type API interface {
	SearchPages(ctx context.Context, query string) ([]Page, error)
	CreatePage(ctx context.Context, parentID, title string, children []Block) (*Page, error)
	ListChildren(ctx context.Context, blockID string) ([]Block, error)
	AppendChildren(ctx context.Context, blockID string, children []Block) error
	UpdateBlock(ctx context.Context, blockID string, block Block) error
}

// rate-limit retry bounds: transient 429s are retried with doubling delay,
// anything else surfaces immediately.
const (
	maxRateLimitRetries = 3
	initialRetryDelay   = time.Second
)

// Client talks to the planner document service over its HTTP JSON API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client

	// sleep is injectable so rate-limit retry tests run instantly.
	sleep func(time.Duration)
}

var _ API = (*Client)(nil)

// NewClient builds a client for the document service.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		sleep:   time.Sleep,
	}
}

// do sends one API request, retrying on 429 with doubling delay.
func (c *Client) do(ctx context.Context, method, path string, payload, result any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return errors.NewInternal(err)
		}
	}

	delay := initialRetryDelay
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return errors.NewInternal(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return errors.NewSync(fmt.Sprintf("%s %s: %v", method, path, err))
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRateLimitRetries {
			resp.Body.Close()
			c.sleep(delay)
			delay *= 2
			continue
		}

		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			b, _ := io.ReadAll(resp.Body)
			return errors.NewSync(fmt.Sprintf("%s %s: http %d: %s", method, path, resp.StatusCode, string(b)))
		}

		if result != nil {
			if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
				return errors.NewSync(fmt.Sprintf("%s %s: decode: %v", method, path, err))
			}
		}
		return nil
	}
}

// SearchPages runs a title search and returns the matching pages.
func (c *Client) SearchPages(ctx context.Context, query string) ([]Page, error) {
	var out struct {
		Results []Page `json:"results"`
	}
	payload := map[string]string{"query": query}
	if err := c.do(ctx, http.MethodPost, "/search", payload, &out); err != nil {
		return nil, err
	}

	// Drop archived pages so a deleted journal page can be recreated.
	pages := out.Results[:0]
	for _, p := range out.Results {
		if !p.Archived {
			pages = append(pages, p)
		}
	}
	return pages, nil
}

// CreatePage creates a page titled title under the given parent page.
func (c *Client) CreatePage(ctx context.Context, parentID, title string, children []Block) (*Page, error) {
	payload := map[string]any{
		"parent": map[string]string{"type": "page_id", "page_id": parentID},
		"properties": map[string]any{
			"title": map[string]any{
				"type":  "title",
				"title": []RichText{PlainText(title)},
			},
		},
	}
	if len(children) > 0 {
		payload["children"] = children
	}

	var page Page
	if err := c.do(ctx, http.MethodPost, "/pages", payload, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListChildren returns all direct child blocks of a page or block,
// following pagination.
func (c *Client) ListChildren(ctx context.Context, blockID string) ([]Block, error) {
	var blocks []Block
	cursor := ""
	for {
		path := "/blocks/" + blockID + "/children?page_size=100"
		if cursor != "" {
			path += "&start_cursor=" + cursor
		}

		var out struct {
			Results    []Block `json:"results"`
			HasMore    bool    `json:"has_more"`
			NextCursor string  `json:"next_cursor"`
		}
		if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
			return nil, err
		}
		blocks = append(blocks, out.Results...)
		if !out.HasMore || out.NextCursor == "" {
			return blocks, nil
		}
		cursor = out.NextCursor
	}
}

// AppendChildren appends blocks to the end of a page or block.
func (c *Client) AppendChildren(ctx context.Context, blockID string, children []Block) error {
	if len(children) == 0 {
		return nil
	}
	payload := map[string]any{"children": children}
	return c.do(ctx, http.MethodPatch, "/blocks/"+blockID+"/children", payload, nil)
}

// UpdateBlock replaces a block's content in place.
func (c *Client) UpdateBlock(ctx context.Context, blockID string, block Block) error {
	payload := map[string]any{block.Type: payloadOf(block)}
	return c.do(ctx, http.MethodPatch, "/blocks/"+blockID, payload, nil)
}

// payloadOf returns the type-specific payload of a block.
func payloadOf(b Block) any {
	switch b.Type {
	case TypeParagraph:
		return b.Paragraph
	case TypeHeading1:
		return b.Heading1
	case TypeToDo:
		return b.ToDo
	}
	return nil
}
