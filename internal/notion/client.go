// Package notion is a thin client for the Notion REST API, covering the three
// lookups the pipeline needs: the published-entry listing, an entry's child
// blocks and a table block's rows. Pagination is materialized before results
// are returned; retries and timeouts belong to the injected http.Client.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	DefaultBaseURL = "https://api.notion.com/v1"

	apiVersion = "2022-06-28"
	pageSize   = 100
)

type Client struct {
	BaseURL    string
	Token      string
	DatabaseID string
	HTTPClient *http.Client
}

func NewClient(token, databaseID string) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		Token:      token,
		DatabaseID: databaseID,
		HTTPClient: &http.Client{},
	}
}

type apiError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Notion-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("%s %s: %s (%s)", method, path, apiErr.Message, apiErr.Code)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

type checkboxCondition struct {
	Equals bool `json:"equals"`
}

type checkboxFilter struct {
	Property string            `json:"property"`
	Checkbox checkboxCondition `json:"checkbox"`
}

type queryRequest struct {
	Filter      checkboxFilter `json:"filter"`
	StartCursor string         `json:"start_cursor,omitempty"`
	PageSize    int            `json:"page_size,omitempty"`
}

type pageList struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// QueryPublished lists the database's entries whose Published checkbox is
// set, in the order the source returns them.
func (c *Client) QueryPublished(ctx context.Context) ([]Page, error) {
	var pages []Page
	cursor := ""
	for {
		req := queryRequest{
			Filter: checkboxFilter{
				Property: "Published",
				Checkbox: checkboxCondition{Equals: true},
			},
			StartCursor: cursor,
			PageSize:    pageSize,
		}

		var list pageList
		if err := c.do(ctx, http.MethodPost, "/databases/"+c.DatabaseID+"/query", req, &list); err != nil {
			return nil, fmt.Errorf("querying published entries: %w", err)
		}

		pages = append(pages, list.Results...)
		if !list.HasMore || list.NextCursor == "" {
			return pages, nil
		}
		cursor = list.NextCursor
	}
}

type blockList struct {
	Results    []Block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor string  `json:"next_cursor"`
}

// BlockChildren lists the child blocks of a page or block, fully materialized
// across pagination.
func (c *Client) BlockChildren(ctx context.Context, blockID string) ([]Block, error) {
	var blocks []Block
	cursor := ""
	for {
		params := url.Values{}
		params.Set("page_size", fmt.Sprint(pageSize))
		if cursor != "" {
			params.Set("start_cursor", cursor)
		}

		var list blockList
		path := "/blocks/" + blockID + "/children?" + params.Encode()
		if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
			return nil, fmt.Errorf("fetching children of block %s: %w", blockID, err)
		}

		blocks = append(blocks, list.Results...)
		if !list.HasMore || list.NextCursor == "" {
			return blocks, nil
		}
		cursor = list.NextCursor
	}
}

// TableRows lists the row children of a table block, preserving row order.
func (c *Client) TableRows(ctx context.Context, blockID string) ([]TableRow, error) {
	children, err := c.BlockChildren(ctx, blockID)
	if err != nil {
		return nil, err
	}

	var rows []TableRow
	for _, child := range children {
		if child.Type == "table_row" && child.TableRowPayload != nil {
			rows = append(rows, *child.TableRowPayload)
		}
	}
	return rows, nil
}
