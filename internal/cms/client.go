// Package cms talks to the headless content store over its HTTP query and
// mutation API and adapts it to domain.Repository.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"equipbook/internal/config"
	"equipbook/internal/domain"
)

const maxErrorBody = 512

// Client speaks the data/query and data/mutate endpoints of one dataset.
type Client struct {
	baseURL    string
	dataset    string
	token      string
	httpClient *http.Client
}

// Mutation is one entry of a mutate request. Exactly one field is set.
type Mutation struct {
	Create map[string]interface{} `json:"create,omitempty"`
	Patch  *PatchMutation         `json:"patch,omitempty"`
	Delete *DeleteMutation        `json:"delete,omitempty"`
}

type PatchMutation struct {
	ID  string                 `json:"id"`
	Set map[string]interface{} `json:"set,omitempty"`
}

// DeleteMutation deletes either by id or by query.
type DeleteMutation struct {
	ID     string                 `json:"id,omitempty"`
	Query  string                 `json:"query,omitempty"`
	Params map[string]interface{} `json:"params,omitempty"`
}

type MutationResult struct {
	ID        string `json:"id"`
	Operation string `json:"operation"`
}

type mutateResponse struct {
	TransactionID string           `json:"transactionId"`
	Results       []MutationResult `json:"results"`
}

type queryRequest struct {
	Query  string                 `json:"query"`
	Params map[string]interface{} `json:"params,omitempty"`
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

// NewClient builds a client from the cms config section. BaseURL, when set,
// replaces the project host (local proxies, tests).
func NewClient(cfg config.CMSConfig) (*Client, error) {
	host := strings.TrimRight(cfg.BaseURL, "/")
	if host == "" {
		if cfg.ProjectID == "" {
			return nil, errors.New("cms project id is required")
		}
		host = fmt.Sprintf("https://%s.api.sanity.io", cfg.ProjectID)
	}
	if cfg.Dataset == "" {
		return nil, errors.New("cms dataset is required")
	}

	version := strings.TrimPrefix(cfg.APIVersion, "v")
	if version == "" {
		version = "2024-01-01"
	}

	return &Client{
		baseURL:    fmt.Sprintf("%s/v%s", host, version),
		dataset:    cfg.Dataset,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Fetch runs a query with params and decodes its result into out. A null
// result leaves out untouched.
func (c *Client) Fetch(ctx context.Context, query string, params map[string]interface{}, out interface{}) error {
	endpoint := fmt.Sprintf("%s/data/query/%s", c.baseURL, url.PathEscape(c.dataset))

	var resp queryResponse
	if err := c.doPost(ctx, endpoint, queryRequest{Query: query, Params: params}, &resp); err != nil {
		return err
	}
	if out == nil || len(resp.Result) == 0 || string(resp.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return domain.Upstream("decode query result", err)
	}
	return nil
}

// Mutate commits mutations as one transaction and waits until they are visible.
func (c *Client) Mutate(ctx context.Context, mutations ...Mutation) ([]MutationResult, error) {
	endpoint := fmt.Sprintf("%s/data/mutate/%s?returnIds=true&visibility=sync", c.baseURL, url.PathEscape(c.dataset))

	var resp mutateResponse
	body := struct {
		Mutations []Mutation `json:"mutations"`
	}{Mutations: mutations}
	if err := c.doPost(ctx, endpoint, body, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Create stores a new document and returns its id.
func (c *Client) Create(ctx context.Context, doc map[string]interface{}) (string, error) {
	results, err := c.Mutate(ctx, Mutation{Create: doc})
	if err != nil {
		return "", err
	}
	if len(results) == 0 || results[0].ID == "" {
		return "", domain.Upstream("create", errors.New("store returned no document id"))
	}
	return results[0].ID, nil
}

// Patch sets fields on an existing document.
func (c *Client) Patch(ctx context.Context, id string, set map[string]interface{}) error {
	_, err := c.Mutate(ctx, Mutation{Patch: &PatchMutation{ID: id, Set: set}})
	return err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.Mutate(ctx, Mutation{Delete: &DeleteMutation{ID: id}})
	return err
}

// DeleteByQuery deletes every document matching query.
func (c *Client) DeleteByQuery(ctx context.Context, query string, params map[string]interface{}) error {
	_, err := c.Mutate(ctx, Mutation{Delete: &DeleteMutation{Query: query, Params: params}})
	return err
}

func (c *Client) doPost(ctx context.Context, endpoint string, body interface{}, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Upstream(req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		// Transport 404s (wrong project or dataset) are store failures.
		statusErr := fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
		return domain.Upstream(req.URL.Path, statusErr)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.Upstream("decode response", err)
	}
	return nil
}
