// Package dataapi is the REST client for the Youth Union Django API.
package dataapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"youthunion-chat/internal/common/auth"
	"youthunion-chat/internal/common/config"
	"youthunion-chat/internal/common/errors"
	commonhttp "youthunion-chat/internal/common/http"
	"youthunion-chat/internal/common/metrics"
	"youthunion-chat/internal/models"
)

const (
	collaborator = "data_api"

	// ActivitiesEndpoint is the paged activity collection.
	ActivitiesEndpoint = "/activities/"

	maxBodyBytes = 10 << 20
)

// TokenSource supplies bearer tokens. Invalidate is called after a 401.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

type Client struct {
	baseURL string
	http    *commonhttp.Client
	tokens  TokenSource
	logger  Logger
}

// New builds a client that logs in with the configured service account.
func New(cfg config.DataAPIConfig, log Logger) *Client {
	timeout := config.GetDuration(cfg.Timeout)
	tokens := auth.NewTokenClient(cfg.BaseURL, cfg.Username, cfg.Password, &http.Client{Timeout: timeout})
	return NewWithTokenSource(cfg.BaseURL, commonhttp.NewClient(timeout, commonhttp.WithMaxRetries(cfg.MaxRetries)), tokens, log)
}

func NewWithTokenSource(baseURL string, httpClient *commonhttp.Client, tokens TokenSource, log Logger) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{baseURL: baseURL, http: httpClient, tokens: tokens, logger: log}
}

// Fetch calls endpoint with params. An {id} placeholder in endpoint is
// filled from params["id"], which is then not sent as a query parameter.
// GET sends params in the query string, other methods as a JSON body.
func (c *Client) Fetch(ctx context.Context, endpoint, method string, params map[string]string) (json.RawMessage, error) {
	path, query, err := expandEndpoint(endpoint, params)
	if err != nil {
		return nil, errors.NewDataAPIRequestFailedError(endpoint, err)
	}
	if method == "" {
		method = http.MethodGet
	}

	var body []byte
	if method == http.MethodGet {
		path = withQuery(path, query)
	} else if len(query) > 0 {
		body, err = json.Marshal(query)
		if err != nil {
			return nil, errors.NewDataAPIRequestFailedError(endpoint, err)
		}
	}

	return c.do(ctx, method, path, body)
}

// FetchByID reads one record of collection, e.g. ("activities", "42").
func (c *Client) FetchByID(ctx context.Context, collection, id string) (json.RawMessage, error) {
	endpoint := "/" + strings.Trim(collection, "/") + "/{id}/"
	return c.Fetch(ctx, endpoint, http.MethodGet, map[string]string{"id": id})
}

// ListActivities reads one page of /activities/.
func (c *Client) ListActivities(ctx context.Context, opts models.ListOptions) (*models.ActivityList, error) {
	raw, err := c.Fetch(ctx, ActivitiesEndpoint, http.MethodGet, listParams(opts))
	if err != nil {
		return nil, err
	}

	var list models.ActivityList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, errors.NewDataAPIRequestFailedError(ActivitiesEndpoint, fmt.Errorf("decode activity list: %w", err))
	}
	return &list, nil
}

func listParams(opts models.ListOptions) map[string]string {
	params := map[string]string{}
	if opts.Page > 0 {
		params["page"] = strconv.Itoa(opts.Page)
	}
	if opts.PageSize > 0 {
		params["page_size"] = strconv.Itoa(opts.PageSize)
	}
	if opts.Search != "" {
		params["search"] = opts.Search
	}
	if opts.Type != "" {
		params["type"] = opts.Type
	}
	return params
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (json.RawMessage, error) {
	raw, status, err := c.send(ctx, method, path, body)
	if err == nil && status == http.StatusUnauthorized {
		c.logger.Warn("data api rejected token, re-authenticating", map[string]interface{}{
			"path": path,
		})
		c.tokens.Invalidate()
		raw, status, err = c.send(ctx, method, path, body)
	}

	if err == nil && (status < 200 || status > 299) {
		err = errors.NewDataAPIRequestFailedError(path, fmt.Errorf("status %d: %s", status, truncate(raw, 256)))
	}
	metrics.ObserveCollaborator(collaborator, err)

	if err != nil {
		c.logger.Error("data api request failed", map[string]interface{}{
			"method": method,
			"path":   path,
			"error":  err.Error(),
		})
		return nil, err
	}
	return raw, nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte) ([]byte, int, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, 0, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+strings.TrimPrefix(path, "/"), reader)
	if err != nil {
		return nil, 0, errors.NewDataAPIRequestFailedError(path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.DoWithRetry(ctx, req)
	if err != nil {
		if errors.IsTimeout(err) || ctx.Err() != nil {
			return nil, 0, errors.NewDataAPITimeoutError(path, err)
		}
		return nil, 0, errors.NewDataAPIRequestFailedError(path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if errors.IsTimeout(err) {
			return nil, 0, errors.NewDataAPITimeoutError(path, err)
		}
		return nil, 0, errors.NewDataAPIRequestFailedError(path, err)
	}
	return raw, resp.StatusCode, nil
}

func expandEndpoint(endpoint string, params map[string]string) (string, map[string]string, error) {
	query := make(map[string]string, len(params))
	for k, v := range params {
		query[k] = v
	}

	if !strings.Contains(endpoint, "{id}") {
		return endpoint, query, nil
	}
	id := query["id"]
	if id == "" {
		return "", nil, fmt.Errorf("endpoint %s needs an id", endpoint)
	}
	delete(query, "id")
	return strings.ReplaceAll(endpoint, "{id}", url.PathEscape(id)), query, nil
}

// withQuery appends params in key order.
func withQuery(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return path + "?" + values.Encode()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
