package searchindex

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
	"time"
)

var ErrMissingObjectID = errors.New("searchindex: object is missing objectID")

// HTTPIndex talks to the hosted index service over its JSON API:
//
//	POST   /1/indexes/{name}/query
//	PUT    /1/indexes/{name}/{objectID}
//	DELETE /1/indexes/{name}/{objectID}
//	GET    /1/indexes/{name}/browse
type HTTPIndex struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPIndex(baseURL string) *HTTPIndex {
	return &HTTPIndex{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (h *HTTPIndex) Search(ctx context.Context, indexName string, q Query) (*Result, error) {
	var result Result
	err := h.do(ctx, http.MethodPost, h.indexPath(indexName)+"/query", q, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (h *HTTPIndex) SaveObject(ctx context.Context, indexName string, object map[string]any) error {
	objectID, _ := object["objectID"].(string)
	if objectID == "" {
		return ErrMissingObjectID
	}
	return h.do(ctx, http.MethodPut, h.indexPath(indexName)+"/"+url.PathEscape(objectID), object, nil)
}

func (h *HTTPIndex) DeleteObject(ctx context.Context, indexName, objectID string) error {
	return h.do(ctx, http.MethodDelete, h.indexPath(indexName)+"/"+url.PathEscape(objectID), nil, nil)
}

func (h *HTTPIndex) BrowseAll(ctx context.Context, indexName string) ([]map[string]any, error) {
	var browse struct {
		Hits []map[string]any `json:"hits"`
	}
	if err := h.do(ctx, http.MethodGet, h.indexPath(indexName)+"/browse", nil, &browse); err != nil {
		return nil, err
	}
	return browse.Hits, nil
}

func (h *HTTPIndex) indexPath(indexName string) string {
	return "/1/indexes/" + url.PathEscape(indexName)
}

func (h *HTTPIndex) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode index payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("index request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("index returned status %d: %s", res.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode index response: %w", err)
	}
	return nil
}
