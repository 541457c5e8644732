package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a postcodes.io-compatible API. Full postcodes go through
// /postcodes/{pc}, outcodes through /outcodes/{oc}.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type postcodeResponse struct {
	Status int `json:"status"`
	Result struct {
		Latitude      float64 `json:"latitude"`
		Longitude     float64 `json:"longitude"`
		AdminDistrict string  `json:"admin_district"`
		AdminWard     string  `json:"admin_ward"`
		Country       string  `json:"country"`
	} `json:"result"`
}

type outcodeResponse struct {
	Status int `json:"status"`
	Result struct {
		Latitude      float64  `json:"latitude"`
		Longitude     float64  `json:"longitude"`
		AdminDistrict []string `json:"admin_district"`
		AdminWard     []string `json:"admin_ward"`
		Country       []string `json:"country"`
	} `json:"result"`
}

func (c *Client) Resolve(ctx context.Context, postcode string) (*Result, error) {
	normalized := NormalizePostcode(postcode)
	if normalized == "" {
		return nil, nil
	}

	if IsOutcode(normalized) {
		return c.resolveOutcode(ctx, normalized)
	}
	return c.resolvePostcode(ctx, normalized)
}

func (c *Client) resolvePostcode(ctx context.Context, postcode string) (*Result, error) {
	body, notFound, err := c.get(ctx, "/postcodes/"+url.PathEscape(postcode))
	if err != nil || notFound {
		return nil, err
	}

	var resp postcodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode postcode response: %w", err)
	}

	return &Result{
		Latitude:  resp.Result.Latitude,
		Longitude: resp.Result.Longitude,
		District:  resp.Result.AdminDistrict,
		Ward:      resp.Result.AdminWard,
		Country:   resp.Result.Country,
	}, nil
}

func (c *Client) resolveOutcode(ctx context.Context, outcode string) (*Result, error) {
	body, notFound, err := c.get(ctx, "/outcodes/"+url.PathEscape(outcode))
	if err != nil || notFound {
		return nil, err
	}

	var resp outcodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode outcode response: %w", err)
	}

	result := &Result{
		Latitude:  resp.Result.Latitude,
		Longitude: resp.Result.Longitude,
	}
	if len(resp.Result.AdminDistrict) > 0 {
		result.District = resp.Result.AdminDistrict[0]
	}
	if len(resp.Result.AdminWard) > 0 {
		result.Ward = resp.Result.AdminWard[0]
	}
	if len(resp.Result.Country) > 0 {
		result.Country = resp.Result.Country[0]
	}
	return result, nil
}

func (c *Client) get(ctx context.Context, path string) (body []byte, notFound bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, false, err
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("geocoder request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, true, nil
	}
	if res.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("geocoder returned status %d", res.StatusCode)
	}

	body, err = io.ReadAll(res.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read geocoder response: %w", err)
	}
	return body, false, nil
}
