package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIClient wraps the HTTP client for the Meetscribe server.
type APIClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewAPIClient creates a client from the resolved config.
func NewAPIClient(cfg *Config) *APIClient {
	return &APIClient{
		BaseURL: cfg.ServerURL,
		HTTPClient: &http.Client{
			Timeout: 3 * time.Minute, // on-demand summarization can be slow
		},
	}
}

// Get sends a GET request.
func (c *APIClient) Get(path string) ([]byte, error) {
	return c.doRequest(http.MethodGet, path, nil)
}

// Request sends a request with a JSON body (POST/PUT/DELETE).
func (c *APIClient) Request(method, path string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	return c.doRequest(method, path, reader)
}

func (c *APIClient) doRequest(method, path string, body io.Reader) ([]byte, error) {
	url := c.BaseURL + path
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed (check SCRIBE_SERVER_URL=%s): %w", c.BaseURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(data))
	}

	return data, nil
}
