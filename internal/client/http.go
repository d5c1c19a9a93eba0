package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	StatusCode int
	Message    string
	Kind       string
	Retryable  bool
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func IsStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == status
}

func (c *APIClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.doRequest(req)
}

func (c *APIClient) post(ctx context.Context, path string, data any) ([]byte, error) {
	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(jsonData)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	return c.doRequest(req)
}

func (c *APIClient) doRequest(req *http.Request) ([]byte, error) {
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
		var payload struct {
			Error     string `json:"error"`
			Kind      string `json:"kind"`
			Retryable bool   `json:"retryable"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
			httpErr.Message, httpErr.Kind, httpErr.Retryable = payload.Error, payload.Kind, payload.Retryable
		}
		return nil, httpErr
	}
	return body, nil
}

func decode[T any](body []byte, err error, field string) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return zero, err
	}
	raw, ok := envelope[field]
	if !ok {
		return zero, fmt.Errorf("response has no %q field", field)
	}
	var out T
	err = json.Unmarshal(raw, &out)
	return out, err
}
