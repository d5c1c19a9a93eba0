package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// APIClient talks to a roomchat server over REST and websocket.
type APIClient struct {
	serverURL   string
	baseURL     string
	httpClient  *http.Client
	accessToken string
}

type Option func(*APIClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *APIClient) { c.httpClient = hc }
}

// NewAPIClient checks that serverURL answers its health probe before returning.
func NewAPIClient(ctx context.Context, serverURL, token string, opts ...Option) (*APIClient, error) {
	serverURL = strings.TrimRight(serverURL, "/")
	c := &APIClient{
		serverURL:   serverURL,
		baseURL:     serverURL + "/api",
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		accessToken: token,
	}
	for _, opt := range opts {
		opt(c)
	}
	if _, err := c.get(ctx, "/health"); err != nil {
		return nil, fmt.Errorf("failed to connect to server at %s: %w", serverURL, err)
	}
	return c, nil
}

func (c *APIClient) SetToken(token string) {
	c.accessToken = token
}
