package hive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://beekeeper-uk.hivehome.com/1.0"

// Client talks to the heating service's REST API.
//
// A 401 triggers one token refresh followed by one replay of the request.
// Concurrent 401s share a single refresh.
type Client struct {
	baseURL    string
	auth       Authenticator
	httpClient *http.Client

	refresh singleflight.Group

	mu    sync.RWMutex
	token string
}

// NewClient creates a client. baseURL is usually DefaultBaseURL.
func NewClient(baseURL string, auth Authenticator) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		auth:       auth,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Products lists every product.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	resp, err := c.do(ctx, http.MethodGet, "/products", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching products: %w", err)
	}
	var products []Product
	if err := json.Unmarshal(resp, &products); err != nil {
		return nil, fmt.Errorf("parsing products: %w", err)
	}
	return products, nil
}

// Devices lists every physical device.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	resp, err := c.do(ctx, http.MethodGet, "/devices", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching devices: %w", err)
	}
	var devices []Device
	if err := json.Unmarshal(resp, &devices); err != nil {
		return nil, fmt.Errorf("parsing devices: %w", err)
	}
	return devices, nil
}

// SetState writes state fields (mode, target, boost, status) to a product.
func (c *Client) SetState(ctx context.Context, productType, id string, state map[string]any) error {
	body, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}
	path := fmt.Sprintf("/nodes/%s/%s", productType, id)
	if _, err := c.do(ctx, http.MethodPost, path, body); err != nil {
		return fmt.Errorf("setting %s %s: %w", productType, id, err)
	}
	return nil
}

func (c *Client) currentToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	tok := c.token
	c.mu.RUnlock()
	if tok != "" {
		return tok, nil
	}
	tok, err := c.auth.Token(ctx)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
	return tok, nil
}

// refreshToken runs at most one refresh at a time; concurrent callers
// receive the same result.
func (c *Client) refreshToken(ctx context.Context) (string, error) {
	v, err, _ := c.refresh.Do("refresh", func() (any, error) {
		tok, err := c.auth.Refresh(ctx)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.token = tok
		c.mu.Unlock()
		return tok, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil //nolint:forcetypeassert // always a string
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	tok, err := c.currentToken(ctx)
	if err != nil {
		return nil, err
	}

	data, status, err := c.send(ctx, method, path, body, tok)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		if tok, err = c.refreshToken(ctx); err != nil {
			return nil, fmt.Errorf("refreshing session: %w", err)
		}
		if data, status, err = c.send(ctx, method, path, body, tok); err != nil {
			return nil, err
		}
		if status == http.StatusUnauthorized {
			return nil, ErrUnauthorized
		}
	}
	if status >= 400 {
		return nil, fmt.Errorf("hive API error %d: %s", status, string(data))
	}
	return data, nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte, token string) ([]byte, int, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("reading response: %w", err)
	}
	return data, resp.StatusCode, nil
}
