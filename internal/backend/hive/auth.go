package hive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Authenticator supplies session tokens. The interactive login (SRP and
// MFA) happens outside the hub; an Authenticator only holds and refreshes
// the resulting session.
type Authenticator interface {
	// Token returns the current access token.
	Token(ctx context.Context) (string, error)

	// Refresh obtains a new access token. Callers single-flight it.
	Refresh(ctx context.Context) (string, error)
}

// Session is the token pair persisted between restarts.
type Session struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// SessionAuth refreshes tokens against the service's refresh endpoint.
type SessionAuth struct {
	baseURL    string
	httpClient *http.Client

	mu      sync.RWMutex
	session Session

	// OnRefresh, if set, is called with each new session so it can be persisted.
	OnRefresh func(Session)
}

// NewSessionAuth creates an authenticator from an existing session.
func NewSessionAuth(baseURL string, s Session) *SessionAuth {
	return &SessionAuth{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		session:    s,
	}
}

// Token returns the current access token.
func (a *SessionAuth) Token(_ context.Context) (string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session.Token == "" {
		return "", ErrNoSession
	}
	return a.session.Token, nil
}

// Refresh exchanges the refresh token for a new access token.
func (a *SessionAuth) Refresh(ctx context.Context) (string, error) {
	a.mu.RLock()
	current := a.session
	a.mu.RUnlock()

	if current.RefreshToken == "" {
		return "", ErrNoSession
	}

	body, err := json.Marshal(map[string]string{
		"token":        current.Token,
		"refreshToken": current.RefreshToken,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/cognito/refresh-token", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending refresh request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading refresh response: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", fmt.Errorf("%w: refresh rejected", ErrUnauthorized)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("refresh error %d: %s", resp.StatusCode, string(data))
	}

	var next Session
	if err := json.Unmarshal(data, &next); err != nil {
		return "", fmt.Errorf("parsing refresh response: %w", err)
	}
	if next.RefreshToken == "" {
		next.RefreshToken = current.RefreshToken
	}

	a.mu.Lock()
	a.session = next
	a.mu.Unlock()

	if a.OnRefresh != nil {
		a.OnRefresh(next)
	}
	return next.Token, nil
}
