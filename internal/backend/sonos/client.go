package sonos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// DefaultBaseURL is the production control API root.
const DefaultBaseURL = "https://api.ws.sonos.com/control/api/v1"

// Endpoint is the authorisation server.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://api.sonos.com/login/v3/oauth",
	TokenURL: "https://api.sonos.com/login/v3/oauth/access",
}

// OAuthConfig builds the OAuth2 configuration for the control API.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     Endpoint,
		Scopes:       []string{"playback-control-all"},
	}
}

// Client talks to the control API. Tokens are refreshed by the oauth2
// transport; ReuseTokenSource keeps concurrent requests on one refresh.
type Client struct {
	baseURL    string
	tokens     oauth2.TokenSource
	httpClient *http.Client
}

// NewClient creates a client from an OAuth2 config and a stored token.
func NewClient(ctx context.Context, baseURL string, cfg *oauth2.Config, tok *oauth2.Token) *Client {
	return NewClientWithTokenSource(ctx, baseURL, oauth2.ReuseTokenSource(tok, cfg.TokenSource(ctx, tok)))
}

// NewClientWithTokenSource creates a client from any token source.
func NewClientWithTokenSource(ctx context.Context, baseURL string, ts oauth2.TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		tokens:     ts,
		httpClient: oauth2.NewClient(ctx, ts),
	}
}

// Token returns the current token, refreshing it if expired. Callers
// persist it so a restart does not need a new authorisation.
func (c *Client) Token() (*oauth2.Token, error) {
	tok, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("obtaining token: %w", err)
	}
	return tok, nil
}

// Households lists the account's households.
func (c *Client) Households(ctx context.Context) ([]Household, error) {
	var out struct {
		Households []Household `json:"households"`
	}
	if err := c.getJSON(ctx, "/households", &out); err != nil {
		return nil, fmt.Errorf("fetching households: %w", err)
	}
	return out.Households, nil
}

// Groups lists groups and players in a household.
func (c *Client) Groups(ctx context.Context, householdID string) (Groups, error) {
	var out Groups
	if err := c.getJSON(ctx, "/households/"+householdID+"/groups", &out); err != nil {
		return Groups{}, fmt.Errorf("fetching groups: %w", err)
	}
	return out, nil
}

// Metadata returns what a group is playing.
func (c *Client) Metadata(ctx context.Context, groupID string) (Metadata, error) {
	var out Metadata
	if err := c.getJSON(ctx, "/groups/"+groupID+"/playbackMetadata", &out); err != nil {
		return Metadata{}, fmt.Errorf("fetching metadata: %w", err)
	}
	return out, nil
}

// GroupVolume returns a group's volume.
func (c *Client) GroupVolume(ctx context.Context, groupID string) (Volume, error) {
	var out Volume
	if err := c.getJSON(ctx, "/groups/"+groupID+"/groupVolume", &out); err != nil {
		return Volume{}, fmt.Errorf("fetching volume: %w", err)
	}
	return out, nil
}

// Play starts playback on a group.
func (c *Client) Play(ctx context.Context, groupID string) error {
	return c.post(ctx, "/groups/"+groupID+"/playback/play", nil)
}

// Pause pauses playback on a group.
func (c *Client) Pause(ctx context.Context, groupID string) error {
	return c.post(ctx, "/groups/"+groupID+"/playback/pause", nil)
}

// SetGroupVolume sets a group's volume, 0-100.
func (c *Client) SetGroupVolume(ctx context.Context, groupID string, volume int) error {
	return c.post(ctx, "/groups/"+groupID+"/groupVolume", map[string]int{"volume": volume})
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
	}
	if _, err := c.do(ctx, http.MethodPost, path, body); err != nil {
		return err
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound && strings.HasPrefix(path, "/groups/") {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, path)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("sonos API error %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}
