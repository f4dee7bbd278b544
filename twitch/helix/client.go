// Package helix provides a read-only client for the Twitch Helix stream endpoints
package helix

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Soypete/streambuddy/logging"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/oauth2/twitch"
)

const (
	baseURL = "https://api.twitch.tv/helix"
)

// Client is a Twitch Helix API client
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	logger     *logging.Logger
}

// NewAppClient creates a client authenticated with an app access token from
// the client credentials flow. Tokens are fetched and refreshed on demand.
func NewAppClient(ctx context.Context, clientID, clientSecret string, logger *logging.Logger) *Client {
	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     twitch.Endpoint.TokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	httpClient := conf.Client(ctx)
	httpClient.Timeout = 10 * time.Second
	return NewClient(httpClient, baseURL, clientID, logger)
}

// NewClient creates a client that sends requests with httpClient to base.
func NewClient(httpClient *http.Client, base, clientID string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if base == "" {
		base = baseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    base,
		clientID:   clientID,
		logger:     logger,
	}
}

// doRequest performs a GET request to the Twitch API
func (c *Client) doRequest(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	fullURL := c.baseURL + endpoint
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Client-Id", c.clientID)

	c.logger.Debug("making Twitch API request", "endpoint", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Twitch API error", "status", resp.StatusCode)
		return respBody, fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// StreamResponse represents the response from the Get Streams endpoint
type StreamResponse struct {
	Data []StreamData `json:"data"`
}

// StreamData represents a live stream from the Twitch API
type StreamData struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	UserLogin   string    `json:"user_login"`
	GameID      string    `json:"game_id"`
	GameName    string    `json:"game_name"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	ViewerCount int       `json:"viewer_count"`
	StartedAt   time.Time `json:"started_at"`
	Language    string    `json:"language"`
}

// GetStream returns the live stream for login, or nil when the channel is offline.
func (c *Client) GetStream(ctx context.Context, login string) (*StreamData, error) {
	query := url.Values{}
	query.Set("user_login", login)

	respBody, err := c.doRequest(ctx, "/streams", query)
	if err != nil {
		return nil, err
	}

	var resp StreamResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse stream response: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	return &resp.Data[0], nil
}
