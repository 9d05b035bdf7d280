// Package deviceapi is the HTTP client for the device cloud: reading the
// current heating state, issuing on/off/level commands, and refreshing
// expired access tokens. It performs single attempts only; retry policy
// belongs to the caller.
package deviceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"warmbed/internal/models"
)

const defaultTimeout = 10 * time.Second

// Client talks to the device cloud API over HTTPS with bearer tokens.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for the given API base URL, e.g.
// "https://api.climate.example.com". A zero timeout uses the default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetState fetches the observed heating state of a device.
func (c *Client) GetState(ctx context.Context, token, deviceID string) (models.DeviceState, error) {
	var st models.DeviceState
	path := fmt.Sprintf("/v1/devices/%s/state", deviceID)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &st); err != nil {
		return models.DeviceState{}, fmt.Errorf("get state for device %s: %w", deviceID, err)
	}
	return st, nil
}

// TurnOn starts heating on the device.
func (c *Client) TurnOn(ctx context.Context, token, deviceID string) error {
	path := fmt.Sprintf("/v1/devices/%s/heating/on", deviceID)
	if err := c.do(ctx, http.MethodPost, path, token, nil, nil); err != nil {
		return fmt.Errorf("turn on device %s: %w", deviceID, err)
	}
	return nil
}

// TurnOff stops heating on the device.
func (c *Client) TurnOff(ctx context.Context, token, deviceID string) error {
	path := fmt.Sprintf("/v1/devices/%s/heating/off", deviceID)
	if err := c.do(ctx, http.MethodPost, path, token, nil, nil); err != nil {
		return fmt.Errorf("turn off device %s: %w", deviceID, err)
	}
	return nil
}

// SetLevel sets the device's target heating level.
func (c *Client) SetLevel(ctx context.Context, token, deviceID string, level int) error {
	path := fmt.Sprintf("/v1/devices/%s/heating/level", deviceID)
	body := map[string]int{"level": level}
	if err := c.do(ctx, http.MethodPut, path, token, body, nil); err != nil {
		return fmt.Errorf("set level %d on device %s: %w", level, deviceID, err)
	}
	return nil
}

// refreshResponse is the token endpoint payload.
type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // seconds
}

// RefreshToken exchanges a refresh token for a fresh credential. The new
// refresh token falls back to the old one when the API does not rotate it.
func (c *Client) RefreshToken(ctx context.Context, refreshToken, userID string) (models.DeviceCredential, error) {
	body := map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
		"user_id":       userID,
	}
	var resp refreshResponse
	if err := c.do(ctx, http.MethodPost, "/v1/oauth/token", "", body, &resp); err != nil {
		return models.DeviceCredential{}, fmt.Errorf("refresh token for user %s: %w", userID, err)
	}
	if resp.AccessToken == "" {
		return models.DeviceCredential{}, fmt.Errorf("refresh token for user %s: empty access token in response", userID)
	}
	if resp.RefreshToken == "" {
		resp.RefreshToken = refreshToken
	}
	return models.DeviceCredential{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}, nil
}

// do performs one JSON request/response round trip. A nil out skips body
// decoding; a nil in sends no body.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{StatusCode: 0, Message: "request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Keep a short excerpt of the body for the log line.
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(excerpt))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response body: %w", err)
		}
	}
	return nil
}
