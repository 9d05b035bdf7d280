package deviceapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_GetState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/v1/devices/dev-42/state" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("authorization = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"is_heating":    true,
			"heating_level": 21,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	st, err := c.GetState(context.Background(), "tok-1", "dev-42")
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if !st.IsHeating || st.HeatingLevel != 21 {
		t.Fatalf("state = %+v", st)
	}
}

func TestClient_SetLevelSendsBody(t *testing.T) {
	var got map[string]int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if err := c.SetLevel(context.Background(), "tok", "dev-1", 18); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	if got["level"] != 18 {
		t.Fatalf("body = %v, want level 18", got)
	}
}

func TestClient_TurnOnAndOffPaths(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if err := c.TurnOn(context.Background(), "tok", "dev-1"); err != nil {
		t.Fatalf("TurnOn: %v", err)
	}
	if err := c.TurnOff(context.Background(), "tok", "dev-1"); err != nil {
		t.Fatalf("TurnOff: %v", err)
	}
	if len(paths) != 2 || paths[0] != "/v1/devices/dev-1/heating/on" || paths[1] != "/v1/devices/dev-1/heating/off" {
		t.Fatalf("paths = %v", paths)
	}
}

func TestClient_RefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["grant_type"] != "refresh_token" || body["refresh_token"] != "old-refresh" || body["user_id"] != "u-7" {
			t.Errorf("body = %v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "new-access",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	before := time.Now()
	cred, err := c.RefreshToken(context.Background(), "old-refresh", "u-7")
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if cred.AccessToken != "new-access" {
		t.Fatalf("access token = %q", cred.AccessToken)
	}
	// Refresh token is kept when the API does not rotate it.
	if cred.RefreshToken != "old-refresh" {
		t.Fatalf("refresh token = %q", cred.RefreshToken)
	}
	if cred.ExpiresAt.Before(before.Add(59 * time.Minute)) {
		t.Fatalf("expiry %v too early", cred.ExpiresAt)
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	status := http.StatusServiceUnavailable
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", status)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)

	_, err := c.GetState(context.Background(), "tok", "dev")
	if err == nil {
		t.Fatalf("expected error on 503")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != status {
		t.Fatalf("expected APIError with status 503, got %v", err)
	}
	if !IsRetryable(err) {
		t.Fatalf("503 should be retryable")
	}

	status = http.StatusUnauthorized
	_, err = c.GetState(context.Background(), "tok", "dev")
	if IsRetryable(err) {
		t.Fatalf("401 should not be retryable")
	}
}

func TestClient_NetworkFailureIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(srv.URL, time.Second)
	_, err := c.GetState(context.Background(), "tok", "dev")
	if err == nil {
		t.Fatalf("expected connection error")
	}
	if !IsRetryable(err) {
		t.Fatalf("network failure should be retryable")
	}
}
