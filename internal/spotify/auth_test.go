package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func newTokenServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(srv.Close)
	return srv
}

func TestExchange(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		response map[string]any
		wantErr  error
	}{
		{
			name:   "success",
			status: http.StatusOK,
			response: map[string]any{
				"access_token":  "T1",
				"refresh_token": "R1",
				"expires_in":    3600,
				"token_type":    "Bearer",
			},
			wantErr: nil,
		},
		{
			name:   "remote error field",
			status: http.StatusBadRequest,
			response: map[string]any{
				"error":             "invalid_grant",
				"error_description": "Invalid authorization code",
			},
			wantErr: ErrRemoteRejected,
		},
		{
			name:   "missing refresh token",
			status: http.StatusOK,
			response: map[string]any{
				"access_token": "T1",
				"expires_in":   3600,
			},
			wantErr: ErrRemoteRejected,
		},
		{
			name:   "missing access token",
			status: http.StatusOK,
			response: map[string]any{
				"refresh_token": "R1",
				"expires_in":    3600,
			},
			wantErr: ErrRemoteRejected,
		},
		{
			name:   "missing expiry",
			status: http.StatusOK,
			response: map[string]any{
				"access_token":  "T1",
				"refresh_token": "R1",
			},
			wantErr: ErrRemoteRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotForm url.Values
			srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
				user, pass, ok := r.BasicAuth()
				if !ok || user != "cid" || pass != "csecret" {
					t.Errorf("basic auth = %q:%q ok=%v, want cid:csecret", user, pass, ok)
				}
				if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
					t.Errorf("Content-Type = %q", ct)
				}
				if err := r.ParseForm(); err != nil {
					t.Fatalf("parsing form: %v", err)
				}
				gotForm = r.PostForm

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(tt.response)
			})

			auth := NewAuthenticator("cid", "csecret", "http://127.0.0.1/callback", WithTokenURL(srv.URL))

			before := time.Now()
			token, err := auth.Exchange(context.Background(), "C1")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Exchange() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}

			if gotForm.Get("grant_type") != "authorization_code" {
				t.Errorf("grant_type = %q", gotForm.Get("grant_type"))
			}
			if gotForm.Get("code") != "C1" {
				t.Errorf("code = %q", gotForm.Get("code"))
			}
			if gotForm.Get("redirect_uri") != "http://127.0.0.1/callback" {
				t.Errorf("redirect_uri = %q", gotForm.Get("redirect_uri"))
			}

			if token.AccessToken != "T1" || token.RefreshToken != "R1" {
				t.Errorf("token = %q/%q, want T1/R1", token.AccessToken, token.RefreshToken)
			}
			wantExpiry := before.Add(3600 * time.Second)
			if token.Expiry.Before(wantExpiry.Add(-time.Minute)) || token.Expiry.After(wantExpiry.Add(time.Minute)) {
				t.Errorf("Expiry = %v, want ~%v", token.Expiry, wantExpiry)
			}
		})
	}
}

func TestExchangeNonJSONResponse(t *testing.T) {
	srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>gateway error</html>"))
	})

	auth := NewAuthenticator("cid", "csecret", "http://127.0.0.1/callback", WithTokenURL(srv.URL))

	_, err := auth.Exchange(context.Background(), "C1")
	if !errors.Is(err, ErrRemoteRejected) {
		t.Fatalf("Exchange() error = %v, want ErrRemoteRejected", err)
	}
}

func TestRefresh(t *testing.T) {
	srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parsing form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.PostForm.Get("refresh_token"); got != "R1" {
			t.Errorf("refresh_token = %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		// Refresh responses omit refresh_token.
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "T2",
			"expires_in":   3600,
		})
	})

	auth := NewAuthenticator("cid", "csecret", "http://127.0.0.1/callback", WithTokenURL(srv.URL))

	token, err := auth.Refresh(context.Background(), "R1")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if token.AccessToken != "T2" {
		t.Errorf("AccessToken = %q, want T2", token.AccessToken)
	}
	// The original refresh token remains valid and must be preserved.
	if token.RefreshToken != "R1" {
		t.Errorf("RefreshToken = %q, want R1", token.RefreshToken)
	}
}

func TestRefreshIncomplete(t *testing.T) {
	srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"expires_in": 3600})
	})

	auth := NewAuthenticator("cid", "csecret", "http://127.0.0.1/callback", WithTokenURL(srv.URL))

	_, err := auth.Refresh(context.Background(), "R1")
	if !errors.Is(err, ErrRemoteRejected) {
		t.Fatalf("Refresh() error = %v, want ErrRemoteRejected", err)
	}
}

func TestAuthURL(t *testing.T) {
	auth := NewAuthenticator("cid", "csecret", "http://127.0.0.1/callback")

	rawURL, state := auth.AuthURL()
	if state == "" {
		t.Fatal("AuthURL() returned empty state")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parsing auth URL: %v", err)
	}

	q := u.Query()
	if q.Get("client_id") != "cid" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("redirect_uri") != "http://127.0.0.1/callback" {
		t.Errorf("redirect_uri = %q", q.Get("redirect_uri"))
	}
	if q.Get("response_type") != "code" {
		t.Errorf("response_type = %q", q.Get("response_type"))
	}
	if q.Get("state") != state {
		t.Errorf("state param = %q, want %q", q.Get("state"), state)
	}
	if !strings.Contains(q.Get("scope"), "playlist-read-private") {
		t.Errorf("scope = %q, missing playlist-read-private", q.Get("scope"))
	}
}

func TestConsumeState(t *testing.T) {
	auth := NewAuthenticator("cid", "csecret", "http://127.0.0.1/callback")

	_, state := auth.AuthURL()

	if !auth.ConsumeState(state) {
		t.Fatal("ConsumeState() = false for outstanding nonce")
	}
	// Single use: a replay of the same state must be rejected.
	if auth.ConsumeState(state) {
		t.Error("ConsumeState() = true for consumed nonce")
	}
	if auth.ConsumeState("never-issued") {
		t.Error("ConsumeState() = true for unknown nonce")
	}
	if auth.ConsumeState("") {
		t.Error("ConsumeState() = true for empty nonce")
	}
}
