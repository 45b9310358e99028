// Package session maps opaque Spotify user IDs to usable bearer
// tokens, coordinating the persisted token store with the OAuth
// refresh flow.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/mgreer/playlist-charts/internal/store"
)

// ErrReauthorizationRequired is returned when a session has no usable
// refresh path and the user must go through the authorization flow again.
var ErrReauthorizationRequired = errors.New("reauthorization required")

// TokenRefresher exchanges a refresh token for a new access token.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// Manager gates all remote operations on a valid token for a user.
//
// Two requests for the same user may race a refresh; the last writer
// wins, which is acceptable because tokens are idempotently re-derivable.
type Manager struct {
	store     *store.SessionStore
	refresher TokenRefresher
	now       func() time.Time
}

// NewManager creates a session manager over the given store and
// refresher.
func NewManager(s *store.SessionStore, refresher TokenRefresher) *Manager {
	return &Manager{
		store:     s,
		refresher: refresher,
		now:       time.Now,
	}
}

// IsActive reports whether userID has a session with a non-empty
// access token that expires strictly in the future. Store failures
// read as inactive.
func (m *Manager) IsActive(userID string) bool {
	rec, ok, err := m.store.Get(userID)
	if err != nil || !ok {
		return false
	}
	return rec.AccessToken != "" && rec.ExpiresAt.After(m.now())
}

// BearerToken returns the user's access token if the session is
// active. Callers getting false must redirect to re-authorization.
func (m *Manager) BearerToken(userID string) (string, bool) {
	rec, ok, err := m.store.Get(userID)
	if err != nil || !ok {
		return "", false
	}
	if rec.AccessToken == "" || !rec.ExpiresAt.After(m.now()) {
		return "", false
	}
	return rec.AccessToken, true
}

// Establish persists a freshly issued token pair for userID, replacing
// any previous session.
func (m *Manager) Establish(userID string, token *oauth2.Token) error {
	if err := m.store.Put(userID, store.Record{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}); err != nil {
		return fmt.Errorf("persisting session for %s: %w", userID, err)
	}
	return nil
}

// RefreshIfNeeded ensures userID has an active session, refreshing the
// access token when an expired session still holds a refresh token.
// The original refresh token is preserved across refreshes. Without a
// refresh path it returns ErrReauthorizationRequired.
func (m *Manager) RefreshIfNeeded(ctx context.Context, userID string) error {
	rec, ok, err := m.store.Get(userID)
	if err != nil {
		return fmt.Errorf("loading session for %s: %w", userID, err)
	}
	if ok && rec.AccessToken != "" && rec.ExpiresAt.After(m.now()) {
		return nil
	}
	if !ok || rec.RefreshToken == "" {
		return ErrReauthorizationRequired
	}

	token, err := m.refresher.Refresh(ctx, rec.RefreshToken)
	if err != nil {
		return fmt.Errorf("refreshing token for %s: %w", userID, err)
	}

	if err := m.store.Put(userID, store.Record{
		AccessToken:  token.AccessToken,
		RefreshToken: rec.RefreshToken,
		ExpiresAt:    token.Expiry,
	}); err != nil {
		return fmt.Errorf("persisting refreshed session for %s: %w", userID, err)
	}
	return nil
}

// Logout deletes all persisted session data for userID. Irreversible.
func (m *Manager) Logout(userID string) error {
	if err := m.store.Delete(userID); err != nil {
		return fmt.Errorf("deleting session for %s: %w", userID, err)
	}
	return nil
}
