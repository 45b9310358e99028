// Package web provides the HTTP server and pages for playlist-charts.
package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	sessionCookieName = "pc_session"
	cookieTTL         = 24 * time.Hour
)

// CookieStore maps random session cookie values to Spotify user IDs.
// Token state lives in the persisted session store; this only binds a
// browser to a user identity.
type CookieStore struct {
	mu    sync.RWMutex
	users map[string]cookieEntry
	now   func() time.Time
}

type cookieEntry struct {
	userID    string
	createdAt time.Time
}

// NewCookieStore creates an empty cookie store.
func NewCookieStore() *CookieStore {
	return &CookieStore{
		users: make(map[string]cookieEntry),
		now:   time.Now,
	}
}

// Create binds a fresh cookie to userID and sets it on the response.
func (c *CookieStore) Create(w http.ResponseWriter, userID string) {
	id := uuid.NewString()

	c.mu.Lock()
	c.users[id] = cookieEntry{userID: userID, createdAt: c.now()}
	c.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(cookieTTL.Seconds()),
	})
}

// UserID resolves the request's session cookie to a user ID.
func (c *CookieStore) UserID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.users[cookie.Value]
	if !ok || c.now().Sub(entry.createdAt) > cookieTTL {
		return "", false
	}
	return entry.userID, true
}

// Clear drops the request's session binding and expires the cookie.
func (c *CookieStore) Clear(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		c.mu.Lock()
		delete(c.users, cookie.Value)
		c.mu.Unlock()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
