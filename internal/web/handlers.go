package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/mgreer/playlist-charts/internal/analyze"
	"github.com/mgreer/playlist-charts/internal/session"
	"github.com/mgreer/playlist-charts/internal/spotify"
	"github.com/mgreer/playlist-charts/internal/store"
)

// ClientFactory builds a resource client for a bearer token. Injected
// so tests can point clients at a local server.
type ClientFactory func(bearerToken string) *spotify.Client

// Handlers contains the HTTP handlers for the application.
type Handlers struct {
	auth      *spotify.Authenticator
	sessions  *session.Manager
	cookies   *CookieStore
	genres    *store.GenreCache
	templates *Templates
	logger    *log.Logger
	newClient ClientFactory
}

// NewHandlers creates a Handlers instance.
func NewHandlers(auth *spotify.Authenticator, sessions *session.Manager, cookies *CookieStore, genres *store.GenreCache, templates *Templates, logger *log.Logger, newClient ClientFactory) *Handlers {
	return &Handlers{
		auth:      auth,
		sessions:  sessions,
		cookies:   cookies,
		genres:    genres,
		templates: templates,
		logger:    logger,
		newClient: newClient,
	}
}

// Home renders the landing page (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, "home", PageData{
		Title:         "Playlist Charts",
		Authenticated: h.authenticated(r),
		CurrentPath:   r.URL.Path,
	})
}

// Login starts the authorization flow (GET /auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	authURL, _ := h.auth.AuthURL()
	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// Callback completes the authorization flow (GET /callback).
//
// A state nonce that is absent from the outstanding set is a possible
// replay or forged request; the token endpoint is never contacted and
// the browser is sent back to login.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if !h.auth.ConsumeState(q.Get("state")) {
		h.logger.Warn("callback state mismatch", "remote", r.RemoteAddr)
		http.Redirect(w, r, "/auth/login", http.StatusTemporaryRedirect)
		return
	}

	if errMsg := q.Get("error"); errMsg != "" {
		h.logger.Warn("authorization denied", "error", errMsg)
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}

	token, err := h.auth.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		h.logger.Error("token exchange failed", "err", err)
		http.Redirect(w, r, "/auth/login", http.StatusTemporaryRedirect)
		return
	}

	userID, err := h.newClient(token.AccessToken).CurrentUserID(r.Context())
	if err != nil {
		h.logger.Error("fetching user profile failed", "err", err)
		http.Error(w, "Failed to look up user", http.StatusBadGateway)
		return
	}

	if err := h.sessions.Establish(userID, token); err != nil {
		h.logger.Error("persisting session failed", "err", err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	h.cookies.Create(w, userID)
	http.Redirect(w, r, "/playlists", http.StatusTemporaryRedirect)
}

// Logout deletes the persisted session (POST /auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if userID, ok := h.cookies.UserID(r); ok {
		if err := h.sessions.Logout(userID); err != nil {
			h.logger.Error("logout failed", "user", userID, "err", err)
		}
	}
	h.cookies.Clear(w, r)
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// Playlists lists the user's playlists (GET /playlists).
func (h *Handlers) Playlists(w http.ResponseWriter, r *http.Request) {
	bearer, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	playlists, err := h.newClient(bearer).ListPlaylists(r.Context())
	if err != nil {
		h.logger.Error("listing playlists failed", "err", err)
		http.Error(w, "Failed to fetch playlists", http.StatusBadGateway)
		return
	}

	h.render(w, "playlists", PlaylistsPageData{
		PageData: PageData{
			Title:         "Your Playlists",
			Authenticated: true,
			CurrentPath:   r.URL.Path,
		},
		Playlists: playlists,
	})
}

// Analyze aggregates one playlist and redirects to the results page
// with the tables carried as query-string-encoded JSON
// (GET /playlists/{id}/analyze).
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	bearer, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	playlistID := chi.URLParam(r, "id")
	client := h.newClient(bearer)

	tracks, name, _, err := client.FetchAllTracks(r.Context(), playlistID)
	if err != nil {
		h.logger.Error("fetching playlist failed", "playlist", playlistID, "err", err)
		http.Error(w, "Failed to fetch playlist", http.StatusBadGateway)
		return
	}

	analyzer := analyze.New(h.genres, client, h.logger)
	result, err := analyzer.Analyze(r.Context(), name, tracks)
	if err != nil {
		h.logger.Error("analysis failed", "playlist", playlistID, "err", err)
		http.Error(w, "Analysis failed", http.StatusInternalServerError)
		return
	}

	payload, err := json.Marshal(analyze.EscapeResult(result))
	if err != nil {
		http.Error(w, "Failed to encode results", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/results?payload="+url.QueryEscape(string(payload)), http.StatusTemporaryRedirect)
}

// Results renders the pie charts from the redirect payload
// (GET /results).
func (h *Handlers) Results(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("payload")
	if raw == "" {
		http.Redirect(w, r, "/playlists", http.StatusTemporaryRedirect)
		return
	}

	var escaped analyze.Result
	if err := json.Unmarshal([]byte(raw), &escaped); err != nil {
		http.Error(w, "Malformed results payload", http.StatusBadRequest)
		return
	}

	h.render(w, "results", ResultsPageData{
		PageData: PageData{
			Title:         escaped.PlaylistName,
			Authenticated: h.authenticated(r),
			CurrentPath:   r.URL.Path,
		},
		Result: analyze.UnescapeResult(&escaped),
	})
}

// requireSession resolves the request to an active bearer token,
// refreshing when possible. On failure the browser is redirected to
// the authorization flow and false is returned.
func (h *Handlers) requireSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := h.cookies.UserID(r)
	if !ok {
		http.Redirect(w, r, "/auth/login", http.StatusTemporaryRedirect)
		return "", false
	}

	if err := h.sessions.RefreshIfNeeded(r.Context(), userID); err != nil {
		if !errors.Is(err, session.ErrReauthorizationRequired) {
			h.logger.Warn("token refresh failed", "user", userID, "err", err)
		}
		http.Redirect(w, r, "/auth/login", http.StatusTemporaryRedirect)
		return "", false
	}

	bearer, ok := h.sessions.BearerToken(userID)
	if !ok {
		http.Redirect(w, r, "/auth/login", http.StatusTemporaryRedirect)
		return "", false
	}
	return bearer, true
}

func (h *Handlers) authenticated(r *http.Request) bool {
	userID, ok := h.cookies.UserID(r)
	return ok && h.sessions.IsActive(userID)
}

func (h *Handlers) render(w http.ResponseWriter, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, page, data); err != nil {
		h.logger.Error("rendering template failed", "page", page, "err", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}
