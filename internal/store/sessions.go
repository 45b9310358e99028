package store

import (
	"path/filepath"
	"time"
)

const sessionFileName = "sessions.json"

// Record holds the persisted token state for one user. Exactly one
// record exists per user ID; writes replace the whole record.
type Record struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// SessionStore persists per-user token records keyed by the opaque
// Spotify user ID.
type SessionStore struct {
	file *File[Record]
}

// NewSessionStore creates a session store under the given data directory.
func NewSessionStore(dataDir string) *SessionStore {
	return &SessionStore{file: NewFile[Record](filepath.Join(dataDir, sessionFileName))}
}

// Get returns the record for userID, reporting whether one exists.
func (s *SessionStore) Get(userID string) (Record, bool, error) {
	doc, err := s.file.Load()
	if err != nil {
		return Record{}, false, err
	}
	rec, ok := doc[userID]
	return rec, ok, nil
}

// Put stores the record for userID, replacing any previous one.
func (s *SessionStore) Put(userID string, rec Record) error {
	return s.file.Update(func(doc map[string]Record) error {
		doc[userID] = rec
		return nil
	})
}

// Delete removes all persisted state for userID.
func (s *SessionStore) Delete(userID string) error {
	return s.file.Update(func(doc map[string]Record) error {
		delete(doc, userID)
		return nil
	})
}
