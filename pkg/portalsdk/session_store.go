package portalsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// SessionStore persists the signed-in session across portal restarts.
type SessionStore interface {
	// Save replaces whatever was stored before. All fields land together
	// or not at all.
	Save(s StoredSession) error

	// Load returns the stored session, or ErrNoSession.
	Load() (StoredSession, error)

	// Clear removes the session. Clearing an empty store is a no-op.
	Clear() error
}

// FileSessionStore keeps the session in a single JSON file, written with
// owner-only permissions. Save goes through a temp file and rename, so a
// crash mid-write never leaves a torn session behind.
type FileSessionStore struct {
	Path string
}

func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{Path: path}
}

func (f *FileSessionStore) Save(s StoredSession) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("portalsdk: create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("portalsdk: create temp session file: %w", err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, f.Path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("portalsdk: replace session file: %w", err)
	}
	return nil
}

func (f *FileSessionStore) Load() (StoredSession, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return StoredSession{}, ErrNoSession
		}
		return StoredSession{}, err
	}

	var s StoredSession
	if err := json.Unmarshal(b, &s); err != nil {
		// A corrupt file is as good as no session.
		return StoredSession{}, ErrNoSession
	}
	if s.AccessToken == "" && s.RefreshToken == "" {
		return StoredSession{}, ErrNoSession
	}
	return s, nil
}

func (f *FileSessionStore) Clear() error {
	err := os.Remove(f.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
