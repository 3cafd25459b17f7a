package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"tradecraft/internal/client/api"
)

// Session is the client's cached proof of authentication plus profile data.
// Token and User are always present together; a session with only one of the
// two is treated as absent.
type Session struct {
	Token string
	User  api.User
}

// Store persists the session as two entries in a state directory, the local
// analog of the browser's token/user localStorage pair: a bare token file and
// a JSON-serialized user. Two writes, no transactional guarantee.
type Store struct {
	dir string
}

const (
	tokenFile = "token"
	userFile  = "user.json"
)

// NewStore returns a store rooted at dir. The directory is created lazily on
// the first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Restore reads the persisted session. It returns (nil, nil) when no session
// is stored, and treats partial state (one entry missing or unreadable as a
// pair) the same as absent. No expiry check happens here: a stale token is
// only discovered when the backend rejects it.
func (s *Store) Restore() (*Session, error) {
	rawToken, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rawUser, err := os.ReadFile(filepath.Join(s.dir, userFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	token := strings.TrimSpace(string(rawToken))
	if token == "" {
		return nil, nil
	}
	var user api.User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		// A corrupt user entry breaks the both-or-absent pair
		return nil, nil
	}
	return &Session{Token: token, User: user}, nil
}

// Save persists both session entries, token first
func (s *Store) Save(sess *Session) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, tokenFile), []byte(sess.Token), 0600); err != nil {
		return err
	}
	data, err := json.Marshal(sess.User)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, userFile), data, 0600)
}

// Clear removes both entries; a missing entry is not an error
func (s *Store) Clear() error {
	for _, name := range []string{tokenFile, userFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
