// Package session holds the authenticated user's profile and bearer token,
// mirrored to a small SQLite database so a daemon restart does not force a
// new login. The persisted token is re-verified against the gateway on
// startup.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/joao-cbj/silowatch/internal/gateway"
	"go.uber.org/zap"
)

// Authenticator is the slice of the gateway client the store depends on.
type Authenticator interface {
	Verify(ctx context.Context) (*gateway.User, error)
	Login(ctx context.Context, email, password, mfaCode string) (*gateway.LoginResult, error)
}

// Store is the process-wide session state. Exactly one instance exists per
// running daemon; it is safe for concurrent readers and writers.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	auth   Authenticator
	logger *zap.SugaredLogger

	token         string
	user          gateway.User
	authenticated bool
}

// NewStore opens (or creates) the session database at path. The gateway
// client is attached separately with AttachGateway because the client
// itself needs the store as its token source.
func NewStore(path string, logger *zap.SugaredLogger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping session database: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			token TEXT NOT NULL,
			user_json TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create session table: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// AttachGateway wires the gateway client used for login and verification.
func (s *Store) AttachGateway(auth Authenticator) {
	s.auth = auth
}

// Token implements gateway.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the current profile and whether the session is
// authenticated.
func (s *Store) User() (gateway.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.authenticated
}

// Authenticated reports whether a verified session is active.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Init loads any persisted session and verifies its token against the
// gateway. An invalid or expired token clears the persisted state; that is
// a normal startup outcome, not an error. Init only fails on storage
// problems.
func (s *Store) Init(ctx context.Context) error {
	token, user, found, err := s.load()
	if err != nil {
		return err
	}
	if !found || token == "" {
		s.logger.Info("no persisted session; login required")
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	verified, err := s.auth.Verify(ctx)
	if err != nil {
		s.logger.Warnf("persisted token rejected: %v", err)
		s.Clear()
		return nil
	}

	s.mu.Lock()
	s.user = *verified
	s.authenticated = true
	s.mu.Unlock()

	s.logger.Infof("session restored for %s", verified.Email)
	return nil
}

// Login submits credentials to the gateway. When the result has
// RequiresMFA set the caller must re-prompt for a one-time code and call
// Login again with it; no state changes until the full login succeeds.
func (s *Store) Login(ctx context.Context, email, password, mfaCode string) (*gateway.LoginResult, error) {
	result, err := s.auth.Login(ctx, email, password, mfaCode)
	if err != nil {
		return nil, err
	}
	if result.RequiresMFA {
		return result, nil
	}

	s.mu.Lock()
	s.token = result.Token
	s.user = result.User
	s.authenticated = true
	s.mu.Unlock()

	if err := s.save(result.Token, result.User); err != nil {
		// The in-memory session stays valid; only the restart convenience
		// is lost.
		s.logger.Errorf("failed to persist session: %v", err)
	}
	return result, nil
}

// UpdateProfile merges a partial profile update into the session and
// persists it, without re-verifying the token.
func (s *Store) UpdateProfile(partial gateway.User) gateway.User {
	s.mu.Lock()
	s.user = s.user.Merge(partial)
	user := s.user
	token := s.token
	s.mu.Unlock()

	if token != "" {
		if err := s.save(token, user); err != nil {
			s.logger.Errorf("failed to persist profile update: %v", err)
		}
	}
	return user
}

// Logout clears the session, in memory and on disk.
func (s *Store) Logout() {
	s.Clear()
	s.logger.Info("logged out")
}

// Clear wipes the session state. Also invoked by the gateway client when
// any authenticated request comes back 401.
func (s *Store) Clear() {
	s.mu.Lock()
	s.token = ""
	s.user = gateway.User{}
	s.authenticated = false
	s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM session WHERE id = 1`); err != nil {
		s.logger.Errorf("failed to clear persisted session: %v", err)
	}
}

// Close closes the session database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) load() (string, gateway.User, bool, error) {
	var token, userJSON string
	err := s.db.QueryRow(`SELECT token, user_json FROM session WHERE id = 1`).Scan(&token, &userJSON)
	if err == sql.ErrNoRows {
		return "", gateway.User{}, false, nil
	}
	if err != nil {
		return "", gateway.User{}, false, fmt.Errorf("failed to load session: %w", err)
	}

	var user gateway.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		// Corrupt profile: drop the row rather than fail startup.
		s.logger.Warnf("discarding unreadable persisted profile: %v", err)
		s.db.Exec(`DELETE FROM session WHERE id = 1`)
		return "", gateway.User{}, false, nil
	}
	return token, user, true, nil
}

func (s *Store) save(token string, user gateway.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO session (id, token, user_json, updated_at) VALUES (1, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET token = excluded.token,
			user_json = excluded.user_json, updated_at = CURRENT_TIMESTAMP
	`, token, string(userJSON))
	if err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}
