// Package session implements token-based login sessions backed by the
// users table.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ecoscope-id/ecoscope/internal/store"
	"github.com/ecoscope-id/ecoscope/pkg/models"
	"github.com/ecoscope-id/ecoscope/pkg/utils"
)

// DefaultTTL is how long a session stays valid.
const DefaultTTL = 24 * time.Hour

var (
	// ErrInvalidCredentials is returned on a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionExpired is returned when a token's expiry passed.
	ErrSessionExpired = errors.New("session expired")
	// ErrSessionNotFound is returned for unknown tokens.
	ErrSessionNotFound = errors.New("session not found")
)

// Session is one active login.
type Session struct {
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Expired reports whether the session's expiry has passed.
func (s *Session) Expired() bool {
	return utils.NowWIB().After(s.ExpiresAt)
}

// Manager issues and validates session tokens. Sessions live in memory;
// a restart logs everyone out.
type Manager struct {
	store *store.Store
	ttl   time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager with the default TTL.
func NewManager(st *store.Store) *Manager {
	return &Manager{
		store:    st,
		ttl:      DefaultTTL,
		sessions: make(map[string]*Session),
	}
}

// HashPassword returns the hex sha256 digest used in the users table.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Login checks the credentials and issues a session token.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	user, hash, err := m.store.UserByEmail(ctx, email)
	if errors.Is(err, store.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if HashPassword(password) != hash {
		return nil, ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	now := utils.NowWIB()
	sess := &Session{
		Token:     token,
		User:      *user,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[token] = sess
	m.mu.Unlock()

	if err := m.store.TouchLastLogin(ctx, user.UserID, now); err != nil {
		// Non-critical: the session is already valid.
		return sess, nil
	}
	return sess, nil
}

// Validate resolves a token to its session, rejecting expired ones.
func (m *Manager) Validate(token string) (*Session, error) {
	m.mu.Lock()
	sess, ok := m.sessions[token]
	m.mu.Unlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.Expired() {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Logout removes a session. Unknown tokens are a no-op.
func (m *Manager) Logout(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// Cleanup removes expired sessions and returns how many were dropped.
func (m *Manager) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	dropped := 0
	for token, sess := range m.sessions {
		if sess.Expired() {
			delete(m.sessions, token)
			dropped++
		}
	}
	return dropped
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
