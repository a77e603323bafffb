package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/jlcastillov/crm-console/internal/store"
)

// Role levels. Lower value = more privileged.
const (
	RoleAdmin      = 1
	RoleSupervisor = 2
	RoleExecutive  = 3
)

// Session carries the identity of the logged-in user. It is constructed by
// Login and passed explicitly to whatever needs it; there is no package-level
// current user.
type Session struct {
	user *store.User
}

// NewSession wraps an already-authenticated user (tests, seed tooling).
func NewSession(u *store.User) *Session {
	return &Session{user: u}
}

// Login authenticates against the user table and returns a session.
func Login(ctx context.Context, st *store.Store, login, password string) (*Session, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, fmt.Errorf("login and password are required")
	}
	u, err := st.Authenticate(ctx, login, password)
	if err != nil {
		return nil, err
	}
	return &Session{user: u}, nil
}

// IsAuthenticated reports whether the session holds a user.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.user != nil
}

// UserID returns the current user id, or 0 when unauthenticated.
func (s *Session) UserID() int64 {
	if !s.IsAuthenticated() {
		return 0
	}
	return s.user.ID
}

// Role returns the current role level. Unauthenticated sessions report the
// most restrictive role.
func (s *Session) Role() int {
	if !s.IsAuthenticated() {
		return RoleExecutive
	}
	return s.user.ProfileID
}

// Login name of the current user ("" when unauthenticated).
func (s *Session) LoginName() string {
	if !s.IsAuthenticated() {
		return ""
	}
	return s.user.Login
}

// DisplayName returns the user's first name, falling back to the login.
func (s *Session) DisplayName() string {
	if !s.IsAuthenticated() {
		return ""
	}
	if s.user.FirstName != "" {
		return s.user.FirstName
	}
	return s.user.Login
}
