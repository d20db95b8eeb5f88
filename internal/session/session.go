// Package session holds the signed-in user's context for the CLI.  A Session
// is created once at login and passed explicitly into every view load.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gopkg.in/yaml.v3"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/types"
)

// ErrNoSession is returned by Store.Load when nobody is signed in.
var ErrNoSession = errors.New("not logged in")

// Session is the persisted login.  ID is the canonical identifier used in
// resource paths: the resident id for residents, the staff id for staff and
// security, the user id otherwise.
type Session struct {
	ID        int64     `yaml:"id"`
	UserID    int64     `yaml:"user_id"`
	Role      string    `yaml:"role"`
	Username  string    `yaml:"username"`
	FullName  string    `yaml:"full_name,omitempty"`
	Email     string    `yaml:"email,omitempty"`
	Token     string    `yaml:"token"`
	ExpiresAt time.Time `yaml:"expires_at,omitempty"`
	CreatedAt time.Time `yaml:"created_at"`
}

// FromLogin builds a session from a login response.  It fails when the
// response carries no usable identifier or token.
func FromLogin(resp types.LoginResponse, now time.Time) (Session, error) {
	if resp.Token == "" {
		return Session{}, errors.New("login response has no token")
	}
	id, ok := canonicalID(resp.User)
	if !ok {
		return Session{}, errors.New("login response has no user identifier")
	}

	s := Session{
		ID:        id,
		UserID:    resp.UserID,
		Role:      resp.Role,
		Username:  resp.Username,
		FullName:  resp.FullName,
		Email:     resp.Email,
		Token:     resp.Token,
		CreatedAt: now,
	}
	if exp, ok := TokenExpiry(resp.Token); ok {
		s.ExpiresAt = exp
	}
	return s, nil
}

// canonicalID picks resident_id, then staff_id, then user_id.
func canonicalID(u types.User) (int64, bool) {
	switch {
	case u.ResidentID != nil:
		return *u.ResidentID, true
	case u.StaffID != nil:
		return *u.StaffID, true
	case u.UserID != 0:
		return u.UserID, true
	}
	return 0, false
}

// TokenExpiry reads the exp claim of a JWT without verifying the signature.
// Opaque tokens report false.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the token's expiry is known and at or before now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

func (s Session) HasRole(roles ...string) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

// PathID is ID formatted for a URL path segment.
func (s Session) PathID() string { return strconv.FormatInt(s.ID, 10) }

// Store persists one session as a YAML file.
type Store struct {
	Path string
}

func (st Store) Load() (Session, error) {
	data, err := os.ReadFile(st.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}

	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("parse session %s: %w", st.Path, err)
	}
	if s.Token == "" {
		return Session{}, ErrNoSession
	}
	return s, nil
}

// Save writes the session with owner-only permissions.
func (st Store) Save(s Session) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(st.Path), 0o700); err != nil {
		return fmt.Errorf("mkdir session dir: %w", err)
	}

	tmp := st.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, st.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the stored session.  Clearing when nothing is stored is
// not an error.
func (st Store) Clear() error {
	if err := os.Remove(st.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
