package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/types"
)

// Claims carried by every session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID     int64  `json:"uid"`
	Role       string `json:"role"`
	ResidentID *int64 `json:"resident_id,omitempty"`
	StaffID    *int64 `json:"staff_id,omitempty"`
}

// OwnsResident reports whether the token may read or change resident id's
// data.
func (c *Claims) OwnsResident(id int64) bool {
	return c.Role == types.RoleResident && c.ResidentID != nil && *c.ResidentID == id
}

// OwnsStaff reports whether the token may read staff id's attendance and
// schedule.  Security officers are staff members too.
func (c *Claims) OwnsStaff(id int64) bool {
	if c.Role != types.RoleStaff && c.Role != types.RoleSecurity {
		return false
	}
	return c.StaffID != nil && *c.StaffID == id
}

type AuthConfig struct {
	Secret []byte
	TTL    time.Duration // zero means 12h
}

type AuthService struct {
	users  store.UserStore
	secret []byte
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> token expiry
}

func NewAuthService(users store.UserStore, cfg AuthConfig, logger zerolog.Logger) *AuthService {
	if cfg.TTL == 0 {
		cfg.TTL = 12 * time.Hour
	}
	return &AuthService{
		users:   users,
		secret:  cfg.Secret,
		ttl:     cfg.TTL,
		logger:  logger,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

// Login checks the password and issues a token.  Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req types.LoginRequest) (types.LoginResponse, error) {
	var missing []string
	if strings.TrimSpace(req.Username) == "" {
		missing = append(missing, "username")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return types.LoginResponse{}, &MissingFieldsError{Fields: missing}
	}

	u, err := s.users.FindByUsername(ctx, req.Username)
	if errors.Is(err, store.ErrNotFound) {
		return types.LoginResponse{}, ErrInvalidCredentials
	}
	if err != nil {
		return types.LoginResponse{}, err
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)); err != nil {
		s.logger.Info().Str("username", u.Username).Msg("login rejected")
		return types.LoginResponse{}, ErrInvalidCredentials
	}

	token, err := s.issue(u)
	if err != nil {
		return types.LoginResponse{}, err
	}

	s.logger.Info().Str("username", u.Username).Str("role", u.Role).Msg("login")
	return types.LoginResponse{
		User:    toUser(u),
		Token:   token,
		Message: "Login successful",
	}, nil
}

func (s *AuthService) issue(u store.UserRecord) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID:     u.UserID,
		Role:       u.Role,
		ResidentID: u.ResidentID,
		StaffID:    u.StaffID,
	})
	return token.SignedString(s.secret)
}

// Verify parses and validates a token, rejecting revoked ones.
func (s *AuthService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(claims *Claims) {
	if claims == nil || claims.ID == "" {
		return
	}
	exp := s.now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, until := range s.revoked {
		if until.Before(now) {
			delete(s.revoked, id)
		}
	}
	s.revoked[claims.ID] = exp
}

// CurrentUser reloads the account behind a verified token.
func (s *AuthService) CurrentUser(ctx context.Context, claims *Claims) (types.User, error) {
	u, err := s.users.GetUser(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return types.User{}, ErrInvalidToken
	}
	if err != nil {
		return types.User{}, err
	}
	return toUser(u), nil
}

func toUser(u store.UserRecord) types.User {
	return types.User{
		UserID:     u.UserID,
		ResidentID: u.ResidentID,
		StaffID:    u.StaffID,
		Username:   u.Username,
		FullName:   u.FullName,
		Email:      u.Email,
		Position:   u.Position,
		Role:       u.Role,
	}
}
