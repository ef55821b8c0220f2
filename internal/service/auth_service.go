package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/platewatch/backend/internal/domain"
)

// ErrInvalidCredentials is returned for any login failure. The message
// is deliberately uniform so callers cannot tell which field was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CredentialVerifier checks a username/password pair against some user
// directory. The demo ships a static plaintext directory; a production
// deployment swaps in hashed storage without touching the auth contract.
type CredentialVerifier interface {
	Verify(username, password string) (domain.User, error)
}

// StaticUser is one entry of the fixed demo directory.
type StaticUser struct {
	Username    string
	Password    string
	Role        string
	Permissions []string
}

// StaticVerifier matches credentials against a fixed in-memory list.
// Demo only: passwords are plaintext, which is a flagged production gap.
type StaticVerifier struct {
	users []StaticUser
}

// NewStaticVerifier creates a verifier over a fixed user directory.
func NewStaticVerifier(users []StaticUser) *StaticVerifier {
	return &StaticVerifier{users: users}
}

// DefaultUsers returns the demo user directory.
func DefaultUsers() []StaticUser {
	return []StaticUser{
		{Username: "admin", Password: "admin123", Role: "admin", Permissions: []string{"search", "upload", "admin"}},
		{Username: "operator", Password: "operator123", Role: "operator", Permissions: []string{"search", "upload"}},
		{Username: "viewer", Password: "viewer123", Role: "viewer", Permissions: []string{"search"}},
	}
}

// Verify performs an exact match on username and password.
func (v *StaticVerifier) Verify(username, password string) (domain.User, error) {
	for _, u := range v.users {
		userOK := subtle.ConstantTimeCompare([]byte(u.Username), []byte(username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) == 1
		if userOK && passOK {
			return domain.User{Username: u.Username, Role: u.Role, Permissions: u.Permissions}, nil
		}
	}
	return domain.User{}, ErrInvalidCredentials
}

// BcryptUser is a directory entry with a bcrypt password hash.
type BcryptUser struct {
	Username     string
	PasswordHash []byte
	Role         string
	Permissions  []string
}

// BcryptVerifier matches credentials against bcrypt hashes. It is the
// production-shaped implementation of CredentialVerifier.
type BcryptVerifier struct {
	users map[string]BcryptUser
}

// NewBcryptVerifier creates a verifier over hashed user records.
func NewBcryptVerifier(users []BcryptUser) *BcryptVerifier {
	m := make(map[string]BcryptUser, len(users))
	for _, u := range users {
		m[u.Username] = u
	}
	return &BcryptVerifier{users: m}
}

// Verify compares the password against the stored bcrypt hash.
func (v *BcryptVerifier) Verify(username, password string) (domain.User, error) {
	u, ok := v.users[username]
	if !ok {
		// Burn a comparison anyway so unknown users cost the same.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5B0xM1sY8vXq0eGmYpGQYpR1u2K6W"), []byte(password))
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return domain.User{Username: u.Username, Role: u.Role, Permissions: u.Permissions}, nil
}

// Claims are the JWT claims carried by the bearer token.
type Claims struct {
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// AuthService issues and validates bearer tokens for the dashboard.
// Tokens are HMAC-SHA256 signed and stateless; the server keeps no
// session table, so a 401 on the client just clears the stored token.
type AuthService struct {
	verifier CredentialVerifier
	secret   []byte
	ttl      time.Duration
}

// NewAuthService creates a new auth service. The secret must not be empty.
func NewAuthService(verifier CredentialVerifier, secret string, ttl time.Duration) (*AuthService, error) {
	if secret == "" {
		return nil, fmt.Errorf("auth: JWT secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		verifier: verifier,
		secret:   []byte(secret),
		ttl:      ttl,
	}, nil
}

// Login verifies credentials and, on success, returns a signed bearer
// token plus the matched role and permission set. Every failure maps to
// ErrInvalidCredentials.
func (s *AuthService) Login(username, password string) (*domain.LoginResponse, error) {
	user, err := s.verifier.Verify(username, password)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := &Claims{
		Username:    user.Username,
		Role:        user.Role,
		Permissions: user.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to sign token: %w", err)
	}

	return &domain.LoginResponse{
		AccessToken: signed,
		User:        user,
		ExpiresIn:   int64(s.ttl.Seconds()),
	}, nil
}

// ValidateToken parses and validates a bearer token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}

	return claims, nil
}
