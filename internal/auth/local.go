package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 6
	// bcrypt only hashes the first 72 bytes and rejects longer input.
	maxPasswordBytes = 72
)

// Claims are the JWT claims issued by LocalProvider.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type localUser struct {
	id   string
	hash []byte
}

// LocalProvider keeps accounts in memory and issues HS256 tokens. It suits
// development and tests; accounts are lost on restart.
type LocalProvider struct {
	secret []byte
	ttl    time.Duration

	mu    sync.RWMutex
	users map[string]localUser
}

// NewLocalProvider creates an in-memory identity provider.
func NewLocalProvider(secret string, ttl time.Duration) *LocalProvider {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &LocalProvider{
		secret: []byte(secret),
		ttl:    ttl,
		users:  make(map[string]localUser),
	}
}

func (p *LocalProvider) SignUp(_ context.Context, email, password string) (Identity, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return Identity{}, err
	}
	if len(password) < minPasswordLen {
		return Identity{}, &Error{Status: http.StatusBadRequest,
			Message: CodeWeakPassword + " : Password should be at least 6 characters"}
	}
	if len(password) > maxPasswordBytes {
		return Identity{}, &Error{Status: http.StatusBadRequest,
			Message: CodeWeakPassword + " : Password must be at most 72 bytes"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, fmt.Errorf("hash password: %w", err)
	}

	p.mu.Lock()
	if _, exists := p.users[email]; exists {
		p.mu.Unlock()
		return Identity{}, &Error{Status: http.StatusBadRequest, Message: CodeEmailExists}
	}
	u := localUser{id: uuid.NewString(), hash: hash}
	p.users[email] = u
	p.mu.Unlock()

	return p.issue(u.id, email)
}

func (p *LocalProvider) SignIn(_ context.Context, email, password string) (Identity, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return Identity{}, err
	}

	p.mu.RLock()
	u, ok := p.users[email]
	p.mu.RUnlock()
	if !ok {
		return Identity{}, &Error{Status: http.StatusBadRequest, Message: CodeEmailNotFound}
	}
	if len(password) > maxPasswordBytes {
		return Identity{}, &Error{Status: http.StatusBadRequest, Message: CodeInvalidPassword}
	}
	if err := bcrypt.CompareHashAndPassword(u.hash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return Identity{}, &Error{Status: http.StatusBadRequest, Message: CodeInvalidPassword}
		}
		return Identity{}, fmt.Errorf("compare password: %w", err)
	}

	return p.issue(u.id, email)
}

func (p *LocalProvider) issue(subject, email string) (Identity, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return Identity{}, fmt.Errorf("sign token: %w", err)
	}
	return Identity{Email: email, Token: token}, nil
}

// Verify parses a token issued by this provider and returns its claims.
func (p *LocalProvider) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}
	return claims, nil
}
