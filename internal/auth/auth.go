// Package auth issues and verifies the JWTs guarding mutating routes.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fairyhunter13/realtime-catalog/internal/account"
	"github.com/fairyhunter13/realtime-catalog/internal/model"
)

// ErrInvalidCredentials covers unknown emails and wrong passwords alike so
// responses do not reveal which one it was.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken is returned for missing, malformed, or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// Session is what register/login hand back to the HTTP layer.
type Session struct {
	User  model.UserRef `json:"user"`
	Token string        `json:"access_token"`
}

type Service struct {
	accounts *account.Store
	secret   []byte
	ttl      time.Duration
}

func New(accounts *account.Store, secret string, ttl time.Duration) *Service {
	return &Service{accounts: accounts, secret: []byte(secret), ttl: ttl}
}

// Register creates the account and signs a token for it.
func (s *Service) Register(email, username, password string) (Session, error) {
	u, err := s.accounts.Create(email, username, password)
	if err != nil {
		return Session{}, err
	}
	return s.session(u)
}

// Login verifies credentials, records the login, and signs a token.
func (s *Service) Login(email, password string) (Session, error) {
	u, ok := s.accounts.FindByEmail(email)
	if !ok || !s.accounts.CheckPassword(u, password) {
		return Session{}, ErrInvalidCredentials
	}
	s.accounts.UpdateLastLogin(u.ID)
	_ = s.accounts.AppendActivity(u.ID, "User logged in")
	return s.session(u)
}

func (s *Service) session(u model.User) (Session, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   u.ID,
		"email": u.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	})
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return Session{}, err
	}
	return Session{
		User:  model.UserRef{ID: u.ID, Email: u.Email, Username: u.Username},
		Token: signed,
	}, nil
}

// Verify parses tokenString and returns the actor id it was issued to.
func (s *Service) Verify(tokenString string) (string, error) {
	tok, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
