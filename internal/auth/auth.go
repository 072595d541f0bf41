package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/careops/hospital-admission/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid session token")
)

// Service handles operator signup and login. Passwords are stored as bcrypt
// hashes; rows predating the hash migration still authenticate by direct
// comparison, so the store interface stays format agnostic.
type Service struct {
	repo       store.Repository
	secret     []byte
	sessionTTL time.Duration
}

func NewService(repo store.Repository, secret string, sessionTTL time.Duration) *Service {
	return &Service{
		repo:       repo,
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
	}
}

// Signup creates an operator account. It returns false when the username or
// email is already taken.
func (s *Service) Signup(ctx context.Context, username, email, password string) (bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash credential: %w", err)
	}

	created, err := s.repo.CreateUser(ctx, username, email, string(hash))
	if err != nil {
		return false, fmt.Errorf("create user: %w", err)
	}

	return created, nil
}

// Login verifies credentials and issues a session token carrying the user id
// and a fresh workflow session id.
func (s *Service) Login(ctx context.Context, username, password string) (token string, userID int64, sessionID string, err error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return "", 0, "", ErrInvalidCredentials
		}
		return "", 0, "", fmt.Errorf("load user: %w", err)
	}

	if !verifyCredential(user.Password, password) {
		return "", 0, "", ErrInvalidCredentials
	}

	sessionID = uuid.NewString()

	claims := jwt.MapClaims{
		"sub": user.ID,
		"sid": sessionID,
		"exp": time.Now().Add(s.sessionTTL).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", 0, "", fmt.Errorf("sign session token: %w", err)
	}

	return signed, user.ID, sessionID, nil
}

// ParseToken validates a session token and returns the user id and workflow
// session id embedded in it.
func (s *Service) ParseToken(tokenStr string) (userID int64, sessionID string, err error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", ErrInvalidToken
	}

	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, "", ErrInvalidToken
	}

	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return 0, "", ErrInvalidToken
	}

	return int64(sub), sid, nil
}

func verifyCredential(stored, password string) bool {
	if bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil {
		return true
	}
	// legacy rows stored the credential verbatim
	return stored != "" && stored == password
}
