package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/examhall/examhall-backend/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrSessionAlreadyActive = errors.New("another session is already active")
)

// TokenType distinguishes student vs admin tokens.
type TokenType string

const (
	TokenTypeStudent TokenType = "student"
	TokenTypeAdmin   TokenType = "admin"
)

// Claims extends JWT standard claims with app-specific fields. Claims are
// the explicit principal context handed to handlers; nothing reads
// identity from ambient state.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name,omitempty"`
}

// AuthService handles authentication, JWT, and session management.
type AuthService struct {
	cfg *config.Config
	rdb *redis.Client
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateStudentToken creates a JWT for a student and registers the
// session in Redis. A second login while a session is active is rejected.
func (s *AuthService) GenerateStudentToken(ctx context.Context, studentID uuid.UUID, name string) (string, error) {
	sessionKey := config.CacheKey.StudentSessionKey(studentID.String())

	existing, err := s.rdb.Get(ctx, sessionKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("check session: %w", err)
	}
	if existing != "" {
		return "", ErrSessionAlreadyActive
	}

	jti := uuid.New().String()
	signed, err := s.sign(TokenTypeStudent, studentID, name, jti)
	if err != nil {
		return "", err
	}

	// Store session in Redis with the same expiry as the JWT.
	if err := s.rdb.Set(ctx, sessionKey, jti, s.cfg.JWTExpiry).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return signed, nil
}

// ClearStudentSession removes the single-device session marker.
func (s *AuthService) ClearStudentSession(ctx context.Context, studentID uuid.UUID) error {
	return s.rdb.Del(ctx, config.CacheKey.StudentSessionKey(studentID.String())).Err()
}

// VerifyStudentSession checks that the token's session is still the active
// one for the student.
func (s *AuthService) VerifyStudentSession(ctx context.Context, claims *Claims) error {
	val, err := s.rdb.Get(ctx, config.CacheKey.StudentSessionKey(claims.UserID.String())).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return errors.New("session invalidated")
		}
		return fmt.Errorf("check session: %w", err)
	}
	if val != claims.ID {
		return errors.New("session superseded by another device")
	}
	return nil
}

// GenerateAdminToken creates a JWT for an admin.
func (s *AuthService) GenerateAdminToken(adminID uuid.UUID, name string) (string, error) {
	return s.sign(TokenTypeAdmin, adminID, name, uuid.New().String())
}

func (s *AuthService) sign(tokenType TokenType, userID uuid.UUID, name, jti string) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TokenType: tokenType,
		UserID:    userID,
		Name:      name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
