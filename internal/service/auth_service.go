package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/licensa/dlexam-backend/internal/config"
	"github.com/licensa/dlexam-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginAlreadyActive = errors.New("another device is already logged in, contact staff to reset")
	ErrInvalidTokenClaims = errors.New("invalid token claims")
	ErrNoActiveLogin      = errors.New("no active login session")
	ErrLoginInvalidated   = errors.New("login session invalidated")
)

// Claims extends JWT standard claims with role and permission codes.
type Claims struct {
	jwt.RegisteredClaims
	Role        model.Role `json:"role"`
	UserID      string     `json:"user_id"`
	Permissions []string   `json:"permissions,omitempty"`
}

// HasPermission reports whether the token carries a permission code.
func (c *Claims) HasPermission(perm model.Permission) bool {
	for _, p := range c.Permissions {
		if p == string(perm) {
			return true
		}
	}
	return false
}

// AuthService handles JWT issuance/validation, password hashing, and the
// candidate single-device login rule.
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

// GenerateCandidateToken creates a JWT for a candidate and registers the
// login in Redis. Candidates get one device at a time: a second login is
// rejected until the first expires or staff resets it.
func (s *AuthService) GenerateCandidateToken(ctx context.Context, candidateID uuid.UUID) (string, error) {
	loginKey := config.CacheKey.CandidateLoginKey(candidateID.String())

	existing, err := s.rdb.Get(ctx, loginKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("check login: %w", err)
	}
	if existing != "" {
		return "", ErrLoginAlreadyActive
	}

	jti := uuid.New().String()
	signed, err := s.sign(candidateID.String(), jti, model.RoleCandidate)
	if err != nil {
		return "", err
	}

	if err := s.rdb.Set(ctx, loginKey, jti, s.cfg.JWTExpiry).Err(); err != nil {
		return "", fmt.Errorf("store login: %w", err)
	}
	return signed, nil
}

// GenerateStaffToken creates a JWT for a staff account with the role's
// permission codes embedded.
func (s *AuthService) GenerateStaffToken(userID uuid.UUID, role model.Role) (string, error) {
	return s.sign(userID.String(), uuid.New().String(), role)
}

func (s *AuthService) sign(subject, jti string, role model.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		Role:        role,
		UserID:      subject,
		Permissions: model.PermissionsFor(role),
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
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidTokenClaims
	}
	return claims, nil
}

// ValidateCandidateLogin checks that the token's JTI matches the active
// login in Redis.
func (s *AuthService) ValidateCandidateLogin(ctx context.Context, candidateID, jti string) error {
	stored, err := s.rdb.Get(ctx, config.CacheKey.CandidateLoginKey(candidateID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNoActiveLogin
		}
		return fmt.Errorf("check login: %w", err)
	}
	if stored != jti {
		return ErrLoginInvalidated
	}
	return nil
}

// ResetCandidateLogin clears a candidate's login, allowing a new device.
func (s *AuthService) ResetCandidateLogin(ctx context.Context, candidateID string) error {
	return s.rdb.Del(ctx, config.CacheKey.CandidateLoginKey(candidateID)).Err()
}
