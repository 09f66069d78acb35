package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"poker-tracker/internal/repository"
)

// MinPasswordLength is the shortest host password Provision accepts.
const MinPasswordLength = 8

// AuthService authenticates the host and issues bearer tokens.
type AuthService struct {
	creds    CredentialStore
	throttle LoginThrottle
	secret   []byte
	tokenTTL time.Duration
	hashCost int
	now      func() time.Time
}

// AuthOption customizes an AuthService.
type AuthOption func(*AuthService)

// WithHashCost sets the bcrypt cost used by Provision.
func WithHashCost(cost int) AuthOption {
	return func(s *AuthService) { s.hashCost = cost }
}

// WithClock replaces the time source used for token timestamps.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

// NewAuthService creates a new AuthService instance. A nil throttle disables login throttling.
func NewAuthService(creds CredentialStore, throttle LoginThrottle, secret string, tokenTTL time.Duration, opts ...AuthOption) *AuthService {
	if throttle == nil {
		throttle = noopThrottle{}
	}
	s := &AuthService{
		creds:    creds,
		throttle: throttle,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login checks the credentials and returns a signed token for the host.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	allowed, err := s.throttle.Allow(ctx, username)
	if err != nil {
		log.Warn().Err(err).Str("username", username).Msg("Login throttle unavailable")
	} else if !allowed {
		return "", ErrTooManyAttempts
	}

	user, err := s.creds.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.recordFailure(ctx, username)
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to load credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordFailure(ctx, username)
		return "", ErrInvalidCredentials
	}

	if err := s.throttle.Reset(ctx, username); err != nil {
		log.Warn().Err(err).Str("username", username).Msg("Failed to reset login throttle")
	}

	return s.issueToken(user.Username)
}

func (s *AuthService) recordFailure(ctx context.Context, username string) {
	log.Info().Str("username", username).Msg("Failed login attempt")
	if err := s.throttle.Fail(ctx, username); err != nil {
		log.Warn().Err(err).Str("username", username).Msg("Failed to record login failure")
	}
}

func (s *AuthService) issueToken(username string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// ValidateToken verifies a bearer token and returns the username it was issued to.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// Provision creates the host credential. It refuses when a host already exists.
func (s *AuthService) Provision(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: at least %d characters required", ErrWeakPassword, MinPasswordLength)
	}

	exists, err := s.creds.Any(ctx)
	if err != nil {
		return err
	}
	if exists {
		return ErrHostExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := s.creds.Create(ctx, username, string(hash)); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return ErrHostExists
		}
		return err
	}

	log.Info().Str("username", username).Msg("Host provisioned")
	return nil
}

// HostProvisioned reports whether a host credential exists.
func (s *AuthService) HostProvisioned(ctx context.Context) (bool, error) {
	return s.creds.Any(ctx)
}

type noopThrottle struct{}

func (noopThrottle) Allow(context.Context, string) (bool, error) { return true, nil }
func (noopThrottle) Fail(context.Context, string) error          { return nil }
func (noopThrottle) Reset(context.Context, string) error         { return nil }
