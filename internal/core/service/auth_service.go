package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/harvestchurch/content-platform/internal/core/domain"
	"github.com/harvestchurch/content-platform/internal/core/ports"
)

// tokenClaims is the JWT payload. The role is informational; authorization
// always re-reads the account so role changes apply on the next request.
type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues, verifies, refreshes and revokes credentials.
type AuthService struct {
	repo      ports.UserRepository
	revoker   ports.TokenRevoker
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, revoker ports.TokenRevoker, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = domain.CredentialTTL
	}
	return &AuthService{
		repo:      repo,
		revoker:   revoker,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
		log:       log,
	}
}

func (s *AuthService) Signup(ctx context.Context, reg ports.Registration) (*ports.IssuedToken, error) {
	email := normalizeEmail(reg.Email)
	if email == "" || reg.Secret == "" || strings.TrimSpace(reg.DisplayName) == "" {
		return nil, fmt.Errorf("signup: %w", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("signup: hash secret: %w", err)
	}

	now := s.now().UTC()
	user, err := s.repo.Create(ctx, &domain.User{
		Email:        email,
		DisplayName:  strings.TrimSpace(reg.DisplayName),
		PasswordHash: string(hash),
		Role:         domain.RoleMember,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("account created")
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, identifier, secret string) (*ports.IssuedToken, error) {
	email := normalizeEmail(identifier)
	if email == "" || secret == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(secret)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, fmt.Errorf("login: account deactivated: %w", domain.ErrUnauthenticated)
	}

	return s.issue(user)
}

func (s *AuthService) Verify(ctx context.Context, rawToken string) (*domain.Actor, error) {
	_, user, err := s.authenticate(ctx, rawToken)
	if err != nil {
		return nil, err
	}
	return user.Actor(), nil
}

// Refresh exchanges a live token for a fresh one and revokes the old token,
// so exactly one credential stays valid.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*ports.IssuedToken, error) {
	claims, user, err := s.authenticate(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	issued, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return nil, fmt.Errorf("refresh: revoke previous token: %w", err)
	}
	return issued, nil
}

// Logout revokes the token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.parse(rawToken)
	if err != nil {
		return err
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Str("user_id", claims.Subject).Msg("token revoked")
	return nil
}

func (s *AuthService) authenticate(ctx context.Context, rawToken string) (*tokenClaims, *domain.User, error) {
	claims, err := s.parse(rawToken)
	if err != nil {
		return nil, nil, err
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, nil, fmt.Errorf("token revoked: %w", domain.ErrUnauthenticated)
	}

	user, err := s.repo.FindByID(ctx, claims.Subject)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil, fmt.Errorf("token subject unknown: %w", domain.ErrUnauthenticated)
	}
	if err != nil {
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, fmt.Errorf("account deactivated: %w", domain.ErrUnauthenticated)
	}
	return claims, user, nil
}

func (s *AuthService) parse(rawToken string) (*tokenClaims, error) {
	if rawToken == "" {
		return nil, domain.ErrUnauthenticated
	}
	claims := &tokenClaims{}
	tkn, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tkn.Valid || claims.ID == "" || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token: %w", domain.ErrUnauthenticated)
	}
	return claims, nil
}

func (s *AuthService) issue(user *domain.User) (*ports.IssuedToken, error) {
	issuedAt := s.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.tokenTTL)

	claims := tokenClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &ports.IssuedToken{
		Token:     signed,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
		Actor:     user.Actor(),
	}, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
