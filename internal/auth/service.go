package auth

import (
	"context"
	"errors"
	"log/slog"

	apperrors "github.com/frahmantamala/safety-management/internal"
	"golang.org/x/crypto/bcrypt"
)

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetUserWithPermissions(ctx context.Context, userID int64) (*User, error)
}

type RepositoryAPI interface {
	GetCredentialsByEmail(ctx context.Context, email string) (*Credentials, error)
	GetUserWithPermissions(ctx context.Context, userID int64) (*User, error)
}

// ErrUserNotFound is returned by repositories; the service never leaks it to callers.
var ErrUserNotFound = errors.New("user not found")

type Service struct {
	repo   RepositoryAPI
	tokens TokenGeneratorAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, tokens TokenGeneratorAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		logger: logger,
	}
}

func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	creds, err := s.repo.GetCredentialsByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return AuthTokens{}, apperrors.ErrInvalidCredentials
		}
		return AuthTokens{}, apperrors.NewInternalError("failed to load credentials", err)
	}

	if err := VerifyPassword(creds.PasswordHash, dto.Password); err != nil {
		return AuthTokens{}, apperrors.ErrInvalidCredentials
	}
	if !creds.IsActive {
		return AuthTokens{}, apperrors.ErrUserInactive
	}

	s.logger.Info("user authenticated", "user_id", creds.UserID, "tenant_id", creds.TenantID)
	return s.issue(*creds)
}

func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	user, err := s.GetUserWithPermissions(ctx, claims.UserID)
	if err != nil {
		return AuthTokens{}, err
	}

	return s.issue(Credentials{UserID: user.ID, TenantID: user.TenantID, Email: user.Email})
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateAccessToken(tokenString)
}

func (s *Service) GetUserWithPermissions(ctx context.Context, userID int64) (*User, error) {
	user, err := s.repo.GetUserWithPermissions(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.NewInternalError("failed to load user", err)
	}
	return user, nil
}

func (s *Service) issue(c Credentials) (AuthTokens, error) {
	access, err := s.tokens.GenerateAccessToken(c)
	if err != nil {
		return AuthTokens{}, apperrors.NewInternalError("failed to sign access token", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(c)
	if err != nil {
		return AuthTokens{}, apperrors.NewInternalError("failed to sign refresh token", err)
	}
	return AuthTokens{AccessToken: access, RefreshToken: refresh}, nil
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
