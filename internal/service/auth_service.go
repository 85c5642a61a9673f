package service

import (
	"context"
	"strings"
	"time"

	"storefront-service/internal/models"

	"go.uber.org/zap"
)

type AuthService struct {
	users     UserRepo
	hasher    PasswordHasher
	tokens    TokenProvider
	accessTTL time.Duration
	log       *zap.Logger
}

func NewAuthService(users UserRepo, hasher PasswordHasher, tokens TokenProvider, accessTTL time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		accessTTL: accessTTL,
		log:       log,
	}
}

// Login проверяет пароль администратора и выдаёт access-токен.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, time.Time, *models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", time.Time{}, nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	if user == nil || !s.hasher.Compare(user.Password, password) {
		s.log.Warn("failed admin login", zap.String("username", username))
		return "", time.Time{}, nil, ErrInvalidCredentials
	}

	token, exp, err := s.tokens.SignAccess(ctx, user.ID, user.Username, string(user.Role), s.accessTTL)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return token, exp, user, nil
}

// Authenticate разбирает bearer-токен и требует роль admin.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.ParseAndValidateAccess(ctx, token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if claims.Role != string(models.RoleAdmin) {
		return nil, ErrForbidden
	}
	return claims, nil
}
