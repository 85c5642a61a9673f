package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-service/internal/hashing"
	"storefront-service/internal/models"
	"storefront-service/internal/service"
	"storefront-service/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepo
type MockUserRepo struct {
	GetByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
}

func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, nil
}

func newAuth(t *testing.T, role models.Role) (*service.AuthService, *token.HSProvider) {
	t.Helper()
	hasher := hashing.NewBcrypt(bcrypt.MinCost)
	hash, err := hasher.Hash("admin123")
	require.NoError(t, err)

	users := &MockUserRepo{
		GetByUsernameFunc: func(_ context.Context, username string) (*models.User, error) {
			if username != "admin" {
				return nil, nil
			}
			return &models.User{ID: 7, Username: "admin", Password: hash, Role: role}, nil
		},
	}
	tokens := token.NewHSProvider("test-secret", "storefront", "storefront-admin")
	return service.NewAuthService(users, hasher, tokens, time.Hour, zap.NewNop()), tokens
}

func TestAuthService_LoginAndAuthenticate(t *testing.T) {
	auth, _ := newAuth(t, models.RoleAdmin)
	ctx := context.Background()

	tok, exp, user, err := auth.Login(ctx, " admin ", "admin123")
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
	assert.Equal(t, uint(7), user.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := auth.Authenticate(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "admin", claims.Username)
}

func TestAuthService_LoginFailures(t *testing.T) {
	auth, _ := newAuth(t, models.RoleAdmin)
	ctx := context.Background()

	for _, tc := range []struct{ user, pass string }{
		{"admin", "wrong"},
		{"ghost", "admin123"},
		{"", ""},
	} {
		_, _, _, err := auth.Login(ctx, tc.user, tc.pass)
		assert.True(t, errors.Is(err, service.ErrInvalidCredentials), "%s/%s: %v", tc.user, tc.pass, err)
	}
}

func TestAuthService_LoginRepoError(t *testing.T) {
	boom := errors.New("db down")
	users := &MockUserRepo{GetByUsernameFunc: func(context.Context, string) (*models.User, error) { return nil, boom }}
	auth := service.NewAuthService(users, hashing.NewBcrypt(bcrypt.MinCost), token.NewHSProvider("s", "i", "a"), time.Hour, zap.NewNop())

	_, _, _, err := auth.Login(context.Background(), "admin", "x")
	assert.True(t, errors.Is(err, boom))
}

func TestAuthService_Authenticate_Rejects(t *testing.T) {
	auth, _ := newAuth(t, models.RoleAdmin)
	_, err := auth.Authenticate(context.Background(), "not-a-jwt")
	assert.True(t, errors.Is(err, service.ErrUnauthorized))

	other := token.NewHSProvider("other-secret", "storefront", "storefront-admin")
	foreign, _, err := other.SignAccess(context.Background(), 1, "admin", "admin", time.Hour)
	require.NoError(t, err)
	_, err = auth.Authenticate(context.Background(), foreign)
	assert.True(t, errors.Is(err, service.ErrUnauthorized))

	// токен с чужой ролью подписан верным ключом, но доступа не даёт
	_, tokens := newAuth(t, models.RoleAdmin)
	customerTok, _, err := tokens.SignAccess(context.Background(), 2, "bob", "customer", time.Hour)
	require.NoError(t, err)
	_, err = auth.Authenticate(context.Background(), customerTok)
	assert.True(t, errors.Is(err, service.ErrForbidden))
}
