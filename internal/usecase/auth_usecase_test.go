package usecase_test

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"testing"
	"time"

	"mall/internal/config"
	"mall/internal/domain/model"
	repo "mall/internal/repository"
	"mall/internal/usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementTokenVersion(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, f repo.UserListFilter) ([]model.User, int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]model.User), args.Get(1).(int64), args.Error(2)
}

type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	rt, _ := args.Get(0).(*model.RefreshToken)
	return rt, args.Error(1)
}

func (m *MockRefreshTokenRepository) MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	args := m.Called(ctx, tokenID, usedAt)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteAllByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteByID(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func testConfig() config.Config {
	return config.Config{JWTSecret: "test-secret"}
}

func sha256Hash(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func activeUser(password string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &model.User{
		ID:           1,
		Name:         "taro",
		Email:        "taro@test.com",
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		TokenVersion: 2,
		IsActive:     true,
	}
}

func TestAuthUsecase_Register_HashesPassword(t *testing.T) {
	ctx := context.Background()

	users := new(MockUserRepository)
	users.On("FindByEmail", mock.Anything, "taro@test.com").Return(nil, nil)

	var created *model.User
	users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*model.User) }).
		Return(nil)

	uc := usecase.NewAuthUsecase(testConfig(), users, new(MockRefreshTokenRepository))

	res, err := uc.Register(ctx, usecase.AuthRegisterRequest{
		Name:     "taro",
		Email:    "taro@test.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "taro@test.com", res.User.Email)
	assert.Equal(t, "USER", res.User.Role)

	//平文では保存されない
	require.NotNil(t, created)
	assert.NotEqual(t, "password123", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("password123")))
}

func TestAuthUsecase_Register_DuplicateEmail(t *testing.T) {
	users := new(MockUserRepository)
	users.On("FindByEmail", mock.Anything, "taro@test.com").Return(activeUser("password123"), nil)

	uc := usecase.NewAuthUsecase(testConfig(), users, new(MockRefreshTokenRepository))

	_, err := uc.Register(context.Background(), usecase.AuthRegisterRequest{
		Name:     "taro",
		Email:    "taro@test.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, usecase.ErrConflict)
}

func TestAuthUsecase_Register_Validation(t *testing.T) {
	uc := usecase.NewAuthUsecase(testConfig(), new(MockUserRepository), new(MockRefreshTokenRepository))

	cases := []usecase.AuthRegisterRequest{
		{Name: "", Email: "taro@test.com", Password: "password123"},
		{Name: "taro", Email: "not-an-email", Password: "password123"},
		{Name: "taro", Email: "taro@test.com", Password: "short"},
	}
	for _, req := range cases {
		_, err := uc.Register(context.Background(), req)
		assert.ErrorIs(t, err, usecase.ErrValidation)
	}
}

func TestAuthUsecase_Login_Success(t *testing.T) {
	ctx := context.Background()

	user := activeUser("password123")

	users := new(MockUserRepository)
	users.On("FindByEmail", mock.Anything, "taro@test.com").Return(user, nil)
	users.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	var storedRT *model.RefreshToken
	rts := new(MockRefreshTokenRepository)
	rts.On("Create", mock.Anything, mock.AnythingOfType("*model.RefreshToken")).
		Run(func(args mock.Arguments) { storedRT = args.Get(1).(*model.RefreshToken) }).
		Return(nil)

	uc := usecase.NewAuthUsecase(testConfig(), users, rts)

	res, err := uc.Login(ctx, usecase.AuthLoginRequest{Email: "taro@test.com", Password: "password123"}, "ua-1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Body.Token.AccessToken)
	assert.Equal(t, 2, res.Body.Token.TokenVersion)
	assert.NotEmpty(t, res.CsrfTokenPlain)

	//DBにはhashのみ。平文のsha256と一致する
	require.NotNil(t, storedRT)
	assert.NotEqual(t, res.RefreshTokenPlain, storedRT.TokenHash)
	assert.Equal(t, sha256Hash(res.RefreshTokenPlain), storedRT.TokenHash)
	assert.Equal(t, "ua-1", storedRT.UserAgent)

	//access tokenのclaimsを検証
	parsed, err := jwt.Parse(res.Body.Token.AccessToken, func(tk *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(1), claims["sub"])
	assert.Equal(t, "USER", claims["role"])
	assert.Equal(t, float64(2), claims["tv"])
}

func TestAuthUsecase_Login_WrongPassword(t *testing.T) {
	users := new(MockUserRepository)
	users.On("FindByEmail", mock.Anything, "taro@test.com").Return(activeUser("password123"), nil)

	uc := usecase.NewAuthUsecase(testConfig(), users, new(MockRefreshTokenRepository))

	_, err := uc.Login(context.Background(), usecase.AuthLoginRequest{Email: "taro@test.com", Password: "wrongwrong"}, "")
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)
}

func TestAuthUsecase_Login_InactiveUser(t *testing.T) {
	user := activeUser("password123")
	user.IsActive = false

	users := new(MockUserRepository)
	users.On("FindByEmail", mock.Anything, "taro@test.com").Return(user, nil)

	uc := usecase.NewAuthUsecase(testConfig(), users, new(MockRefreshTokenRepository))

	_, err := uc.Login(context.Background(), usecase.AuthLoginRequest{Email: "taro@test.com", Password: "password123"}, "")
	assert.ErrorIs(t, err, usecase.ErrForbidden)
}

func TestAuthUsecase_Refresh_RotatesToken(t *testing.T) {
	ctx := context.Background()

	user := activeUser("password123")
	oldHash := sha256Hash("old-refresh-token")

	rts := new(MockRefreshTokenRepository)
	rts.On("FindByTokenHash", mock.Anything, oldHash).Return(&model.RefreshToken{
		ID:        "rt-1",
		UserID:    1,
		TokenHash: oldHash,
		UserAgent: "ua-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	rts.On("MarkUsed", mock.Anything, "rt-1", mock.AnythingOfType("time.Time")).Return(nil)

	var newRT *model.RefreshToken
	rts.On("Create", mock.Anything, mock.AnythingOfType("*model.RefreshToken")).
		Run(func(args mock.Arguments) { newRT = args.Get(1).(*model.RefreshToken) }).
		Return(nil)

	users := new(MockUserRepository)
	users.On("FindByID", mock.Anything, int64(1)).Return(user, nil)

	uc := usecase.NewAuthUsecase(testConfig(), users, rts)

	res, err := uc.Refresh(ctx, "old-refresh-token", "ua-1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Body.AccessToken)

	//新しいrefresh tokenに差し替わっている
	require.NotNil(t, newRT)
	assert.NotEqual(t, "rt-1", newRT.ID)
	assert.NotEqual(t, oldHash, newRT.TokenHash)
	assert.Equal(t, sha256Hash(res.RefreshTokenPlain), newRT.TokenHash)

	rts.AssertCalled(t, "MarkUsed", mock.Anything, "rt-1", mock.AnythingOfType("time.Time"))
}

// used済みtokenの再提示はreplay。そのユーザーのtokenを全削除する
func TestAuthUsecase_Refresh_ReplayDeletesAll(t *testing.T) {
	usedAt := time.Now().Add(-time.Minute)
	hash := sha256Hash("stolen-token")

	rts := new(MockRefreshTokenRepository)
	rts.On("FindByTokenHash", mock.Anything, hash).Return(&model.RefreshToken{
		ID:        "rt-1",
		UserID:    1,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(time.Hour),
		UsedAt:    &usedAt,
	}, nil)
	rts.On("DeleteAllByUserID", mock.Anything, int64(1)).Return(nil)

	uc := usecase.NewAuthUsecase(testConfig(), new(MockUserRepository), rts)

	_, err := uc.Refresh(context.Background(), "stolen-token", "ua-1")
	assert.ErrorIs(t, err, usecase.ErrSecurityIncident)
	rts.AssertCalled(t, "DeleteAllByUserID", mock.Anything, int64(1))
}

func TestAuthUsecase_Refresh_Expired(t *testing.T) {
	hash := sha256Hash("expired-token")

	rts := new(MockRefreshTokenRepository)
	rts.On("FindByTokenHash", mock.Anything, hash).Return(&model.RefreshToken{
		ID:        "rt-1",
		UserID:    1,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(-time.Hour),
	}, nil)
	rts.On("DeleteByID", mock.Anything, "rt-1").Return(nil)

	uc := usecase.NewAuthUsecase(testConfig(), new(MockUserRepository), rts)

	_, err := uc.Refresh(context.Background(), "expired-token", "")
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)
	rts.AssertCalled(t, "DeleteByID", mock.Anything, "rt-1")
}

func TestAuthUsecase_Refresh_UserAgentMismatch(t *testing.T) {
	hash := sha256Hash("token")

	rts := new(MockRefreshTokenRepository)
	rts.On("FindByTokenHash", mock.Anything, hash).Return(&model.RefreshToken{
		ID:        "rt-1",
		UserID:    1,
		TokenHash: hash,
		UserAgent: "ua-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	rts.On("DeleteAllByUserID", mock.Anything, int64(1)).Return(nil)

	uc := usecase.NewAuthUsecase(testConfig(), new(MockUserRepository), rts)

	_, err := uc.Refresh(context.Background(), "token", "ua-2")
	assert.ErrorIs(t, err, usecase.ErrSecurityIncident)
}

func TestAuthUsecase_ForceLogout(t *testing.T) {
	ctx := context.Background()

	bumped := activeUser("password123")
	bumped.TokenVersion = 3

	users := new(MockUserRepository)
	users.On("IncrementTokenVersion", mock.Anything, int64(1)).Return(nil)
	users.On("FindByID", mock.Anything, int64(1)).Return(bumped, nil)

	rts := new(MockRefreshTokenRepository)
	rts.On("DeleteAllByUserID", mock.Anything, int64(1)).Return(nil)

	uc := usecase.NewAuthUsecase(testConfig(), users, rts)

	res, err := uc.ForceLogout(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.UserID)
	assert.Equal(t, 3, res.NewTokenVersion)

	users.AssertCalled(t, "IncrementTokenVersion", mock.Anything, int64(1))
	rts.AssertCalled(t, "DeleteAllByUserID", mock.Anything, int64(1))
}
