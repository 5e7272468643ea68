package service

import (
	"context"
	"testing"
	"time"

	"foodgram/internal/api/dto"
	"foodgram/internal/api/models"
	"foodgram/internal/auth"
	"foodgram/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func newAuthServiceForTest() (AuthService, *MockUserRepository, *MockRefreshTokenRepository) {
	userRepo := new(MockUserRepository)
	tokenRepo := new(MockRefreshTokenRepository)
	cfg := &config.Config{
		JWTSecret:       "test-secret-key-that-is-long-enough!",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
	return NewAuthService(userRepo, tokenRepo, cfg), userRepo, tokenRepo
}

func TestRegister_HashesPassword(t *testing.T) {
	svc, userRepo, _ := newAuthServiceForTest()

	userRepo.On("FindByUsername", mock.Anything, "newuser").Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username:  "newuser",
		Email:     "new@example.com",
		Password:  "plaintext-password",
		FirstName: "New",
		LastName:  "User",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "plaintext-password", user.Password)
	assert.NoError(t, auth.VerifyPassword(user.Password, "plaintext-password"))
	userRepo.AssertExpectations(t)
}

func TestRegister_UsernameTaken(t *testing.T) {
	svc, userRepo, _ := newAuthServiceForTest()

	userRepo.On("FindByUsername", mock.Anything, "taken").
		Return(&models.User{ID: "existing"}, nil)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "taken",
		Email:    "a@example.com",
		Password: "pw",
	})

	assert.ErrorIs(t, err, ErrNameInUse)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin_SuccessAndTokenRoundTrip(t *testing.T) {
	svc, userRepo, tokenRepo := newAuthServiceForTest()

	hash, err := auth.HashPassword("correct-password")
	assert.NoError(t, err)
	user := &models.User{ID: "user-1", Username: "cook", Password: hash}

	userRepo.On("FindByUsername", mock.Anything, "cook").Return(user, nil)
	tokenRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.RefreshToken")).Return(nil)

	access, refresh, got, err := svc.Login(context.Background(), "cook", "correct-password")

	assert.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.Equal(t, "user-1", got.ID)

	// the issued access token validates against the same service
	claims, err := svc.ValidateToken(access)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "cook", claims.Username)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, userRepo, _ := newAuthServiceForTest()

	hash, _ := auth.HashPassword("correct-password")
	userRepo.On("FindByUsername", mock.Anything, "cook").
		Return(&models.User{ID: "user-1", Password: hash}, nil)

	_, _, _, err := svc.Login(context.Background(), "cook", "wrong")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, userRepo, _ := newAuthServiceForTest()

	userRepo.On("FindByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)

	_, _, _, err := svc.Login(context.Background(), "ghost", "whatever")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc, _, _ := newAuthServiceForTest()

	_, err := svc.ValidateToken("not-a-jwt")

	assert.Error(t, err)
}

func TestRefreshAccessToken_Revoked(t *testing.T) {
	svc, _, tokenRepo := newAuthServiceForTest()

	tokenRepo.On("FindByToken", mock.Anything, "revoked-token").
		Return(&models.RefreshToken{
			ID:        "t1",
			UserID:    "user-1",
			Token:     "revoked-token",
			Revoked:   true,
			ExpiresAt: time.Now().Add(time.Hour),
		}, nil)

	_, err := svc.RefreshAccessToken(context.Background(), "revoked-token")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshAccessToken_Expired(t *testing.T) {
	svc, _, tokenRepo := newAuthServiceForTest()

	tokenRepo.On("FindByToken", mock.Anything, "old-token").
		Return(&models.RefreshToken{
			ID:        "t1",
			UserID:    "user-1",
			Token:     "old-token",
			ExpiresAt: time.Now().Add(-time.Hour),
		}, nil)
	tokenRepo.On("Delete", mock.Anything, "t1").Return(nil)

	_, err := svc.RefreshAccessToken(context.Background(), "old-token")

	assert.ErrorIs(t, err, ErrExpiredToken)
	tokenRepo.AssertExpectations(t)
}

func TestSetPassword_SameAsCurrent(t *testing.T) {
	svc, userRepo, _ := newAuthServiceForTest()

	err := svc.SetPassword(context.Background(), "user-1", "samepw", "samepw")

	assert.ErrorIs(t, err, ErrSamePassword)
	userRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetPassword_WrongCurrent(t *testing.T) {
	svc, userRepo, _ := newAuthServiceForTest()

	hash, _ := auth.HashPassword("actual-current")
	userRepo.On("FindByID", mock.Anything, "user-1").
		Return(&models.User{ID: "user-1", Password: hash}, nil)

	err := svc.SetPassword(context.Background(), "user-1", "new-password", "wrong-current")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
