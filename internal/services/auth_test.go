package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"kamwaalay/config"
	"kamwaalay/internal/apperrors"
	"kamwaalay/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:        "test-secret-that-is-long-enough",
		JWTExpiryHours:   1,
		OTPExpiryMinutes: 10,
		OTPMaxAttempts:   3,
	}
}

func testUser() *models.User {
	user := &models.User{
		Name:  "Ayesha",
		Phone: "+923001234567",
		Roles: []models.Role{{Name: models.RoleHelper}},
	}
	user.ID = uuid.New()
	return user
}

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := HashPassword("secret-password")
	require.NoError(t, err)

	assert.NotEqual(t, "secret-password", hash)
	assert.True(t, CheckPassword(hash, "secret-password"))
	assert.False(t, CheckPassword(hash, "wrong-password"))
	assert.False(t, CheckPassword("not-a-hash", "secret-password"))
}

func TestTokenService_IssueAndParse(t *testing.T) {
	ctx := context.Background()
	service := NewTokenService(testConfig(), NewMemoryKeyStore())
	user := testUser()

	token, claims, err := service.Issue(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, []string{models.RoleHelper}, claims.Roles)
	assert.NotEmpty(t, claims.ID)

	parsed, err := service.Parse(ctx, token)
	require.NoError(t, err)

	userID, err := parsed.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, claims.ID, parsed.ID)
}

func TestTokenService_RejectsExpiredToken(t *testing.T) {
	service := NewTokenService(testConfig(), NewMemoryKeyStore())
	issuedAt := time.Now().Add(-2 * time.Hour)
	service.now = func() time.Time { return issuedAt }

	token, _, err := service.Issue(testUser())
	require.NoError(t, err)

	service.now = time.Now
	_, err = service.Parse(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsForeignSignature(t *testing.T) {
	issuer := NewTokenService(testConfig(), NewMemoryKeyStore())
	token, _, err := issuer.Issue(testUser())
	require.NoError(t, err)

	otherConfig := testConfig()
	otherConfig.JWTSecret = "a-completely-different-secret"
	verifier := NewTokenService(otherConfig, NewMemoryKeyStore())

	_, err = verifier.Parse(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = verifier.Parse(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Revoke(t *testing.T) {
	ctx := context.Background()
	service := NewTokenService(testConfig(), NewMemoryKeyStore())

	token, claims, err := service.Issue(testUser())
	require.NoError(t, err)

	require.NoError(t, service.Revoke(ctx, claims))

	_, err = service.Parse(ctx, token)
	assert.ErrorIs(t, err, ErrRevokedToken)
}

func newTestOTPService(store KeyStore, codes ...string) *OTPService {
	service := NewOTPService(testConfig(), store)
	index := 0
	service.generate = func() (string, error) {
		code := codes[index%len(codes)]
		index++
		return code, nil
	}
	return service
}

func TestOTPService_IssueAndVerify(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryKeyStore()
	service := newTestOTPService(store, "123456")
	phone := "+923001234567"

	code, err := service.Issue(ctx, phone, OTPPurposeRegister)
	require.NoError(t, err)
	assert.Equal(t, "123456", code)

	stored, found, err := store.Get(ctx, "otp:register:"+phone)
	require.NoError(t, err)
	assert.True(t, found)
	assert.NotEqual(t, code, stored, "only the hash is stored")

	require.NoError(t, service.Verify(ctx, phone, OTPPurposeRegister, "123456"))

	err = service.Verify(ctx, phone, OTPPurposeRegister, "123456")
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidOTP), "code is single use")
}

func TestOTPService_PurposeIsolation(t *testing.T) {
	ctx := context.Background()
	service := newTestOTPService(NewMemoryKeyStore(), "654321")
	phone := "+923001234567"

	_, err := service.Issue(ctx, phone, OTPPurposeLogin)
	require.NoError(t, err)

	err = service.Verify(ctx, phone, OTPPurposePasswordReset, "654321")
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidOTP))

	assert.NoError(t, service.Verify(ctx, phone, OTPPurposeLogin, "654321"))
}

func TestOTPService_BurnsAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryKeyStore()
	service := newTestOTPService(store, "111111")
	phone := "+923001234567"

	_, err := service.Issue(ctx, phone, OTPPurposeLogin)
	require.NoError(t, err)

	for range 2 {
		err := service.Verify(ctx, phone, OTPPurposeLogin, "000000")
		assert.True(t, apperrors.Is(err, apperrors.CodeInvalidOTP))
	}

	err = service.Verify(ctx, phone, OTPPurposeLogin, "000000")
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Fields["code"], "Too many failed attempts")

	err = service.Verify(ctx, phone, OTPPurposeLogin, "111111")
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidOTP), "burned code no longer works")
}

func TestOTPService_ReissueKeepsAttempts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryKeyStore()
	service := newTestOTPService(store, "222222", "333333", "444444")
	phone := "+923001234567"

	_, err := service.Issue(ctx, phone, OTPPurposeRegister)
	require.NoError(t, err)
	for range 2 {
		_ = service.Verify(ctx, phone, OTPPurposeRegister, "000000")
	}

	code, err := service.Issue(ctx, phone, OTPPurposeRegister)
	require.NoError(t, err)
	assert.Equal(t, "333333", code)

	err = service.Verify(ctx, phone, OTPPurposeRegister, "000000")
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Fields["code"], "Too many failed attempts")

	_, err = service.Issue(ctx, phone, OTPPurposeRegister)
	require.NoError(t, err)
	err = service.Verify(ctx, phone, OTPPurposeRegister, "444444")
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidOTP), "locked until the counter expires")

	store.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	service.generate = func() (string, error) { return "555555", nil }
	_, err = service.Issue(ctx, phone, OTPPurposeRegister)
	require.NoError(t, err)
	assert.NoError(t, service.Verify(ctx, phone, OTPPurposeRegister, "555555"))
}

func TestGenerateNumericCode(t *testing.T) {
	for range 20 {
		code, err := generateNumericCode()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}

func TestIsValidOTPPurpose(t *testing.T) {
	assert.True(t, IsValidOTPPurpose("register"))
	assert.True(t, IsValidOTPPurpose("password_reset"))
	assert.False(t, IsValidOTPPurpose("signup"))
}
