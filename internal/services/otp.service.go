package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"slices"
	"strconv"
	"time"

	"kamwaalay/config"
	"kamwaalay/internal/apperrors"
	"kamwaalay/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
)

type OTPPurpose string

const (
	OTPPurposeRegister      OTPPurpose = "register"
	OTPPurposeLogin         OTPPurpose = "login"
	OTPPurposePasswordReset OTPPurpose = "password_reset"
)

var OTPPurposes = []OTPPurpose{OTPPurposeRegister, OTPPurposeLogin, OTPPurposePasswordReset}

func IsValidOTPPurpose(value string) bool {
	return slices.Contains(OTPPurposes, OTPPurpose(value))
}

const (
	otpDigits        = 6
	otpCodePrefix    = "otp"
	otpAttemptPrefix = "otp_attempts"
	tooManyAttempts  = "Too many failed attempts, request a new code"
)

type OTPService struct {
	store       KeyStore
	expiry      time.Duration
	maxAttempts int64
	generate    func() (string, error)
	log         logger.Logger
}

func NewOTPService(config config.Config, store KeyStore) *OTPService {
	return &OTPService{
		store:       store,
		expiry:      time.Duration(config.OTPExpiryMinutes) * time.Minute,
		maxAttempts: int64(config.OTPMaxAttempts),
		generate:    generateNumericCode,
		log:         logger.New("OTPService"),
	}
}

// Issue creates a fresh code for phone and purpose, replacing any earlier
// one. The attempt counter survives re-issues and only expires with its TTL.
// Only a hash of the code is stored.
func (s *OTPService) Issue(ctx context.Context, phone string, purpose OTPPurpose) (string, error) {
	log := s.log.TraceFromContext(ctx).Function("Issue")

	code, err := s.generate()
	if err != nil {
		return "", log.Err("failed to generate otp", err)
	}

	if err := s.store.Set(ctx, otpCodeKey(phone, purpose), hashOTP(phone, purpose, code), s.expiry); err != nil {
		return "", log.Err("failed to store otp", err, "phone", utils.MaskPhone(phone), "purpose", purpose)
	}

	log.Info("OTP issued", "phone", utils.MaskPhone(phone), "purpose", purpose)
	return code, nil
}

// Verify consumes the code on success. Every failure counts as an attempt and
// the code is burned once the limit is reached.
func (s *OTPService) Verify(ctx context.Context, phone string, purpose OTPPurpose, code string) error {
	log := s.log.TraceFromContext(ctx).Function("Verify")

	codeKey := otpCodeKey(phone, purpose)
	attemptKey := otpAttemptKey(phone, purpose)

	stored, found, err := s.store.Get(ctx, codeKey)
	if err != nil {
		return log.Err("failed to read otp", err)
	}
	if !found {
		return invalidOTP("The code is invalid or has expired")
	}

	locked, err := s.locked(ctx, attemptKey)
	if err != nil {
		return log.Err("failed to read otp attempts", err)
	}
	if locked {
		if err := s.store.Delete(ctx, codeKey); err != nil {
			log.Warn("failed to burn otp", "error", err)
		}
		return invalidOTP(tooManyAttempts)
	}

	expected := hashOTP(phone, purpose, code)
	if subtle.ConstantTimeCompare([]byte(stored), []byte(expected)) == 1 {
		if err := s.store.Delete(ctx, codeKey); err != nil {
			log.Warn("failed to delete used otp", "error", err)
		}
		if err := s.store.Delete(ctx, attemptKey); err != nil {
			log.Warn("failed to reset otp attempts", "error", err)
		}
		return nil
	}

	attempts, err := s.store.Incr(ctx, attemptKey, s.expiry)
	if err != nil {
		return log.Err("failed to count otp attempt", err)
	}

	if attempts >= s.maxAttempts {
		if err := s.store.Delete(ctx, codeKey); err != nil {
			log.Warn("failed to burn otp", "error", err)
		}
		log.Info("OTP burned after too many attempts", "phone", utils.MaskPhone(phone), "purpose", purpose)
		return invalidOTP(tooManyAttempts)
	}

	return invalidOTP("The code is invalid or has expired")
}

func (s *OTPService) locked(ctx context.Context, attemptKey string) (bool, error) {
	value, found, err := s.store.Get(ctx, attemptKey)
	if err != nil || !found {
		return false, err
	}
	attempts, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return false, err
	}
	return attempts >= s.maxAttempts, nil
}

func invalidOTP(message string) error {
	return apperrors.Field("code", message).WithCode(apperrors.CodeInvalidOTP)
}

func hashOTP(phone string, purpose OTPPurpose, code string) string {
	return utils.HashString(phone, string(purpose), code)
}

func otpCodeKey(phone string, purpose OTPPurpose) string {
	return fmt.Sprintf("%s:%s:%s", otpCodePrefix, purpose, phone)
}

func otpAttemptKey(phone string, purpose OTPPurpose) string {
	return fmt.Sprintf("%s:%s:%s", otpAttemptPrefix, purpose, phone)
}

func generateNumericCode() (string, error) {
	max := big.NewInt(1)
	for range otpDigits {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}
