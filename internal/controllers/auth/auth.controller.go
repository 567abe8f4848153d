package authController

import (
	"context"
	"errors"
	"strings"
	"time"

	"kamwaalay/config"
	"kamwaalay/internal/apperrors"
	"kamwaalay/internal/database"
	. "kamwaalay/internal/models"
	"kamwaalay/internal/repositories"
	"kamwaalay/internal/services"
	"kamwaalay/internal/utils"
	"kamwaalay/internal/validation"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name     string  `json:"name"     validate:"required,max=255"`
	Phone    string  `json:"phone"    validate:"required,pkphone"`
	Email    *string `json:"email"    validate:"omitempty,email,max=255"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Role     string  `json:"role"     validate:"required,oneof=user helper business"`
	Locale   string  `json:"locale"   validate:"omitempty,locale"`
}

type VerifyOTPRequest struct {
	Phone   string `json:"phone"   validate:"required,pkphone"`
	Code    string `json:"code"    validate:"required,len=6,numeric"`
	Purpose string `json:"purpose" validate:"required,oneof=register login"`
}

type ResendOTPRequest struct {
	Phone   string `json:"phone"   validate:"required,pkphone"`
	Purpose string `json:"purpose" validate:"required,oneof=register login password_reset"`
}

type LoginRequest struct {
	Login    string `json:"login"    validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

type PhoneRequest struct {
	Phone string `json:"phone" validate:"required,pkphone"`
}

type ResetPasswordRequest struct {
	Phone                string `json:"phone"                validate:"required,pkphone"`
	Code                 string `json:"code"                 validate:"required,len=6,numeric"`
	Password             string `json:"password"             validate:"required,min=8,max=72"`
	PasswordConfirmation string `json:"passwordConfirmation" validate:"required,eqfield=Password"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

// OTPResponse echoes the code only when OTP debugging is enabled.
type OTPResponse struct {
	Message string  `json:"message"`
	User    *User   `json:"user,omitempty"`
	OTP     *string `json:"otp,omitempty"`
}

type AuthControllerInterface interface {
	Register(ctx context.Context, request RegisterRequest) (*OTPResponse, error)
	VerifyOTP(ctx context.Context, request VerifyOTPRequest) (*AuthResponse, error)
	ResendOTP(ctx context.Context, request ResendOTPRequest) (*OTPResponse, error)
	Login(ctx context.Context, request LoginRequest) (*AuthResponse, error)
	LoginOTP(ctx context.Context, request PhoneRequest) (*OTPResponse, error)
	ForgotPassword(ctx context.Context, request PhoneRequest) (*OTPResponse, error)
	ResetPassword(ctx context.Context, request ResetPasswordRequest) error
	Logout(ctx context.Context, claims *services.Claims) error
	Me(ctx context.Context, user *User) (*User, error)
}

type AuthController struct {
	userRepo           repositories.UserRepository
	roleRepo           repositories.RoleRepository
	tokenService       *services.TokenService
	otpService         *services.OTPService
	otpSender          services.OTPSender
	transactionService *services.TransactionService
	db                 database.DB
	config             config.Config
	now                func() time.Time
	log                logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) AuthControllerInterface {
	return &AuthController{
		userRepo:           repos.User,
		roleRepo:           repos.Role,
		tokenService:       services.Token,
		otpService:         services.OTP,
		otpSender:          services.OTPSender,
		transactionService: services.Transaction,
		db:                 db,
		config:             config,
		now:                time.Now,
		log:                logger.New("authController"),
	}
}

var (
	errInvalidCredentials = apperrors.Unauthorized("Invalid credentials")
	errAccountInactive    = apperrors.Forbidden("Your account has been deactivated")
)

func (c *AuthController) Register(ctx context.Context, request RegisterRequest) (*OTPResponse, error) {
	log := c.log.TraceFromContext(ctx).Function("Register")

	if err := validation.Struct(request); err != nil {
		return nil, err
	}

	phone, _ := utils.NormalizePhone(request.Phone)
	email := normalizeEmail(request.Email)

	fields := map[string]string{}
	exists, err := c.userRepo.PhoneExists(ctx, c.db.SQL, phone)
	if err != nil {
		return nil, err
	}
	if exists {
		fields["phone"] = "The phone has already been taken"
	}
	if email != nil {
		exists, err := c.userRepo.EmailExists(ctx, c.db.SQL, *email)
		if err != nil {
			return nil, err
		}
		if exists {
			fields["email"] = "The email has already been taken"
		}
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation(fields)
	}

	role, err := c.roleRepo.GetByName(ctx, c.db.SQL, request.Role)
	if err != nil {
		return nil, err
	}

	passwordHash, err := services.HashPassword(request.Password)
	if err != nil {
		return nil, log.Err("failed to hash password", err)
	}

	locale := request.Locale
	if locale == "" {
		locale = c.config.DefaultLocale
	}

	user := &User{
		Name:         strings.TrimSpace(request.Name),
		Phone:        phone,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
		Locale:       locale,
		Roles:        []Role{*role},
	}

	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return c.userRepo.Create(ctx, tx, user)
	})
	if err != nil {
		return nil, err
	}

	log.Info("User registered", "userID", user.ID, "role", role.Name)

	code := c.sendOTP(ctx, user, services.OTPPurposeRegister)
	return c.otpResponse("Registration successful. Enter the code sent to your phone.", user, code), nil
}

func (c *AuthController) VerifyOTP(ctx context.Context, request VerifyOTPRequest) (*AuthResponse, error) {
	if err := validation.Struct(request); err != nil {
		return nil, err
	}

	phone, _ := utils.NormalizePhone(request.Phone)
	purpose := services.OTPPurpose(request.Purpose)

	user, err := c.userRepo.GetByPhone(ctx, c.db.SQL, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCode()
		}
		return nil, err
	}

	if err := c.otpService.Verify(ctx, phone, purpose, request.Code); err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, errAccountInactive
	}

	now := c.now()
	updates := map[string]any{"last_login_at": now}
	if !user.IsPhoneVerified() {
		updates["phone_verified_at"] = now
		user.PhoneVerifiedAt = &now
	}
	if err := c.userRepo.Update(ctx, c.db.SQL, user.ID, updates); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	return c.issueToken(user)
}

func (c *AuthController) ResendOTP(ctx context.Context, request ResendOTPRequest) (*OTPResponse, error) {
	if err := validation.Struct(request); err != nil {
		return nil, err
	}

	phone, _ := utils.NormalizePhone(request.Phone)
	purpose := services.OTPPurpose(request.Purpose)
	message := "If the number is registered, a new code has been sent."

	user, err := c.userRepo.GetByPhone(ctx, c.db.SQL, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &OTPResponse{Message: message}, nil
		}
		return nil, err
	}

	if purpose == services.OTPPurposeRegister && user.IsPhoneVerified() {
		return nil, apperrors.Field("phone", "This phone number is already verified")
	}

	code := c.sendOTP(ctx, user, purpose)
	return c.otpResponse(message, nil, code), nil
}

func (c *AuthController) Login(ctx context.Context, request LoginRequest) (*AuthResponse, error) {
	log := c.log.TraceFromContext(ctx).Function("Login")

	if err := validation.Struct(request); err != nil {
		return nil, err
	}

	user, err := c.findByLogin(ctx, request.Login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if !services.CheckPassword(user.PasswordHash, request.Password) {
		log.Info("failed login attempt", "userID", user.ID)
		return nil, errInvalidCredentials
	}

	if !user.IsActive {
		return nil, errAccountInactive
	}

	if !user.IsPhoneVerified() {
		c.sendOTP(ctx, user, services.OTPPurposeRegister)
		return nil, apperrors.Forbidden("Please verify your phone number. A new code has been sent.").
			WithCode(apperrors.CodePhoneNotVerified)
	}

	now := c.now()
	if err := c.userRepo.Update(ctx, c.db.SQL, user.ID, map[string]any{"last_login_at": now}); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	return c.issueToken(user)
}

func (c *AuthController) LoginOTP(ctx context.Context, request PhoneRequest) (*OTPResponse, error) {
	if err := validation.Struct(request); err != nil {
		return nil, err
	}

	phone, _ := utils.NormalizePhone(request.Phone)

	user, err := c.userRepo.GetByPhone(ctx, c.db.SQL, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Field("phone", "No account found for this phone number")
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, errAccountInactive
	}

	code := c.sendOTP(ctx, user, services.OTPPurposeLogin)
	return c.otpResponse("A login code has been sent to your phone.", nil, code), nil
}

func (c *AuthController) ForgotPassword(ctx context.Context, request PhoneRequest) (*OTPResponse, error) {
	if err := validation.Struct(request); err != nil {
		return nil, err
	}

	phone, _ := utils.NormalizePhone(request.Phone)
	message := "If the number is registered, a reset code has been sent."

	user, err := c.userRepo.GetByPhone(ctx, c.db.SQL, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &OTPResponse{Message: message}, nil
		}
		return nil, err
	}

	code := c.sendOTP(ctx, user, services.OTPPurposePasswordReset)
	return c.otpResponse(message, nil, code), nil
}

func (c *AuthController) ResetPassword(ctx context.Context, request ResetPasswordRequest) error {
	log := c.log.TraceFromContext(ctx).Function("ResetPassword")

	if err := validation.Struct(request); err != nil {
		return err
	}

	phone, _ := utils.NormalizePhone(request.Phone)

	user, err := c.userRepo.GetByPhone(ctx, c.db.SQL, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalidCode()
		}
		return err
	}

	if err := c.otpService.Verify(ctx, phone, services.OTPPurposePasswordReset, request.Code); err != nil {
		return err
	}

	passwordHash, err := services.HashPassword(request.Password)
	if err != nil {
		return log.Err("failed to hash password", err)
	}

	if err := c.userRepo.Update(ctx, c.db.SQL, user.ID, map[string]any{"password_hash": passwordHash}); err != nil {
		return err
	}

	log.Info("Password reset", "userID", user.ID)
	return nil
}

func (c *AuthController) Logout(ctx context.Context, claims *services.Claims) error {
	if claims == nil {
		return apperrors.Unauthorized("Authentication required")
	}
	return c.tokenService.Revoke(ctx, claims)
}

func (c *AuthController) Me(ctx context.Context, user *User) (*User, error) {
	return c.userRepo.GetByID(ctx, c.db.SQL, user.ID)
}

func (c *AuthController) findByLogin(ctx context.Context, login string) (*User, error) {
	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		return c.userRepo.GetByEmail(ctx, c.db.SQL, login)
	}

	phone, ok := utils.NormalizePhone(login)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c.userRepo.GetByPhone(ctx, c.db.SQL, phone)
}

func (c *AuthController) issueToken(user *User) (*AuthResponse, error) {
	token, claims, err := c.tokenService.Issue(user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user,
	}, nil
}

// sendOTP issues and delivers a code. Delivery problems are logged and the
// user can ask for a new code.
func (c *AuthController) sendOTP(ctx context.Context, user *User, purpose services.OTPPurpose) string {
	log := c.log.TraceFromContext(ctx).Function("sendOTP")

	code, err := c.otpService.Issue(ctx, user.Phone, purpose)
	if err != nil {
		log.Er("failed to issue otp", err, "userID", user.ID, "purpose", purpose)
		return ""
	}

	recipient := services.OTPRecipient{Name: user.Name, Phone: user.Phone, Email: user.Email}
	if err := c.otpSender.SendOTP(ctx, recipient, purpose, code); err != nil {
		log.Er("failed to deliver otp", err, "userID", user.ID, "purpose", purpose)
	}

	return code
}

func (c *AuthController) otpResponse(message string, user *User, code string) *OTPResponse {
	response := &OTPResponse{Message: message, User: user}
	if c.config.OTPDebug && code != "" {
		response.OTP = &code
	}
	return response
}

func invalidCode() error {
	return apperrors.Field("code", "The code is invalid or has expired").WithCode(apperrors.CodeInvalidOTP)
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.ToLower(strings.TrimSpace(*email))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
