package services

import (
	"context"
	"fmt"

	"kamwaalay/config"
	"kamwaalay/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"gopkg.in/gomail.v2"
)

// OTPRecipient is who a code is delivered to.
type OTPRecipient struct {
	Name  string
	Phone string
	Email *string
}

type OTPSender interface {
	SendOTP(ctx context.Context, recipient OTPRecipient, purpose OTPPurpose, code string) error
}

type mailDialer interface {
	DialAndSend(messages ...*gomail.Message) error
}

// OTPDeliveryService mails codes to recipients that have an email address
// when SMTP is configured and logs them otherwise.
type OTPDeliveryService struct {
	dialer    mailDialer
	from      string
	logCodes  bool
	expiryMin int
	log       logger.Logger
}

func NewOTPDeliveryService(config config.Config) *OTPDeliveryService {
	service := &OTPDeliveryService{
		from:      config.SMTPFrom,
		logCodes:  config.IsDevelopment() || config.OTPDebug,
		expiryMin: config.OTPExpiryMinutes,
		log:       logger.New("OTPDeliveryService"),
	}

	if config.SMTPEnabled() {
		service.dialer = gomail.NewDialer(
			config.SMTPHost,
			config.SMTPPort,
			config.SMTPUser,
			config.SMTPPassword,
		)
	}

	return service
}

func (s *OTPDeliveryService) SendOTP(
	ctx context.Context,
	recipient OTPRecipient,
	purpose OTPPurpose,
	code string,
) error {
	log := s.log.TraceFromContext(ctx).Function("SendOTP")

	if s.dialer != nil && recipient.Email != nil && *recipient.Email != "" {
		if err := s.dialer.DialAndSend(s.buildMessage(recipient, purpose, code)); err != nil {
			return log.Err("failed to send otp email", err, "phone", utils.MaskPhone(recipient.Phone))
		}
		log.Info("OTP emailed", "phone", utils.MaskPhone(recipient.Phone), "purpose", purpose)
		return nil
	}

	if s.logCodes {
		log.Info("OTP generated", "phone", recipient.Phone, "purpose", purpose, "code", code)
		return nil
	}

	log.Warn("No delivery channel for OTP", "phone", utils.MaskPhone(recipient.Phone), "purpose", purpose)
	return nil
}

func (s *OTPDeliveryService) buildMessage(
	recipient OTPRecipient,
	purpose OTPPurpose,
	code string,
) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", *recipient.Email)
	m.SetHeader("Subject", otpSubject(purpose))
	m.SetBody("text/plain", fmt.Sprintf(
		"Assalam-o-Alaikum %s,\n\nYour Kamwaalay verification code is %s. It expires in %d minutes.\n\nIf you did not request this code you can ignore this email.",
		recipient.Name,
		code,
		s.expiryMin,
	))
	return m
}

func otpSubject(purpose OTPPurpose) string {
	switch purpose {
	case OTPPurposeRegister:
		return "Verify your Kamwaalay account"
	case OTPPurposePasswordReset:
		return "Reset your Kamwaalay password"
	default:
		return "Your Kamwaalay login code"
	}
}
