package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(messages ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, messages...)
	return nil
}

func TestOTPDeliveryService_EmailsWhenAddressKnown(t *testing.T) {
	config := testConfig()
	config.SMTPFrom = "no-reply@kamwaalay.pk"
	service := NewOTPDeliveryService(config)
	dialer := &fakeDialer{}
	service.dialer = dialer

	email := "ayesha@example.com"
	err := service.SendOTP(context.Background(), OTPRecipient{
		Name:  "Ayesha",
		Phone: "+923001234567",
		Email: &email,
	}, OTPPurposeRegister, "123456")
	require.NoError(t, err)

	require.Len(t, dialer.sent, 1)
	assert.Equal(t, []string{email}, dialer.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Verify your Kamwaalay account"}, dialer.sent[0].GetHeader("Subject"))
}

func TestOTPDeliveryService_SkipsEmailWithoutAddress(t *testing.T) {
	service := NewOTPDeliveryService(testConfig())
	dialer := &fakeDialer{}
	service.dialer = dialer

	err := service.SendOTP(context.Background(), OTPRecipient{
		Name:  "Bilal",
		Phone: "+923001234567",
	}, OTPPurposeLogin, "123456")

	assert.NoError(t, err)
	assert.Empty(t, dialer.sent)
}

func TestOTPDeliveryService_ReturnsDialError(t *testing.T) {
	service := NewOTPDeliveryService(testConfig())
	service.dialer = &fakeDialer{err: errors.New("connection refused")}

	email := "bilal@example.com"
	err := service.SendOTP(context.Background(), OTPRecipient{
		Name:  "Bilal",
		Phone: "+923001234567",
		Email: &email,
	}, OTPPurposePasswordReset, "123456")

	assert.Error(t, err)
}

func TestOTPSubject(t *testing.T) {
	assert.Equal(t, "Reset your Kamwaalay password", otpSubject(OTPPurposePasswordReset))
	assert.Equal(t, "Your Kamwaalay login code", otpSubject(OTPPurposeLogin))
}
