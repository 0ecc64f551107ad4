package otp_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"estate-listing-backend/internal/otp"
)

type stubSender struct {
	sendCalls   int
	verifyCalls int
	sendErr     error
	verifyOK    bool
	verifyMsg   string
	verifyErr   error
}

func (s *stubSender) SendEmailOTP(ctx context.Context, email string) error {
	s.sendCalls++
	return s.sendErr
}

func (s *stubSender) VerifyEmailOTP(ctx context.Context, email, code string) (bool, string, error) {
	s.verifyCalls++
	return s.verifyOK, s.verifyMsg, s.verifyErr
}

func TestGate_RequestCodeRequiresEmail(t *testing.T) {
	g := otp.NewGate(&stubSender{}, false)

	err := g.RequestCode(context.Background(), "")

	assert.ErrorIs(t, err, otp.ErrEmailRequired)
	assert.Equal(t, otp.StateIdle, g.State())
}

func TestGate_RequestCodeMovesToSent(t *testing.T) {
	sender := &stubSender{}
	g := otp.NewGate(sender, false)

	err := g.RequestCode(context.Background(), "user@example.com")

	assert.NoError(t, err)
	assert.Equal(t, otp.StateSent, g.State())
	assert.Equal(t, "user@example.com", g.Email())
	assert.Equal(t, 1, sender.sendCalls)
}

func TestGate_FailedSendRestoresPriorState(t *testing.T) {
	sender := &stubSender{sendErr: errors.New("smtp down")}
	g := otp.NewGate(sender, false)

	err := g.RequestCode(context.Background(), "user@example.com")

	assert.Error(t, err)
	assert.Equal(t, otp.StateIdle, g.State())
}

func TestGate_ResendFromSent(t *testing.T) {
	sender := &stubSender{}
	g := otp.NewGate(sender, false)

	assert.NoError(t, g.RequestCode(context.Background(), "user@example.com"))
	assert.NoError(t, g.RequestCode(context.Background(), "user@example.com"))

	assert.Equal(t, 2, sender.sendCalls)
	assert.Equal(t, otp.StateSent, g.State())
}

func TestGate_DevBypassSkipsNetwork(t *testing.T) {
	sender := &stubSender{}
	g := otp.NewGate(sender, true)

	ok, msg, err := g.VerifyCode(context.Background(), otp.DevBypassCode)

	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "verified", msg)
	assert.True(t, g.Verified())
	assert.Equal(t, 0, sender.verifyCalls)
}

func TestGate_BypassDisabledInProduction(t *testing.T) {
	sender := &stubSender{verifyOK: false, verifyMsg: "incorrect verification code"}
	g := otp.NewGate(sender, false)
	assert.NoError(t, g.RequestCode(context.Background(), "user@example.com"))

	ok, msg, err := g.VerifyCode(context.Background(), otp.DevBypassCode)

	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "incorrect verification code", msg)
	assert.Equal(t, 1, sender.verifyCalls)
	assert.False(t, g.Verified())
}

func TestGate_WrongCodeReturnsToSent(t *testing.T) {
	sender := &stubSender{verifyOK: false}
	g := otp.NewGate(sender, false)
	assert.NoError(t, g.RequestCode(context.Background(), "user@example.com"))

	ok, msg, err := g.VerifyCode(context.Background(), "999999")

	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NotEmpty(t, msg)
	assert.Equal(t, otp.StateSent, g.State())
}

func TestGate_VerifyErrorReturnsToSent(t *testing.T) {
	sender := &stubSender{verifyErr: errors.New("timeout")}
	g := otp.NewGate(sender, false)
	assert.NoError(t, g.RequestCode(context.Background(), "user@example.com"))

	_, _, err := g.VerifyCode(context.Background(), "999999")

	assert.Error(t, err)
	assert.Equal(t, otp.StateSent, g.State())
}

func TestGate_CorrectCodeVerifies(t *testing.T) {
	sender := &stubSender{verifyOK: true, verifyMsg: "verified"}
	g := otp.NewGate(sender, false)
	assert.NoError(t, g.RequestCode(context.Background(), "user@example.com"))

	ok, _, err := g.VerifyCode(context.Background(), "314159")

	assert.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, g.Verified())

	// Verified is terminal: a repeat verify does not hit the network again.
	ok, msg, err := g.VerifyCode(context.Background(), "314159")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "already verified", msg)
	assert.Equal(t, 1, sender.verifyCalls)
}

func TestGate_EmptyCodeRejected(t *testing.T) {
	g := otp.NewGate(&stubSender{}, false)

	_, _, err := g.VerifyCode(context.Background(), "")

	assert.ErrorIs(t, err, otp.ErrCodeRequired)
}

func TestGate_DismissResetsUnlessVerified(t *testing.T) {
	g := otp.NewGate(&stubSender{}, true)
	assert.NoError(t, g.RequestCode(context.Background(), "user@example.com"))

	g.Dismiss()
	assert.Equal(t, otp.StateIdle, g.State())
	assert.Empty(t, g.Email())

	g.VerifyCode(context.Background(), otp.DevBypassCode)
	g.Dismiss()
	assert.Equal(t, otp.StateVerified, g.State())
}

func TestGate_RequestAfterVerifiedIsNoop(t *testing.T) {
	sender := &stubSender{}
	g := otp.NewGate(sender, true)
	g.VerifyCode(context.Background(), otp.DevBypassCode)

	err := g.RequestCode(context.Background(), "user@example.com")

	assert.NoError(t, err)
	assert.Equal(t, otp.StateVerified, g.State())
	assert.Equal(t, 0, sender.sendCalls)
}
