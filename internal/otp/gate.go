// Package otp implements the email verification gate that precedes listing
// dispatch. The gate is a small state machine; dispatch is only reachable
// through the Verified state.
package otp

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type State string

const (
	StateIdle      State = "idle"
	StateSending   State = "sending"
	StateSent      State = "sent"
	StateVerifying State = "verifying"
	StateVerified  State = "verified"
	StateFailed    State = "failed"
)

// DevBypassCode is accepted without a network call in non-production
// builds only. The marketplace backend rejects it in production, so this
// is a local-testing escape hatch, not a security boundary.
const DevBypassCode = "123456"

var (
	ErrEmailRequired = errors.New("email is required to send a verification code")
	ErrCodeRequired  = errors.New("enter the verification code")
	ErrInFlight      = errors.New("verification already in progress")
)

// Sender is the OTP collaborator contract (issuing and verifying codes).
type Sender interface {
	SendEmailOTP(ctx context.Context, email string) error
	VerifyEmailOTP(ctx context.Context, email, code string) (bool, string, error)
}

// Gate holds the ephemeral challenge state for one wizard session.
type Gate struct {
	mu        sync.Mutex
	state     State
	email     string
	devBypass bool
	sender    Sender
}

func NewGate(sender Sender, devBypass bool) *Gate {
	return &Gate{state: StateIdle, devBypass: devBypass, sender: sender}
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Gate) Verified() bool {
	return g.State() == StateVerified
}

func (g *Gate) Email() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.email
}

// RequestCode asks the collaborator to email a code. Transport failures,
// timeouts and non-2xx responses leave the state where it was; a repeat
// request from Sent acts as a resend (the server invalidates prior codes).
func (g *Gate) RequestCode(ctx context.Context, email string) error {
	if email == "" {
		return ErrEmailRequired
	}

	g.mu.Lock()
	if g.state == StateSending || g.state == StateVerifying {
		g.mu.Unlock()
		return ErrInFlight
	}
	prev := g.state
	if prev == StateVerified {
		g.mu.Unlock()
		return nil
	}
	g.state = StateSending
	g.email = email
	g.mu.Unlock()

	err := g.sender.SendEmailOTP(ctx, email)

	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		// Failed sends do not corrupt state: Idle stays Idle, Sent stays
		// Sent (the previously issued code is still usable).
		g.state = prev
		return fmt.Errorf("failed to send verification code: %w", err)
	}
	g.state = StateSent
	return nil
}

// VerifyCode checks a candidate code. A wrong code moves Failed -> Sent so
// the user can re-enter or resend. The development bypass code short
// circuits without any network call.
func (g *Gate) VerifyCode(ctx context.Context, code string) (bool, string, error) {
	if code == "" {
		return false, "", ErrCodeRequired
	}

	g.mu.Lock()
	if g.state == StateVerifying {
		g.mu.Unlock()
		return false, "", ErrInFlight
	}
	if g.state == StateVerified {
		g.mu.Unlock()
		return true, "already verified", nil
	}
	email := g.email

	if g.devBypass && code == DevBypassCode {
		g.state = StateVerified
		g.mu.Unlock()
		return true, "verified", nil
	}
	g.state = StateVerifying
	g.mu.Unlock()

	ok, message, err := g.sender.VerifyEmailOTP(ctx, email, code)

	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		g.state = StateSent
		return false, "", fmt.Errorf("failed to verify code: %w", err)
	}
	if !ok {
		// Wrong code: back to Sent for re-entry or resend.
		g.state = StateSent
		if message == "" {
			message = "incorrect verification code"
		}
		return false, message, nil
	}
	g.state = StateVerified
	if message == "" {
		message = "verified"
	}
	return true, message, nil
}

// Dismiss discards the challenge without verifying. The draft survives;
// the gate re-triggers on the next submit attempt.
func (g *Gate) Dismiss() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateVerified {
		g.state = StateIdle
		g.email = ""
	}
}
