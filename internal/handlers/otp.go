package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"estate-listing-backend/internal/models"
	"estate-listing-backend/internal/otp"
	"estate-listing-backend/internal/realtime"
)

// SendOTP requests (or resends) the verification code for the draft's
// contact email.
func (h *WizardHandler) SendOTP(c *gin.Context) {
	w, ok := h.session(c)
	if !ok {
		return
	}

	var req models.SendOTPRequest
	_ = c.ShouldBindJSON(&req)

	email := req.Email
	if email == "" {
		email = w.Draft().ContactEmail
	}

	if err := w.Gate().RequestCode(c.Request.Context(), email); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, otp.ErrEmailRequired) {
			status = http.StatusBadRequest
		} else if errors.Is(err, otp.ErrInFlight) {
			status = http.StatusConflict
		}
		c.JSON(status, models.ErrorResponse{
			Error:   "failed to send verification code",
			Message: err.Error(),
		})
		return
	}

	if h.events != nil {
		h.events.PublishDraftEvent(w.ID, "otp_sent", realtime.OTPSentPayload(w.ID, email))
	}

	c.JSON(http.StatusOK, models.OTPResponse{
		State:   w.Gate().State(),
		Message: "verification code sent",
	})
}

// VerifyOTP checks the candidate code. A wrong code keeps the challenge
// open for re-entry or resend; it never clears the draft.
func (h *WizardHandler) VerifyOTP(c *gin.Context) {
	w, ok := h.session(c)
	if !ok {
		return
	}

	var req models.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "verification code is required",
			Message: err.Error(),
		})
		return
	}

	verified, message, err := w.Gate().VerifyCode(c.Request.Context(), req.Code)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, otp.ErrCodeRequired) {
			status = http.StatusBadRequest
		} else if errors.Is(err, otp.ErrInFlight) {
			status = http.StatusConflict
		}
		c.JSON(status, models.ErrorResponse{
			Error:   "failed to verify code",
			Message: err.Error(),
		})
		return
	}

	if !verified {
		c.JSON(http.StatusOK, models.OTPResponse{
			State:   w.Gate().State(),
			Message: message,
		})
		return
	}

	c.JSON(http.StatusOK, models.OTPResponse{
		State:   w.Gate().State(),
		Message: message,
	})
}

// DismissOTP closes the code-entry modal without verifying; the draft
// survives and the gate re-triggers on the next submit attempt.
func (h *WizardHandler) DismissOTP(c *gin.Context) {
	w, ok := h.session(c)
	if !ok {
		return
	}

	w.Gate().Dismiss()
	c.JSON(http.StatusOK, models.OTPResponse{State: w.Gate().State()})
}
