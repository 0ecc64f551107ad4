package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"estate-listing-backend/internal/config"
	"estate-listing-backend/internal/dispatch"
	"estate-listing-backend/internal/middleware"
	"estate-listing-backend/internal/models"
	"estate-listing-backend/internal/otp"
	"estate-listing-backend/internal/realtime"
	"estate-listing-backend/internal/storage"
	"estate-listing-backend/internal/store"
	"estate-listing-backend/internal/uploads"
	"estate-listing-backend/internal/wizard"
)

type WizardHandler struct {
	cfg        *config.Config
	sessions   *wizard.Manager
	gateSender otp.Sender
	dispatcher *dispatch.Dispatcher
	drafts     *store.DraftStore
	images     *storage.Client
	events     *realtime.Client
}

func NewWizardHandler(
	cfg *config.Config,
	sessions *wizard.Manager,
	gateSender otp.Sender,
	dispatcher *dispatch.Dispatcher,
	drafts *store.DraftStore,
	images *storage.Client,
	events *realtime.Client,
) *WizardHandler {
	return &WizardHandler{
		cfg:        cfg,
		sessions:   sessions,
		gateSender: gateSender,
		dispatcher: dispatcher,
		drafts:     drafts,
		images:     images,
		events:     events,
	}
}

func requestUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user id"})
		return uuid.Nil, false
	}
	return userID, true
}

// session resolves the wizard for the path's session_id, falling back to
// the persisted snapshot when the session is not in memory (restart or
// another instance).
func (h *WizardHandler) session(c *gin.Context) (*wizard.Wizard, bool) {
	userID, ok := requestUserID(c)
	if !ok {
		return nil, false
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid session id"})
		return nil, false
	}

	if w, ok := h.sessions.Get(sessionID, userID); ok {
		return w, true
	}

	if w := h.restore(sessionID, userID); w != nil {
		return w, true
	}

	c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "wizard session not found"})
	return nil, false
}

// newWizard assembles a session with its hosting and dispatch closures
// bound to the fresh session id.
func (h *WizardHandler) newWizard(sessionID, userID uuid.UUID, draft *wizard.Draft) *wizard.Wizard {
	var host uploads.HostFunc
	if h.images != nil {
		host = func(category uploads.Category, filename string, data []byte) (string, error) {
			_, url, err := h.images.UploadDraftImage(userID, sessionID, string(category), filename, data)
			return url, err
		}
	}
	tracker := uploads.NewTracker(uploads.NewPreviewRegistry(), host, func() int {
		return draft.Bedrooms
	})

	gate := otp.NewGate(h.gateSender, !h.cfg.IsProduction())

	var dispatchFn wizard.DispatchFunc
	if h.dispatcher != nil {
		dispatchFn = h.dispatcher.Func(sessionID)
	}

	return wizard.New(sessionID, userID, draft, tracker, gate, dispatchFn)
}

func (h *WizardHandler) restore(sessionID, userID uuid.UUID) *wizard.Wizard {
	if h.drafts == nil {
		return nil
	}
	snap, err := h.drafts.LoadSnapshot(sessionID, userID)
	if err != nil {
		return nil
	}

	draft := wizard.NewDraft("", "", "")
	if err := json.Unmarshal(snap.Draft, draft); err != nil {
		log.Printf("Warning: failed to decode persisted draft %s: %v", sessionID, err)
		return nil
	}

	w := h.newWizard(sessionID, userID, draft)
	w.Tracker().Restore(snap.Files)
	w.RestoreStep(snap.Step)
	h.sessions.Add(w)
	return w
}

// persist saves the session snapshot; persistence is best-effort and never
// blocks the user's flow.
func (h *WizardHandler) persist(w *wizard.Wizard) {
	if h.drafts == nil {
		return
	}
	draftJSON, err := json.Marshal(w.Draft())
	if err != nil {
		log.Printf("Warning: failed to encode draft %s: %v", w.ID, err)
		return
	}
	err = h.drafts.SaveSnapshot(store.Snapshot{
		DraftID: w.ID,
		UserID:  w.UserID,
		Step:    w.Step(),
		Draft:   draftJSON,
		Files:   w.Tracker().Snapshot(),
	})
	if err != nil {
		log.Printf("Warning: failed to persist draft %s: %v", w.ID, err)
	}
}

func (h *WizardHandler) state(w *wizard.Wizard) models.WizardStateResponse {
	files := w.Tracker().AllFiles()
	progress := make(map[uuid.UUID]int)
	for _, records := range files {
		for _, r := range records {
			if p, ok := w.Tracker().Progress(r.ID); ok {
				progress[r.ID] = p
			}
		}
	}
	return models.WizardStateResponse{
		SessionID:   w.ID,
		Step:        w.Step(),
		Draft:       w.Draft(),
		Files:       files,
		Progress:    progress,
		TotalImages: w.Tracker().TotalImages(),
		OTPState:    w.Gate().State(),
		Submitted:   w.Submitted(),
	}
}

// CreateSession starts a new wizard, pre-filling contact fields from the
// authenticated user's profile claims.
func (h *WizardHandler) CreateSession(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	name, _ := c.Get(middleware.UserNameKey)
	phone, _ := c.Get(middleware.UserPhoneKey)
	email, _ := c.Get(middleware.UserEmailKey)

	draft := wizard.NewDraft(asStringValue(name), asStringValue(phone), asStringValue(email))

	sessionID := uuid.New()
	w := h.newWizard(sessionID, userID, draft)
	h.sessions.Add(w)
	h.persist(w)

	c.JSON(http.StatusCreated, h.state(w))
}

func (h *WizardHandler) GetSession(c *gin.Context) {
	w, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.state(w))
}

// DeleteSession tears the wizard down, releasing preview resources and the
// persisted snapshot.
func (h *WizardHandler) DeleteSession(c *gin.Context) {
	w, ok := h.session(c)
	if !ok {
		return
	}

	h.sessions.Remove(w.ID, w.UserID)
	if h.drafts != nil {
		if err := h.drafts.DeleteSnapshot(w.ID, w.UserID); err != nil {
			log.Printf("Warning: failed to delete snapshot %s: %v", w.ID, err)
		}
	}
	if h.images != nil && !w.Submitted() {
		if err := h.images.DeleteDraftFiles(w.UserID, w.ID); err != nil {
			log.Printf("Warning: failed to delete staged files for %s: %v", w.ID, err)
		}
	}

	c.Status(http.StatusNoContent)
}

// UpdateFields applies one or more draft field edits; the derived-field
// engine runs inside the draft setter.
func (h *WizardHandler) UpdateFields(c *gin.Context) {
	w, ok := h.session(c)
	if !ok {
		return
	}

	var req models.FieldEditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	if err := w.SetFields(req.Fields); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid field edit",
			Message: err.Error(),
		})
		return
	}

	h.persist(w)
	c.JSON(http.StatusOK, h.state(w))
}

func (h *WizardHandler) Advance(c *gin.Context) {
	w, ok := h.session(c)
	if !ok {
		return
	}

	result := w.Advance()
	if result.Moved {
		h.persist(w)
	}
	c.JSON(http.StatusOK, result)
}

func (h *WizardHandler) Retreat(c *gin.Context) {
	w, ok := h.session(c)
	if !ok {
		return
	}

	result := w.Retreat()
	if result.Moved {
		h.persist(w)
	}
	c.JSON(http.StatusOK, result)
}

// Submit runs the step-4 terminal action: with an unverified email it only
// requests a code and reports that the modal must open; once verified it
// dispatches exactly once and returns the confirmation redirect.
func (h *WizardHandler) Submit(c *gin.Context) {
	w, ok := h.session(c)
	if !ok {
		return
	}

	result, err := w.Submit(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, wizard.ErrValidationFailed):
			c.JSON(http.StatusUnprocessableEntity, models.FieldErrorsResponse{
				Error:  "validation failed",
				Fields: result.Errors,
			})
		case errors.Is(err, wizard.ErrSubmitInFlight), errors.Is(err, wizard.ErrAlreadySubmitted):
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: err.Error()})
		case errors.Is(err, wizard.ErrNotFinalStep):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		default:
			// Failed OTP send or failed dispatch: the draft survives for a
			// retry, surface the message.
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "submission failed",
				Message: err.Error(),
			})
		}
		return
	}

	if result.ListingID != "" {
		if h.drafts != nil {
			if err := h.drafts.DeleteSnapshot(w.ID, w.UserID); err != nil {
				log.Printf("Warning: failed to delete snapshot %s: %v", w.ID, err)
			}
		}
	} else if result.OTPRequired {
		if h.events != nil {
			h.events.PublishDraftEvent(w.ID, "otp_sent",
				realtime.OTPSentPayload(w.ID, w.Gate().Email()))
		}
	}

	c.JSON(http.StatusOK, result)
}

func asStringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
