package wizard

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"estate-listing-backend/internal/otp"
	"estate-listing-backend/internal/uploads"
)

var (
	ErrNotFinalStep      = errors.New("submission is only available from the final step")
	ErrAlreadySubmitted  = errors.New("this draft has already been published")
	ErrSubmitInFlight    = errors.New("submission already in progress")
	ErrWizardClosed      = errors.New("wizard session is closed")
	ErrMinimumOneImage   = errors.New("upload at least one property image before continuing")
	ErrValidationFailed  = errors.New("validation failed")
	ErrOTPNotVerified    = errors.New("email verification required")
	ErrDispatcherMissing = errors.New("no dispatcher configured")
)

// DispatchFunc serializes the frozen draft plus staged files into the final
// submission and returns the published listing id. Wired to the submission
// dispatcher at session creation.
type DispatchFunc func(ctx context.Context, draft *Draft, files map[uploads.Category][]*uploads.FileRecord) (string, error)

// AdvanceResult reports the outcome of a forward transition.
type AdvanceResult struct {
	Step    int         `json:"step"`
	Moved   bool        `json:"moved"`
	Errors  FieldErrors `json:"errors,omitempty"`
	Warning string      `json:"warning,omitempty"`
	// ScrollTop tells the front end to scroll to the form anchor after a
	// successful step change.
	ScrollTop bool `json:"scroll_top"`
}

// SubmitResult reports the outcome of a submit attempt. When OTPRequired is
// set the front end opens the code-entry modal; ListingID is set only after
// a verified dispatch.
type SubmitResult struct {
	OTPRequired bool        `json:"otp_required"`
	OTPState    otp.State   `json:"otp_state"`
	ListingID   string      `json:"listing_id,omitempty"`
	Redirect    string      `json:"redirect,omitempty"`
	Errors      FieldErrors `json:"errors,omitempty"`
}

// Wizard is one user's submission session: draft, step position, upload
// tracker and OTP gate, mutated only through named transitions.
type Wizard struct {
	ID     uuid.UUID
	UserID uuid.UUID

	mu          sync.Mutex
	draft       *Draft
	step        int
	tracker     *uploads.Tracker
	gate        *otp.Gate
	dispatch    DispatchFunc
	dispatching bool
	submitted   bool
	closed      bool
}

// New builds a session. The id is supplied by the caller so hosting and
// dispatch closures can be bound to it before construction.
func New(id, userID uuid.UUID, draft *Draft, tracker *uploads.Tracker, gate *otp.Gate, dispatch DispatchFunc) *Wizard {
	return &Wizard{
		ID:       id,
		UserID:   userID,
		draft:    draft,
		step:     FirstStep,
		tracker:  tracker,
		gate:     gate,
		dispatch: dispatch,
	}
}

func (w *Wizard) Step() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// RestoreStep places a resumed session back on its persisted step.
func (w *Wizard) RestoreStep(step int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if step >= FirstStep && step <= LastStep {
		w.step = step
	}
}

func (w *Wizard) Draft() *Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

func (w *Wizard) Tracker() *uploads.Tracker {
	return w.tracker
}

func (w *Wizard) Gate() *otp.Gate {
	return w.gate
}

// SetField applies one field edit to the draft.
func (w *Wizard) SetField(field string, value any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWizardClosed
	}
	return w.draft.Set(field, value)
}

// Advance validates the current step's field subset and moves forward on
// success. Step 3 additionally requires at least one staged image; that
// check is independent of the schema validator and surfaces as a warning,
// not a field error.
func (w *Wizard) Advance() AdvanceResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.step >= LastStep {
		return AdvanceResult{Step: w.step}
	}

	if errs := ValidateStep(w.draft, w.step); errs != nil {
		return AdvanceResult{Step: w.step, Errors: errs}
	}
	if w.step == 3 && w.tracker.TotalImages() < 1 {
		return AdvanceResult{Step: w.step, Warning: ErrMinimumOneImage.Error()}
	}

	w.step++
	return AdvanceResult{Step: w.step, Moved: true, ScrollTop: true}
}

// Retreat moves one step back unconditionally; no validation runs on the
// way backward.
func (w *Wizard) Retreat() AdvanceResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || w.step <= FirstStep {
		return AdvanceResult{Step: w.step}
	}
	w.step--
	return AdvanceResult{Step: w.step, Moved: true, ScrollTop: true}
}

// Submit is the step-4 terminal action. With an unverified email it only
// requests a code and reports that the modal must open; it never reaches
// the dispatcher. Once the gate is verified, dispatch fires exactly once:
// re-entrant submits while dispatch is in flight are rejected, and a
// published draft cannot be re-dispatched.
func (w *Wizard) Submit(ctx context.Context) (SubmitResult, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return SubmitResult{}, ErrWizardClosed
	}
	if w.step != LastStep {
		w.mu.Unlock()
		return SubmitResult{}, ErrNotFinalStep
	}
	if w.submitted {
		w.mu.Unlock()
		return SubmitResult{}, ErrAlreadySubmitted
	}
	if w.dispatching {
		w.mu.Unlock()
		return SubmitResult{}, ErrSubmitInFlight
	}

	if errs := ValidateAll(w.draft); errs != nil {
		w.mu.Unlock()
		return SubmitResult{Errors: errs}, ErrValidationFailed
	}

	email := w.draft.ContactEmail

	if !w.gate.Verified() {
		w.mu.Unlock()
		if err := w.gate.RequestCode(ctx, email); err != nil {
			return SubmitResult{OTPRequired: true, OTPState: w.gate.State()}, err
		}
		return SubmitResult{OTPRequired: true, OTPState: w.gate.State()}, nil
	}

	if w.dispatch == nil {
		w.mu.Unlock()
		return SubmitResult{}, ErrDispatcherMissing
	}

	w.dispatching = true
	draft := w.draft
	w.mu.Unlock()

	listingID, err := w.dispatch(ctx, draft, w.tracker.AllFiles())

	w.mu.Lock()
	defer w.mu.Unlock()
	w.dispatching = false
	if err != nil {
		// Draft survives a failed dispatch so the user can retry without
		// re-entering anything.
		return SubmitResult{OTPState: w.gate.State()}, err
	}
	w.submitted = true
	return SubmitResult{
		OTPState:  w.gate.State(),
		ListingID: listingID,
		Redirect:  "/post-property-success/" + listingID,
	}, nil
}

// Submitted reports whether the draft has been published.
func (w *Wizard) Submitted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitted
}

// Close tears the session down and releases every live preview resource.
func (w *Wizard) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()
	w.tracker.Close()
}
