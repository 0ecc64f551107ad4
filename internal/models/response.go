package models

import (
	"github.com/google/uuid"

	"estate-listing-backend/internal/catalog"
	"estate-listing-backend/internal/emi"
	"estate-listing-backend/internal/marketplace"
	"estate-listing-backend/internal/otp"
	"estate-listing-backend/internal/uploads"
	"estate-listing-backend/internal/wizard"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// FieldErrorsResponse carries per-field validation messages.
type FieldErrorsResponse struct {
	Error  string             `json:"error"`
	Fields wizard.FieldErrors `json:"fields"`
}

type WizardStateResponse struct {
	SessionID   uuid.UUID                                  `json:"session_id"`
	Step        int                                        `json:"step"`
	Draft       *wizard.Draft                              `json:"draft"`
	Files       map[uploads.Category][]*uploads.FileRecord `json:"files"`
	Progress    map[uuid.UUID]int                          `json:"progress,omitempty"`
	TotalImages int                                        `json:"total_images"`
	OTPState    otp.State                                  `json:"otp_state"`
	Submitted   bool                                       `json:"submitted"`
}

type UploadResponse struct {
	SessionID uuid.UUID             `json:"session_id"`
	Category  uploads.Category      `json:"category"`
	Accepted  []*uploads.FileRecord `json:"accepted"`
	Rejected  []uploads.Rejected    `json:"rejected,omitempty"`
	Total     int                   `json:"total_images"`
}

type OTPResponse struct {
	State   otp.State `json:"state"`
	Message string    `json:"message,omitempty"`
}

type CatalogResponse struct {
	Menu         []catalog.MenuSection                `json:"menu"`
	UserTypes    []catalog.UserType                   `json:"user_types"`
	AreaUnits    []catalog.AreaUnit                   `json:"area_units"`
	Amenities    []string                             `json:"amenities"`
	Transactions map[string][]catalog.TransactionType `json:"transactions,omitempty"`
}

type EMIResponse struct {
	emi.Breakdown
	Schedule []emi.Row `json:"schedule,omitempty"`
}

type ListingsResponse struct {
	View     string                       `json:"view"`
	Listings []marketplace.ListingSummary `json:"listings"`
}

type ProjectResponse struct {
	ProjectID string `json:"project_id"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
