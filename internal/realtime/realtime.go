// Package realtime publishes wizard lifecycle events over Supabase so a
// connected front end can observe staging and submission progress.
package realtime

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"
)

type Client struct {
	client *supabase.Client
}

func NewClient(supabaseURL, publishableKey string) (*Client, error) {
	client, err := supabase.NewClient(supabaseURL, publishableKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize supabase client: %w", err)
	}
	return &Client{client: client}, nil
}

func (r *Client) PublishEvent(channel string, event string, payload map[string]interface{}) error {
	// The Supabase Go client has no direct Realtime publish; database
	// writes trigger Realtime automatically. Kept as the single publish
	// seam so an explicit REST publish can slot in later.
	return nil
}

func (r *Client) PublishDraftEvent(draftID uuid.UUID, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("draft:%s", draftID.String())
	return r.PublishEvent(channel, event, payload)
}

// Event payloads

func UploadStartedPayload(draftID uuid.UUID, category string, fileCount int) map[string]interface{} {
	return map[string]interface{}{
		"draft_id":   draftID.String(),
		"status":     "uploading",
		"category":   category,
		"file_count": fileCount,
	}
}

func UploadCompletedPayload(draftID uuid.UUID, category string, fileCount int) map[string]interface{} {
	return map[string]interface{}{
		"draft_id":   draftID.String(),
		"status":     "uploaded",
		"category":   category,
		"file_count": fileCount,
	}
}

func OTPSentPayload(draftID uuid.UUID, email string) map[string]interface{} {
	return map[string]interface{}{
		"draft_id": draftID.String(),
		"status":   "otp_sent",
		"email":    email,
	}
}

func ListingPublishedPayload(draftID uuid.UUID, listingID string) map[string]interface{} {
	return map[string]interface{}{
		"draft_id":   draftID.String(),
		"status":     "published",
		"listing_id": listingID,
	}
}

func SubmissionFailedPayload(draftID uuid.UUID, errorMsg string) map[string]interface{} {
	return map[string]interface{}{
		"draft_id": draftID.String(),
		"status":   "failed",
		"error":    errorMsg,
	}
}
