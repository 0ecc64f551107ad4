// Package dispatch assembles the final multipart submission from a frozen
// draft plus its staged files and posts it to the marketplace backend.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/google/uuid"

	"estate-listing-backend/internal/listings"
	"estate-listing-backend/internal/marketplace"
	"estate-listing-backend/internal/realtime"
	"estate-listing-backend/internal/uploads"
	"estate-listing-backend/internal/wizard"
)

type Dispatcher struct {
	client *marketplace.Client
	cache  *listings.Cache
	events *realtime.Client
}

func NewDispatcher(client *marketplace.Client, cache *listings.Cache, events *realtime.Client) *Dispatcher {
	return &Dispatcher{client: client, cache: cache, events: events}
}

// Func adapts the dispatcher for wizard wiring.
func (d *Dispatcher) Func(draftID uuid.UUID) wizard.DispatchFunc {
	return func(ctx context.Context, draft *wizard.Draft, files map[uploads.Category][]*uploads.FileRecord) (string, error) {
		return d.Dispatch(ctx, draftID, draft, files)
	}
}

// Dispatch serializes and posts the listing. On success the cached list
// views a new free listing can affect are invalidated; on failure the
// caller keeps the draft for resubmission.
func (d *Dispatcher) Dispatch(ctx context.Context, draftID uuid.UUID, draft *wizard.Draft, files map[uploads.Category][]*uploads.FileRecord) (string, error) {
	contentType, body, err := BuildPropertyPayload(draft, files)
	if err != nil {
		return "", fmt.Errorf("failed to assemble submission: %w", err)
	}

	receipt, err := d.client.SubmitProperty(ctx, contentType, body)
	if err != nil {
		if d.events != nil {
			d.events.PublishDraftEvent(draftID, "submission_failed",
				realtime.SubmissionFailedPayload(draftID, err.Error()))
		}
		return "", err
	}

	if d.cache != nil {
		d.cache.Invalidate(listings.ViewFeatured, listings.ViewUrgent, listings.ViewFree)
	}
	if d.events != nil {
		d.events.PublishDraftEvent(draftID, "listing_published",
			realtime.ListingPublishedPayload(draftID, receipt.ID))
	}
	return receipt.ID, nil
}

// BuildPropertyPayload renders the multipart body: every non-empty scalar
// field as a form part, amenities as a JSON part, hosted files aggregated
// into an imageUrls JSON array, and never-hosted files as raw
// {category}_{index} parts so the backend can reconstruct grouping.
func BuildPropertyPayload(draft *wizard.Draft, files map[uploads.Category][]*uploads.FileRecord) (string, []byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	writeScalar := func(name, value string) error {
		if value == "" {
			return nil
		}
		return w.WriteField(name, value)
	}
	writeNumber := func(name string, value float64) error {
		if value == 0 {
			return nil
		}
		return w.WriteField(name, strconv.FormatFloat(value, 'f', -1, 64))
	}
	writeInt := func(name string, value int) error {
		if value == 0 {
			return nil
		}
		return w.WriteField(name, strconv.Itoa(value))
	}
	writeBool := func(name string, value bool) error {
		if !value {
			return nil
		}
		return w.WriteField(name, "true")
	}

	scalarErr := firstError(
		writeScalar("userType", string(draft.UserType)),
		writeScalar("propertyCategory", string(draft.PropertyCategory)),
		writeScalar("propertyType", string(draft.PropertyType)),
		writeScalar("transactionType", string(draft.TransactionType)),
		writeScalar("title", draft.Title),
		writeScalar("description", draft.Description),
		writeScalar("location", draft.Location),
		writeScalar("city", draft.City),
		writeScalar("pincode", draft.Pincode),
		writeScalar("landmarks", draft.Landmarks),
		writeNumber("area", draft.Area),
		writeScalar("areaUnit", string(draft.AreaUnit)),
		writeNumber("price", draft.Price),
		writeNumber("pricePerUnit", draft.PricePerUnit),
		writeNumber("totalPrice", draft.TotalPrice),
		writeInt("bedrooms", draft.Bedrooms),
		writeInt("bathrooms", draft.Bathrooms),
		writeInt("balconies", draft.Balconies),
		writeInt("floor", draft.Floor),
		writeInt("totalFloors", draft.TotalFloors),
		writeScalar("contactName", draft.ContactName),
		writeScalar("contactPhone", draft.ContactPhone),
		writeScalar("contactEmail", draft.ContactEmail),
		writeBool("isUrgentSale", draft.IsUrgentSale),
		writeBool("whatsappEnabled", draft.WhatsappEnabled),
		writeBool("noBrokerResponses", draft.NoBrokerResponses),
	)
	if scalarErr != nil {
		return "", nil, scalarErr
	}

	if len(draft.Amenities) > 0 {
		amenities, err := json.Marshal(draft.Amenities)
		if err != nil {
			return "", nil, fmt.Errorf("failed to encode amenities: %w", err)
		}
		if err := w.WriteField("amenities", string(amenities)); err != nil {
			return "", nil, err
		}
	}

	// Hosted assets go by reference; anything never confirmed uploaded is
	// attached raw with an index-suffixed part name per category.
	var imageURLs []string
	for _, category := range uploads.Categories {
		idx := 0
		for _, record := range files[category] {
			if record.ServerURI != "" {
				imageURLs = append(imageURLs, record.ServerURI)
				continue
			}
			if len(record.Data) == 0 {
				// Restored placeholder with no bytes and no server copy:
				// nothing usable to send.
				continue
			}
			part, err := w.CreateFormFile(fmt.Sprintf("%s_%d", category, idx), record.DisplayName)
			if err != nil {
				return "", nil, err
			}
			if _, err := part.Write(record.Data); err != nil {
				return "", nil, err
			}
			idx++
		}
	}

	urls, err := json.Marshal(imageURLs)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode image urls: %w", err)
	}
	if err := w.WriteField("imageUrls", string(urls)); err != nil {
		return "", nil, err
	}

	if err := w.WriteField("emailVerified", "true"); err != nil {
		return "", nil, err
	}
	if err := w.WriteField("submittedAt", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return "", nil, err
	}

	if err := w.Close(); err != nil {
		return "", nil, err
	}
	return w.FormDataContentType(), buf.Bytes(), nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
