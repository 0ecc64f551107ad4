package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
)

// ProjectSubmission is the single-shot project wizard payload (builder
// projects, as opposed to individual property listings).
type ProjectSubmission struct {
	Name           string   `json:"name"`
	Builder        string   `json:"builder"`
	ReraNumber     string   `json:"rera_number"`
	Location       string   `json:"location"`
	City           string   `json:"city"`
	PriceMin       float64  `json:"price_min"`
	PriceMax       float64  `json:"price_max"`
	Amenities      []string `json:"amenities"`
	PossessionDate string   `json:"possession_date"`
}

// ProjectFile is an attached brochure or gallery image.
type ProjectFile struct {
	FieldName string
	Filename  string
	Data      []byte
}

// SubmitProject sends the project as multipart; if the backend refuses the
// media type the JSON fallback (fields only, no files) is sent instead.
func (d *Dispatcher) SubmitProject(ctx context.Context, sub ProjectSubmission, files []ProjectFile) (string, error) {
	contentType, body, err := buildProjectMultipart(sub, files)
	if err != nil {
		return "", fmt.Errorf("failed to assemble project submission: %w", err)
	}

	fallback, err := json.Marshal(sub)
	if err != nil {
		return "", fmt.Errorf("failed to encode project fallback: %w", err)
	}

	receipt, err := d.client.SubmitProject(ctx, contentType, body, fallback)
	if err != nil {
		return "", err
	}
	return receipt.ProjectID(), nil
}

func buildProjectMultipart(sub ProjectSubmission, files []ProjectFile) (string, []byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields, err := json.Marshal(sub)
	if err != nil {
		return "", nil, err
	}
	var flat map[string]any
	if err := json.Unmarshal(fields, &flat); err != nil {
		return "", nil, err
	}
	for name, value := range flat {
		switch v := value.(type) {
		case string:
			if v == "" {
				continue
			}
			if err := w.WriteField(name, v); err != nil {
				return "", nil, err
			}
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				return "", nil, err
			}
			if err := w.WriteField(name, string(encoded)); err != nil {
				return "", nil, err
			}
		}
	}

	for i, f := range files {
		field := f.FieldName
		if field == "" {
			field = fmt.Sprintf("file_%d", i)
		}
		part, err := w.CreateFormFile(field, f.Filename)
		if err != nil {
			return "", nil, err
		}
		if _, err := part.Write(f.Data); err != nil {
			return "", nil, err
		}
	}

	if err := w.Close(); err != nil {
		return "", nil, err
	}
	return w.FormDataContentType(), buf.Bytes(), nil
}
