// Package storage hosts staged listing media in Supabase Storage. The
// public URL it returns becomes the file's serverURI, letting the final
// submission reference already-hosted assets instead of re-sending bytes.
package storage

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
)

type Client struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewClient(supabaseURL, publishableKey, bucket string) (*Client, error) {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", publishableKey, nil)

	return &Client{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// DraftObjectPath is the bucket key for one staged draft file:
// users/{user_id}/drafts/{draft_id}/{category}/{filename}.
func DraftObjectPath(userID, draftID uuid.UUID, category, filename string) string {
	return fmt.Sprintf("users/%s/drafts/%s/%s/%s", userID.String(), draftID.String(), category, filename)
}

// UploadDraftImage stores one staged file under its draft object path and
// returns the storage path plus its public URL.
func (s *Client) UploadDraftImage(userID, draftID uuid.UUID, category, filename string, data []byte) (string, string, error) {
	storagePath := DraftObjectPath(userID, draftID, category, filename)

	contentType := contentTypeFor(filename)
	upsert := true
	_, err := s.client.UploadFile(s.bucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload file: %w", err)
	}

	publicURL := fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, storagePath)
	return storagePath, publicURL, nil
}

func (s *Client) GetPublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, storagePath)
}

// DeleteDraftFiles removes everything staged for one draft, called when a
// wizard session is discarded without publishing.
func (s *Client) DeleteDraftFiles(userID, draftID uuid.UUID) error {
	prefix := fmt.Sprintf("users/%s/drafts/%s/", userID.String(), draftID.String())

	files, err := s.client.ListFiles(s.bucket, prefix, storage.FileSearchOptions{
		Limit: 1000,
	})
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	if len(files) > 0 {
		filePaths := make([]string, len(files))
		for i, file := range files {
			filePaths[i] = file.Name
		}
		_, err = s.client.RemoveFile(s.bucket, filePaths)
		if err != nil {
			return fmt.Errorf("failed to delete files: %w", err)
		}
	}

	return nil
}

func contentTypeFor(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	case strings.HasSuffix(lower, ".mp4"):
		return "video/mp4"
	case strings.HasSuffix(lower, ".mov"):
		return "video/quicktime"
	default:
		return "image/jpeg"
	}
}
