// Package marketplace is the HTTP client for the marketplace backend: OTP
// issuance and verification, property submission, project submission and
// listing views. The backend is a black-box collaborator; this client only
// implements the request/response contracts.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// requestTimeout bounds every call; timeouts surface a distinct message so
// the UI can tell a slow backend from a rejected request.
const requestTimeout = 15 * time.Second

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

type otpResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type verifyResponse struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message"`
}

// PropertyReceipt is the acknowledgement for a published listing.
type PropertyReceipt struct {
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
}

// ProjectReceipt tolerates both acknowledgement shapes the backend emits:
// {"project":{"id":...}} and a flat {"id":...}.
type ProjectReceipt struct {
	ID      string `json:"id"`
	Project struct {
		ID string `json:"id"`
	} `json:"project"`
}

func (r *ProjectReceipt) ProjectID() string {
	if r.Project.ID != "" {
		return r.Project.ID
	}
	return r.ID
}

// ListingSummary is one row of a marketplace list view.
type ListingSummary struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	City       string  `json:"city"`
	TotalPrice float64 `json:"total_price"`
	ImageURL   string  `json:"image_url,omitempty"`
	IsUrgent   bool    `json:"is_urgent,omitempty"`
}

func (c *Client) url(path string) string {
	return strings.TrimSuffix(c.baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("request timed out after %s: %w", requestTimeout, err)
		}
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	return resp, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// SendEmailOTP asks the backend to email a one-time code.
// POST /api/auth/send-email-otp {email} -> {success, message}.
func (c *Client) SendEmailOTP(ctx context.Context, email string) error {
	payload, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("auth/send-email-otp"), bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("failed to send OTP: status %d, %s", resp.StatusCode, serverMessage(body))
	}

	var result otpResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}
	if !result.Success {
		return fmt.Errorf("failed to send OTP: %s", orDefault(result.Message, "server declined the request"))
	}
	return nil
}

// VerifyEmailOTP submits a candidate code for verification.
// POST /api/auth/verify-otp {email, otp} -> {verified, message}.
func (c *Client) VerifyEmailOTP(ctx context.Context, email, code string) (bool, string, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "otp": code})
	if err != nil {
		return false, "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("auth/verify-otp"), bytes.NewBuffer(payload))
	if err != nil {
		return false, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return false, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, "", fmt.Errorf("failed to verify OTP: status %d, %s", resp.StatusCode, serverMessage(body))
	}

	var result verifyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return false, "", fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}
	return result.Verified, result.Message, nil
}

// SubmitProperty posts the assembled multipart listing payload.
// POST /api/properties/free -> {id, ...}.
func (c *Client) SubmitProperty(ctx context.Context, contentType string, body []byte) (*PropertyReceipt, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("properties/free"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Surface the server's own message verbatim when it sent one.
		return nil, fmt.Errorf("submission failed: status %d, %s", resp.StatusCode, serverMessage(respBody))
	}

	var receipt PropertyReceipt
	if err := json.Unmarshal(respBody, &receipt); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(respBody))
	}
	if receipt.ID == "" {
		return nil, fmt.Errorf("listing id missing in response, body: %s", string(respBody))
	}
	return &receipt, nil
}

// SubmitProject posts a project submission. The multipart body is tried
// first; if the backend rejects the media type (415) the jsonFallback body
// is sent instead, which drops file parts but preserves the fields.
func (c *Client) SubmitProject(ctx context.Context, contentType string, multipartBody []byte, jsonFallback []byte) (*ProjectReceipt, error) {
	receipt, status, err := c.postProject(ctx, contentType, multipartBody)
	if err == nil {
		return receipt, nil
	}
	if status != http.StatusUnsupportedMediaType || jsonFallback == nil {
		return nil, err
	}
	receipt, _, err = c.postProject(ctx, "application/json", jsonFallback)
	return receipt, err
}

func (c *Client) postProject(ctx context.Context, contentType string, body []byte) (*ProjectReceipt, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("projects"), bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, fmt.Errorf("project submission failed: status %d, %s", resp.StatusCode, serverMessage(respBody))
	}

	var receipt ProjectReceipt
	if err := json.Unmarshal(respBody, &receipt); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode response: %w, body: %s", err, string(respBody))
	}
	if receipt.ProjectID() == "" {
		return nil, resp.StatusCode, fmt.Errorf("project id missing in response, body: %s", string(respBody))
	}
	return &receipt, resp.StatusCode, nil
}

// FetchListings retrieves one named list view (featured, urgent, free).
func (c *Client) FetchListings(ctx context.Context, view string) ([]ListingSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("properties?view="+view), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to fetch %s listings: status %d, %s", view, resp.StatusCode, serverMessage(body))
	}

	var result struct {
		Listings []ListingSummary `json:"listings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Listings, nil
}

// RetryWithBackoff executes fn with exponential backoff between attempts.
func (c *Client) RetryWithBackoff(fn func() error, maxRetries int) error {
	backoffs := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if i < len(backoffs) {
			time.Sleep(backoffs[i])
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

// serverMessage extracts a human-readable message from an error response
// body, falling back to the raw body.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if len(body) == 0 {
		return "no response body"
	}
	return string(body)
}

func orDefault(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
