package marketplace_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"estate-listing-backend/internal/marketplace"
)

func TestClient_SendEmailOTP(t *testing.T) {
	var gotEmail string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/send-email-otp", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))

		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		gotEmail = body["email"]

		json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "sent"})
	}))
	defer server.Close()

	client := marketplace.NewClient(server.URL, "test-key")
	err := client.SendEmailOTP(context.Background(), "user@example.com")

	assert.NoError(t, err)
	assert.Equal(t, "user@example.com", gotEmail)
}

func TestClient_SendEmailOTP_ServerDeclines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "rate limited"})
	}))
	defer server.Close()

	client := marketplace.NewClient(server.URL, "test-key")
	err := client.SendEmailOTP(context.Background(), "user@example.com")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestClient_SendEmailOTP_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "mailer offline"})
	}))
	defer server.Close()

	client := marketplace.NewClient(server.URL, "test-key")
	err := client.SendEmailOTP(context.Background(), "user@example.com")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "mailer offline")
}

func TestClient_VerifyEmailOTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/verify-otp", r.URL.Path)

		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		verified := body["otp"] == "314159"
		msg := "verified"
		if !verified {
			msg = "incorrect verification code"
		}
		json.NewEncoder(w).Encode(map[string]any{"verified": verified, "message": msg})
	}))
	defer server.Close()

	client := marketplace.NewClient(server.URL, "test-key")

	ok, msg, err := client.VerifyEmailOTP(context.Background(), "user@example.com", "314159")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "verified", msg)

	ok, msg, err = client.VerifyEmailOTP(context.Background(), "user@example.com", "999999")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "incorrect verification code", msg)
}

func TestClient_SubmitProperty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/properties/free", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "listing-42"})
	}))
	defer server.Close()

	client := marketplace.NewClient(server.URL, "test-key")
	receipt, err := client.SubmitProperty(context.Background(),
		"multipart/form-data; boundary=xyz", []byte("--xyz--"))

	assert.NoError(t, err)
	assert.Equal(t, "listing-42", receipt.ID)
}

func TestClient_SubmitProperty_SurfacesServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "pincode not serviceable"})
	}))
	defer server.Close()

	client := marketplace.NewClient(server.URL, "test-key")
	_, err := client.SubmitProperty(context.Background(), "multipart/form-data; boundary=xyz", nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 422")
	assert.Contains(t, err.Error(), "pincode not serviceable")
}

func TestClient_SubmitProject_MultipartAccepted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"project": map[string]string{"id": "proj-9"}})
	}))
	defer server.Close()

	client := marketplace.NewClient(server.URL, "test-key")
	receipt, err := client.SubmitProject(context.Background(),
		"multipart/form-data; boundary=xyz", []byte("--xyz--"), []byte(`{}`))

	assert.NoError(t, err)
	assert.Equal(t, "proj-9", receipt.ProjectID())
}

func TestClient_SubmitProject_FallsBackToJSONOn415(t *testing.T) {
	var contentTypes []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentTypes = append(contentTypes, r.Header.Get("Content-Type"))
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "proj-3"})
	}))
	defer server.Close()

	client := marketplace.NewClient(server.URL, "test-key")
	receipt, err := client.SubmitProject(context.Background(),
		"multipart/form-data; boundary=xyz", []byte("--xyz--"), []byte(`{"name":"Skyline Towers"}`))

	assert.NoError(t, err)
	assert.Equal(t, "proj-3", receipt.ProjectID())
	assert.Len(t, contentTypes, 2)
	assert.Equal(t, "application/json", contentTypes[1])
}

func TestClient_SubmitProject_NoFallbackOnOtherErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "rera number invalid"})
	}))
	defer server.Close()

	client := marketplace.NewClient(server.URL, "test-key")
	_, err := client.SubmitProject(context.Background(),
		"multipart/form-data; boundary=xyz", []byte("--xyz--"), []byte(`{}`))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rera number invalid")
	assert.Equal(t, 1, calls)
}

func TestClient_FetchListings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/properties", r.URL.Path)
		assert.Equal(t, "urgent", r.URL.Query().Get("view"))

		json.NewEncoder(w).Encode(map[string]any{
			"listings": []map[string]any{
				{"id": "l1", "title": "Corner plot facing the lake", "city": "Nagpur", "total_price": 2500000},
			},
		})
	}))
	defer server.Close()

	client := marketplace.NewClient(server.URL, "test-key")
	result, err := client.FetchListings(context.Background(), "urgent")

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, "l1", result[0].ID)
	assert.Equal(t, 2500000.0, result[0].TotalPrice)
}

func TestClient_RetryWithBackoff(t *testing.T) {
	client := marketplace.NewClient("https://api.test.com/", "test-key")

	callCount := 0
	err := client.RetryWithBackoff(func() error {
		callCount++
		if callCount < 2 {
			return assert.AnError
		}
		return nil
	}, 3)

	assert.NoError(t, err)
	assert.Equal(t, 2, callCount)
}

func TestClient_RetryWithBackoff_Exhausted(t *testing.T) {
	client := marketplace.NewClient("https://api.test.com/", "test-key")

	err := client.RetryWithBackoff(func() error {
		return assert.AnError
	}, 1)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 1 retries")
}
