package mailblinker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tempmail-otp-bot/internal/models"
	"tempmail-otp-bot/internal/provider"
)

type recordedRequest struct {
	method string
	path   string
	auth   string
	body   string
}

func newTestServer(t *testing.T, status int, response string) (*Client, *[]recordedRequest) {
	t.Helper()

	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			auth:   r.Header.Get("Authorization"),
			body:   string(body),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(models.MailblinkerConfig{BaseURL: srv.URL + "/", Token: "secret-token"})
	return client, &requests
}

func TestCreateAddress(t *testing.T) {
	client, requests := newTestServer(t, http.StatusOK, `{"email": "tmp1@mail.test"}`)

	address, err := client.CreateAddress(context.Background())
	if err != nil {
		t.Fatalf("CreateAddress() error: %v", err)
	}
	if address != "tmp1@mail.test" {
		t.Errorf("CreateAddress() = %q, want tmp1@mail.test", address)
	}

	if len(*requests) != 1 {
		t.Fatalf("Expected 1 request, got %d", len(*requests))
	}
	req := (*requests)[0]
	if req.method != http.MethodPost || req.path != "/api/mail/create-mail" {
		t.Errorf("Unexpected request %s %s", req.method, req.path)
	}
	if req.auth != "Bearer secret-token" {
		t.Errorf("Authorization = %q", req.auth)
	}
	if req.body != "" {
		t.Errorf("Expected empty body, got %q", req.body)
	}
}

func TestCreateAddress_Failures(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		response    string
		wantNoAddr  bool
		wantMessage string
	}{
		{name: "Missing email field", status: http.StatusOK, response: `{"id": 3}`, wantNoAddr: true},
		{name: "Blank email field", status: http.StatusOK, response: `{"email": "  "}`, wantNoAddr: true},
		{name: "Null email field", status: http.StatusOK, response: `{"email": null}`, wantNoAddr: true},
		{name: "Server error", status: http.StatusInternalServerError, response: `boom`, wantMessage: "unexpected status 500: boom"},
		{name: "Unauthorized", status: http.StatusUnauthorized, response: `{"error":"bad token"}`, wantMessage: "unexpected status 401"},
		{name: "Malformed JSON", status: http.StatusOK, response: `{"email":`, wantMessage: "decoding response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestServer(t, tt.status, tt.response)

			_, err := client.CreateAddress(context.Background())
			if err == nil {
				t.Fatal("Expected an error")
			}

			var perr *provider.Error
			if !errors.As(err, &perr) {
				t.Fatalf("Expected *provider.Error, got %T: %v", err, err)
			}
			if perr.Op != "create-mail" {
				t.Errorf("Op = %q, want create-mail", perr.Op)
			}
			if errors.Is(err, provider.ErrNoAddress) != tt.wantNoAddr {
				t.Errorf("errors.Is(ErrNoAddress) = %v, want %v", !tt.wantNoAddr, tt.wantNoAddr)
			}
			if tt.wantMessage != "" && !strings.Contains(err.Error(), tt.wantMessage) {
				t.Errorf("Error %q does not contain %q", err.Error(), tt.wantMessage)
			}
		})
	}
}

func TestCreateAddress_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(models.MailblinkerConfig{BaseURL: url, Token: "t"})
	_, err := client.CreateAddress(context.Background())

	var perr *provider.Error
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *provider.Error, got %T: %v", err, err)
	}
}

func TestListMessages(t *testing.T) {
	client, requests := newTestServer(t, http.StatusOK, `{"messages": [
		{"subject": "Welcome", "body": "hello", "from": "team@site.test"},
		{"subject": "Code", "body": 123456}
	]}`)

	messages, err := client.ListMessages(context.Background(), "tmp1@mail.test")
	if err != nil {
		t.Fatalf("ListMessages() error: %v", err)
	}

	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if messages[0].Subject != "Welcome" || messages[0].Body != "hello" || messages[0].From != "team@site.test" {
		t.Errorf("Unexpected first message %+v", messages[0])
	}
	if messages[1].Body != "123456" {
		t.Errorf("Expected numeric body to be kept as text, got %q", messages[1].Body)
	}

	req := (*requests)[0]
	if req.path != "/api/mail/messages" {
		t.Errorf("Unexpected path %s", req.path)
	}
	var body map[string]string
	if err := json.Unmarshal([]byte(req.body), &body); err != nil || body["email"] != "tmp1@mail.test" {
		t.Errorf("Unexpected request body %q", req.body)
	}
}

func TestListMessages_Empty(t *testing.T) {
	for _, response := range []string{`{"messages": []}`, `{}`, `{"messages": null}`} {
		client, _ := newTestServer(t, http.StatusOK, response)

		messages, err := client.ListMessages(context.Background(), "tmp1@mail.test")
		if err != nil {
			t.Fatalf("ListMessages(%s) error: %v", response, err)
		}
		if messages == nil || len(messages) != 0 {
			t.Errorf("ListMessages(%s) = %#v, want empty slice", response, messages)
		}
	}
}

func TestListMessages_Error(t *testing.T) {
	client, _ := newTestServer(t, http.StatusBadGateway, "upstream down")

	_, err := client.ListMessages(context.Background(), "tmp1@mail.test")

	var perr *provider.Error
	if !errors.As(err, &perr) || perr.Op != "messages" {
		t.Fatalf("Expected messages provider error, got %v", err)
	}
}

func TestLatestCodeOrLink(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected models.CodeResult
	}{
		{
			name:     "OTP",
			response: `{"otp": "482913"}`,
			expected: models.CodeResult{Kind: models.CodeOTP, Value: "482913"},
		},
		{
			name:     "Numeric OTP",
			response: `{"otp": 482913}`,
			expected: models.CodeResult{Kind: models.CodeOTP, Value: "482913"},
		},
		{
			name:     "Link",
			response: `{"otp": null, "link": "https://site.test/verify?t=1"}`,
			expected: models.CodeResult{Kind: models.CodeLink, Value: "https://site.test/verify?t=1"},
		},
		{
			name:     "OTP wins over link",
			response: `{"otp": "1111", "link": "https://site.test"}`,
			expected: models.CodeResult{Kind: models.CodeOTP, Value: "1111"},
		},
		{
			name:     "Nothing found",
			response: `{"message": "no unread mail"}`,
			expected: models.CodeResult{Kind: models.CodeUnknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, requests := newTestServer(t, http.StatusOK, tt.response)

			got, err := client.LatestCodeOrLink(context.Background(), "tmp1@mail.test")
			if err != nil {
				t.Fatalf("LatestCodeOrLink() error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("LatestCodeOrLink() = %+v, want %+v", got, tt.expected)
			}
			if (*requests)[0].path != "/api/mail/last-unread-otp-or-link" {
				t.Errorf("Unexpected path %s", (*requests)[0].path)
			}
		})
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(models.MailblinkerConfig{Token: "t"})
	if client.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", client.baseURL, DefaultBaseURL)
	}
	if client.httpClient.Timeout != 0 {
		t.Errorf("Expected no client timeout by default, got %v", client.httpClient.Timeout)
	}
	if client.Name() != "mailblinker" {
		t.Errorf("Name() = %q", client.Name())
	}
}
