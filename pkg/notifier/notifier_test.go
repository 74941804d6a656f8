package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chatcartlabs/chatcart-backend/pkg/config"
	"github.com/chatcartlabs/chatcart-backend/pkg/logger"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(config.NotifierConfig{}, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("new notifier client: %v", err)
	}
	return client
}

func TestPushDeliversJSONWithAuth(t *testing.T) {
	var gotAuth, gotContentType string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t)
	err := client.Push(context.Background(), Destination{
		WebhookURL:  server.URL,
		AccessToken: "token-123",
	}, map[string]string{"oid": "ord_abc123"})
	if err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if gotAuth != "Bearer token-123" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Fatalf("unexpected content type %q", gotContentType)
	}
	if gotBody["oid"] != "ord_abc123" {
		t.Fatalf("unexpected body %v", gotBody)
	}
}

func TestPushFailsOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t)
	err := client.Push(context.Background(), Destination{WebhookURL: server.URL}, map[string]string{})
	if err == nil {
		t.Fatalf("expected error for 502 response")
	}
}

func TestPushRequiresWebhookURL(t *testing.T) {
	client := newTestClient(t)
	if err := client.Push(context.Background(), Destination{}, nil); err == nil {
		t.Fatalf("expected error for empty webhook url")
	}
}
