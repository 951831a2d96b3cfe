package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marzolo/thoughts-bot/internal/models"
)

func TestDispatchSuccess(t *testing.T) {
	var got dispatchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("auth header = %q", auth)
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("missing request id header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDispatchPublisher(srv.URL, "secret")
	rec := models.ThoughtRecord{Author: "Alice", Content: "hello", Datetime: "2025-03-09T14:05:07Z"}
	if err := d.Publish(context.Background(), "thought", rec); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if got.EventType != "thought" {
		t.Fatalf("event type = %q", got.EventType)
	}
	if got.ClientPayload.Content != "hello" || got.ClientPayload.Author != "Alice" {
		t.Fatalf("payload = %+v", got.ClientPayload)
	}
}

func TestDispatchNonAcceptedStatusIsTotalFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	d := NewDispatchPublisher(srv.URL, "secret")
	err := d.Publish(context.Background(), "link", models.ThoughtRecord{})
	if err == nil {
		t.Fatal("want error for non-accepted status")
	}
	var pubErr *PublishError
	if !errors.As(err, &pubErr) {
		t.Fatalf("want *PublishError, got %T", err)
	}
	if pubErr.Partial {
		t.Fatal("dispatch failures must never be partial")
	}
}

func TestDispatchTransportFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	d := NewDispatchPublisher(srv.URL, "")
	err := d.Publish(context.Background(), "thought", models.ThoughtRecord{})
	var pubErr *PublishError
	if !errors.As(err, &pubErr) || pubErr.Partial {
		t.Fatalf("want total *PublishError, got %v", err)
	}
}

func TestDispatch200IsNotSuccess(t *testing.T) {
	// Only the one acknowledgement status counts; a generic 200 does not.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatchPublisher(srv.URL, "")
	if err := d.Publish(context.Background(), "thought", models.ThoughtRecord{}); err == nil {
		t.Fatal("want error for status 200")
	}
}
