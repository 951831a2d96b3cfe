package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/marzolo/thoughts-bot/internal/models"
)

// dispatchAcceptedStatus is the one acknowledgement the automation endpoint
// returns on success. Anything else is a total failure: nothing was written
// anywhere, so there is no partial state to recover.
const dispatchAcceptedStatus = http.StatusNoContent

// DispatchPublisher hands the record to an external automation pipeline
// with a single authenticated POST.
type DispatchPublisher struct {
	URL    string
	Token  string
	Client *http.Client
}

// NewDispatchPublisher returns the remote dispatch strategy.
func NewDispatchPublisher(url, token string) *DispatchPublisher {
	return &DispatchPublisher{
		URL:    url,
		Token:  token,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

// dispatchRequest is the wire shape of the automation call: an event-kind
// tag plus the flat record payload.
type dispatchRequest struct {
	EventType     string               `json:"event_type"`
	ClientPayload models.ThoughtRecord `json:"client_payload"`
}

// Publish issues the dispatch call and treats exactly one status code as
// success.
func (d *DispatchPublisher) Publish(ctx context.Context, kind string, rec models.ThoughtRecord) error {
	payload, err := json.Marshal(dispatchRequest{EventType: kind, ClientPayload: rec})
	if err != nil {
		return &PublishError{Err: fmt.Errorf("encoding dispatch payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(payload))
	if err != nil {
		return &PublishError{Err: fmt.Errorf("building dispatch request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if d.Token != "" {
		req.Header.Set("Authorization", "Bearer "+d.Token)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return &PublishError{Err: fmt.Errorf("calling dispatch endpoint: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != dispatchAcceptedStatus {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &PublishError{Err: fmt.Errorf("dispatch endpoint returned %d: %s", resp.StatusCode, string(body))}
	}

	log.Printf("DispatchPublisher: %s event accepted by %s", kind, d.URL)
	return nil
}
