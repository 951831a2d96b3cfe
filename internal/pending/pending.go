// Package pending holds items awaiting a human decision from the admin:
// chat-registration requests and shared-link approvals. Items are keyed by a
// random token that stays valid no matter how many other items come and go,
// so resolving one item can never shift or reuse another item's identity.
package pending

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marzolo/thoughts-bot/internal/models"
)

// ErrNotFound is returned when a token is unknown or was already consumed.
var ErrNotFound = errors.New("no pending item for token")

// Request is one pending human-decision item. Exactly one of Chat or Link
// is set, per Kind.
type Request struct {
	Token     string
	Kind      string // KindChat or KindLink
	Chat      *models.ChatApproval
	Link      *models.LinkApproval
	CreatedAt time.Time
}

// Kinds of pending requests.
const (
	KindChat = "chat"
	KindLink = "link"
)

// Registry is the shared store of pending items. All operations are safe
// under concurrent use from the detection and resolution sides.
type Registry struct {
	mu    sync.Mutex
	items map[string]Request
}

// NewRegistry returns an empty pending-request registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Request)}
}

// AddChat stores a chat-registration request and returns its token.
func (r *Registry) AddChat(req models.ChatApproval) string {
	return r.add(Request{Kind: KindChat, Chat: &req})
}

// AddLink stores a link-approval request and returns its token.
func (r *Registry) AddLink(req models.LinkApproval) string {
	return r.add(Request{Kind: KindLink, Link: &req})
}

func (r *Registry) add(item Request) string {
	item.Token = uuid.NewString()
	item.CreatedAt = time.Now()
	r.mu.Lock()
	r.items[item.Token] = item
	r.mu.Unlock()
	return item.Token
}

// Peek returns the item for token without consuming it.
func (r *Registry) Peek(token string) (Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[token]
	if !ok {
		return Request{}, ErrNotFound
	}
	return item, nil
}

// Consume atomically removes and returns the item for token. A second
// Consume of the same token returns ErrNotFound.
func (r *Registry) Consume(token string) (Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[token]
	if !ok {
		return Request{}, ErrNotFound
	}
	delete(r.items, token)
	return item, nil
}

// List returns a snapshot of all outstanding items, oldest first.
func (r *Registry) List() []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Request, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
