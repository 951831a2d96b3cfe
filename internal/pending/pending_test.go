package pending

import (
	"errors"
	"sync"
	"testing"

	"github.com/marzolo/thoughts-bot/internal/models"
)

func TestConsumeExactlyOnce(t *testing.T) {
	r := NewRegistry()
	token := r.AddChat(models.ChatApproval{ChatID: 42, ChatName: "alice", ChatKind: "direct"})

	item, err := r.Consume(token)
	if err != nil {
		t.Fatalf("first consume failed: %v", err)
	}
	if item.Chat == nil || item.Chat.ChatID != 42 {
		t.Fatalf("consume returned wrong item: %+v", item)
	}

	if _, err := r.Consume(token); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second consume: want ErrNotFound, got %v", err)
	}
	if _, err := r.Peek(token); !errors.Is(err, ErrNotFound) {
		t.Fatalf("peek after consume: want ErrNotFound, got %v", err)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	r := NewRegistry()
	token := r.AddLink(models.LinkApproval{URL: "http://example.com/x", SourceChatID: 1})

	if _, err := r.Peek(token); err != nil {
		t.Fatalf("peek failed: %v", err)
	}
	if _, err := r.Consume(token); err != nil {
		t.Fatalf("consume after peek failed: %v", err)
	}
}

func TestTokensSurviveOtherRemovals(t *testing.T) {
	// Two items for the same chat; resolving the first must not disturb the
	// second, the way positional indices would.
	r := NewRegistry()
	first := r.AddLink(models.LinkApproval{URL: "http://a.example/1", SourceChatID: 7})
	second := r.AddLink(models.LinkApproval{URL: "http://a.example/2", SourceChatID: 7})

	if _, err := r.Consume(first); err != nil {
		t.Fatalf("rejecting first item failed: %v", err)
	}

	item, err := r.Consume(second)
	if err != nil {
		t.Fatalf("second item no longer resolvable: %v", err)
	}
	if item.Link.URL != "http://a.example/2" {
		t.Fatalf("second token resolved the wrong item: %s", item.Link.URL)
	}
}

func TestUnknownToken(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Consume("nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound for unknown token, got %v", err)
	}
}

func TestConcurrentConsumeSingleWinner(t *testing.T) {
	r := NewRegistry()
	token := r.AddChat(models.ChatApproval{ChatID: 1})

	const attempts = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Consume(token); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	if count != 1 {
		t.Fatalf("want exactly 1 successful consume, got %d", count)
	}
}

func TestListOldestFirst(t *testing.T) {
	r := NewRegistry()
	r.AddLink(models.LinkApproval{URL: "http://a.example/1"})
	r.AddLink(models.LinkApproval{URL: "http://a.example/2"})

	items := r.List()
	if len(items) != 2 {
		t.Fatalf("want 2 items, got %d", len(items))
	}
	if items[0].CreatedAt.After(items[1].CreatedAt) {
		t.Fatal("list is not ordered oldest first")
	}
}
