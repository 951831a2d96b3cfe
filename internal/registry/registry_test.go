package registry

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/marzolo/thoughts-bot/internal/constants"
	"github.com/marzolo/thoughts-bot/internal/models"
)

func newTestRegistry(t *testing.T) *ChatRegistry {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "config.json"))
}

func TestAuthorizeUnknownChat(t *testing.T) {
	r := newTestRegistry(t)
	if _, err := r.Authorize(123); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized for unknown chat, got %v", err)
	}
}

func TestAuthorizeUnapprovedChat(t *testing.T) {
	r := newTestRegistry(t)
	err := r.Upsert(models.ChatAccount{
		ChatID: 123,
		Name:   "alice",
		Kind:   constants.CHAT_KIND_DIRECT,
		Status: constants.REG_STATUS_PENDING,
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if _, err := r.Authorize(123); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized for pending chat, got %v", err)
	}
}

func TestUpsertAndAuthorize(t *testing.T) {
	r := newTestRegistry(t)
	err := r.Upsert(models.ChatAccount{
		ChatID:        123,
		Name:          "alice",
		Kind:          constants.CHAT_KIND_DIRECT,
		Status:        constants.REG_STATUS_APPROVED,
		CSSClass:      "quote",
		DefaultAuthor: "Alice",
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	acc, err := r.Authorize(123)
	if err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if acc.CSSClass != "quote" || acc.DefaultAuthor != "Alice" {
		t.Fatalf("unexpected account: %+v", acc)
	}
}

func TestPersistenceAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	first := New(path)
	err := first.Upsert(models.ChatAccount{
		ChatID: 7,
		Name:   "group",
		Kind:   constants.CHAT_KIND_GROUP,
		Status: constants.REG_STATUS_APPROVED,
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	// A fresh instance re-reads the document from disk.
	second := New(path)
	if _, err := second.Authorize(7); err != nil {
		t.Fatalf("authorize on fresh instance failed: %v", err)
	}
}

func TestSetDefaultAuthor(t *testing.T) {
	r := newTestRegistry(t)
	if err := r.SetDefaultAuthor(1, "Bob"); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("want ErrNotRegistered for unknown chat, got %v", err)
	}

	if err := r.Upsert(models.ChatAccount{ChatID: 1, Status: constants.REG_STATUS_APPROVED}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := r.SetDefaultAuthor(1, "Bob"); err != nil {
		t.Fatalf("set default author failed: %v", err)
	}

	acc, _, err := r.Get(1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if acc.DefaultAuthor != "Bob" {
		t.Fatalf("default author not persisted: %+v", acc)
	}
}

func TestRemove(t *testing.T) {
	r := newTestRegistry(t)
	if err := r.Remove(9); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("want ErrNotRegistered, got %v", err)
	}

	if err := r.Upsert(models.ChatAccount{ChatID: 9, Status: constants.REG_STATUS_APPROVED}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := r.Remove(9); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, found, err := r.Get(9); err != nil || found {
		t.Fatalf("chat still present after remove (found=%v, err=%v)", found, err)
	}
}

func TestListSorted(t *testing.T) {
	r := newTestRegistry(t)
	for _, id := range []int64{30, 10, 20} {
		if err := r.Upsert(models.ChatAccount{ChatID: id, Status: constants.REG_STATUS_APPROVED}); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}
	accounts, err := r.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(accounts) != 3 || accounts[0].ChatID != 10 || accounts[2].ChatID != 30 {
		t.Fatalf("unexpected order: %+v", accounts)
	}
}
