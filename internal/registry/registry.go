// Package registry owns the persisted chat-authorization store. The store is
// a single JSON document keyed by chat id, re-read before every check and
// rewritten whole after every mutation, so the file on disk is always the
// source of truth even if it is edited by hand between updates.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/marzolo/thoughts-bot/internal/constants"
	"github.com/marzolo/thoughts-bot/internal/models"
)

// ErrUnauthorized is returned when a chat that is not present and approved
// in the registry attempts an operation that requires registration.
var ErrUnauthorized = errors.New("chat is not authorized")

// ErrNotRegistered is returned when an operation targets a chat id that has
// no registry entry.
var ErrNotRegistered = errors.New("chat is not registered")

// ChatRegistry serializes all reads and writes of the registry document
// behind a single mutex.
type ChatRegistry struct {
	mu   sync.Mutex
	path string
}

// New returns a registry backed by the JSON document at path. The file is
// created lazily on the first mutation.
func New(path string) *ChatRegistry {
	return &ChatRegistry{path: path}
}

// load reads the whole document. A missing file is an empty registry.
func (r *ChatRegistry) load() (map[string]models.ChatAccount, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]models.ChatAccount{}, nil
		}
		return nil, fmt.Errorf("reading registry %s: %w", r.path, err)
	}
	accounts := map[string]models.ChatAccount{}
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("parsing registry %s: %w", r.path, err)
	}
	return accounts, nil
}

// save rewrites the whole document atomically (temp file + rename).
func (r *ChatRegistry) save(accounts map[string]models.ChatAccount) error {
	data, err := json.MarshalIndent(accounts, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating registry dir: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing registry: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replacing registry: %w", err)
	}
	return nil
}

func key(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// Get returns the account for chatID, if any.
func (r *ChatRegistry) Get(chatID int64) (models.ChatAccount, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	accounts, err := r.load()
	if err != nil {
		return models.ChatAccount{}, false, err
	}
	acc, ok := accounts[key(chatID)]
	return acc, ok, nil
}

// Authorize is the guard evaluated at the top of every chat-facing
// operation: it succeeds only for chats that are present and approved.
func (r *ChatRegistry) Authorize(chatID int64) (models.ChatAccount, error) {
	acc, ok, err := r.Get(chatID)
	if err != nil {
		return models.ChatAccount{}, err
	}
	if !ok || acc.Status != constants.REG_STATUS_APPROVED {
		return models.ChatAccount{}, ErrUnauthorized
	}
	return acc, nil
}

// Upsert writes (or overwrites) the account for acc.ChatID.
func (r *ChatRegistry) Upsert(acc models.ChatAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	accounts, err := r.load()
	if err != nil {
		return err
	}
	accounts[key(acc.ChatID)] = acc
	return r.save(accounts)
}

// SetDefaultAuthor persists a new default author name for a registered chat.
func (r *ChatRegistry) SetDefaultAuthor(chatID int64, author string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	accounts, err := r.load()
	if err != nil {
		return err
	}
	acc, ok := accounts[key(chatID)]
	if !ok {
		return ErrNotRegistered
	}
	acc.DefaultAuthor = author
	accounts[key(chatID)] = acc
	return r.save(accounts)
}

// Remove deletes the account for chatID.
func (r *ChatRegistry) Remove(chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	accounts, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := accounts[key(chatID)]; !ok {
		return ErrNotRegistered
	}
	delete(accounts, key(chatID))
	return r.save(accounts)
}

// List returns all accounts ordered by chat id, for the export and ops API.
func (r *ChatRegistry) List() ([]models.ChatAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	accounts, err := r.load()
	if err != nil {
		return nil, err
	}
	out := make([]models.ChatAccount, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChatID < out[j].ChatID })
	return out, nil
}
