package session

import (
	"log"
	"sync"
	"time"

	"github.com/marzolo/thoughts-bot/internal/constants"
	"github.com/marzolo/thoughts-bot/internal/models"
)

// ThoughtDraft is the in-progress thought dialog of one chat. It lives only
// in memory: nothing has been confirmed yet, so losing it on restart is
// acceptable.
type ThoughtDraft struct {
	Content   string
	CreatedAt time.Time
	SavedName string // default author looked up at dialog start
	Author    string // resolved author after the confirm/edit step
}

// SessionManager owns all per-chat dialog state. Every map is guarded by
// its own mutex; handlers for different chats run concurrently.
type SessionManager struct {
	userStates     map[int64]string // key: chatID, value: constants.STATE_*
	userStateMutex sync.RWMutex

	drafts      map[int64]ThoughtDraft
	draftsMutex sync.RWMutex

	// cssInputs holds the consumed chat-approval a direct-chat approval is
	// waiting to finalize, keyed by the admin chat that must answer.
	cssInputs      map[int64]models.ChatApproval
	cssInputsMutex sync.Mutex
}

// NewSessionManager creates an empty session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		userStates: make(map[int64]string),
		drafts:     make(map[int64]ThoughtDraft),
		cssInputs:  make(map[int64]models.ChatApproval),
	}
}

// GetState returns the chat's current dialog state, STATE_IDLE if none.
func (sm *SessionManager) GetState(chatID int64) string {
	sm.userStateMutex.RLock()
	defer sm.userStateMutex.RUnlock()
	state, ok := sm.userStates[chatID]
	if !ok {
		return constants.STATE_IDLE
	}
	return state
}

// SetState sets a new dialog state for the chat.
func (sm *SessionManager) SetState(chatID int64, state string) {
	sm.userStateMutex.Lock()
	defer sm.userStateMutex.Unlock()
	sm.userStates[chatID] = state
	log.Printf("SessionManager.SetState: chatID %d -> %s", chatID, state)
}

// ClearState resets the chat back to STATE_IDLE.
func (sm *SessionManager) ClearState(chatID int64) {
	sm.userStateMutex.Lock()
	defer sm.userStateMutex.Unlock()
	delete(sm.userStates, chatID)
}

// GetDraft returns the chat's in-progress thought, if any.
func (sm *SessionManager) GetDraft(chatID int64) (ThoughtDraft, bool) {
	sm.draftsMutex.RLock()
	defer sm.draftsMutex.RUnlock()
	draft, ok := sm.drafts[chatID]
	return draft, ok
}

// UpdateDraft stores the chat's in-progress thought.
func (sm *SessionManager) UpdateDraft(chatID int64, draft ThoughtDraft) {
	sm.draftsMutex.Lock()
	defer sm.draftsMutex.Unlock()
	sm.drafts[chatID] = draft
}

// ClearDraft discards the chat's in-progress thought.
func (sm *SessionManager) ClearDraft(chatID int64) {
	sm.draftsMutex.Lock()
	defer sm.draftsMutex.Unlock()
	delete(sm.drafts, chatID)
}

// SetCSSInput parks a consumed chat approval until the admin replies with a
// display class.
func (sm *SessionManager) SetCSSInput(adminChatID int64, req models.ChatApproval) {
	sm.cssInputsMutex.Lock()
	defer sm.cssInputsMutex.Unlock()
	sm.cssInputs[adminChatID] = req
}

// TakeCSSInput removes and returns the parked chat approval, if any.
func (sm *SessionManager) TakeCSSInput(adminChatID int64) (models.ChatApproval, bool) {
	sm.cssInputsMutex.Lock()
	defer sm.cssInputsMutex.Unlock()
	req, ok := sm.cssInputs[adminChatID]
	if ok {
		delete(sm.cssInputs, adminChatID)
	}
	return req, ok
}
