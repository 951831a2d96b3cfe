package handlers

import (
	"log"

	"github.com/marzolo/thoughts-bot/internal/config"
	"github.com/marzolo/thoughts-bot/internal/linkwatch"
	"github.com/marzolo/thoughts-bot/internal/pending"
	"github.com/marzolo/thoughts-bot/internal/publisher"
	"github.com/marzolo/thoughts-bot/internal/registry"
	"github.com/marzolo/thoughts-bot/internal/session"
	"github.com/marzolo/thoughts-bot/internal/telegram_api"
)

// HandlerDependencies contains everything the handlers need. All shared
// mutable state (registry, pending items, sessions) is injected here rather
// than reached through package globals.
type HandlerDependencies struct {
	Config    *config.Config
	BotClient *telegram_api.BotClient
	Sessions  *session.SessionManager
	Registry  *registry.ChatRegistry
	Pending   *pending.Registry
	Publisher publisher.Publisher
	Links     *linkwatch.Watcher
}

// BotHandler encapsulates message and callback handling.
type BotHandler struct {
	Deps HandlerDependencies
}

// NewBotHandler creates a BotHandler and refuses to start half-wired.
func NewBotHandler(deps HandlerDependencies) *BotHandler {
	if deps.Config == nil || deps.BotClient == nil || deps.Sessions == nil ||
		deps.Registry == nil || deps.Pending == nil || deps.Publisher == nil || deps.Links == nil {
		panic("not all BotHandler dependencies were provided")
	}
	return &BotHandler{Deps: deps}
}

// isAdmin reports whether chatID is the designated administrator chat.
func (bh *BotHandler) isAdmin(chatID int64) bool {
	return chatID == bh.Deps.Config.AdminChatID
}

// sendMessage sends plain text to a chat, logging failures only.
func (bh *BotHandler) sendMessage(chatID int64, text string) {
	telegram_api.SendText(bh.Deps.BotClient, chatID, text)
}

// notifyAdmin sends an operational notification to the administrator chat.
func (bh *BotHandler) notifyAdmin(text string) {
	telegram_api.SendText(bh.Deps.BotClient, bh.Deps.Config.AdminChatID, text)
}

// recoverHandler keeps a panic in one update from killing the process; the
// update loop runs each handler in its own goroutine.
func (bh *BotHandler) recoverHandler(where string) {
	if r := recover(); r != nil {
		log.Printf("[%s] recovered from panic: %v", where, r)
		bh.notifyAdmin("Error in bot: internal fault while handling an update, see logs.")
	}
}
