package handlers

import (
	"errors"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"github.com/marzolo/thoughts-bot/internal/constants"
	"github.com/marzolo/thoughts-bot/internal/registry"
)

// chatKind maps the transport's chat type onto our two kinds.
func chatKind(chat tgbotapi.Chat) string {
	if chat.Type == "private" {
		return constants.CHAT_KIND_DIRECT
	}
	return constants.CHAT_KIND_GROUP
}

// chatDisplayName picks the best human-readable name for a chat.
func chatDisplayName(message *tgbotapi.Message) string {
	if message.Chat.Title != "" {
		return message.Chat.Title
	}
	if message.From != nil && message.From.UserName != "" {
		return message.From.UserName
	}
	if message.From != nil {
		return strings.TrimSpace(message.From.FirstName + " " + message.From.LastName)
	}
	return strconv.FormatInt(message.Chat.ID, 10)
}

// HandleMessage processes one inbound text message. It runs in its own
// goroutine; a fault here must never take down the update loop.
func (bh *BotHandler) HandleMessage(update tgbotapi.Update) {
	defer bh.recoverHandler("MESSAGE")

	message := update.Message
	if message == nil {
		return
	}

	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)
	kind := chatKind(message.Chat)

	log.Printf("[MESSAGE] ChatID=%d Kind=%s Text='%.80s'", chatID, kind, text)

	if message.IsCommand() {
		bh.handleCommand(message, kind)
		return
	}

	if kind == constants.CHAT_KIND_GROUP {
		bh.watchGroupLinks(message)
		return
	}

	// Direct chat. The admin's next text may belong to the display-class
	// sub-dialog of a chat approval.
	if bh.isAdmin(chatID) && bh.Deps.Sessions.GetState(chatID) == constants.STATE_ADMIN_CSS_INPUT {
		bh.handleAdminCSSInput(text)
		return
	}

	switch state := bh.Deps.Sessions.GetState(chatID); state {
	case constants.STATE_AUTHOR_INPUT:
		bh.saveCustomAuthor(chatID, text)
	case constants.STATE_USERNAME_CONFIRM, constants.STATE_PREVIEW:
		// These states only advance via their buttons; stray text is not an
		// event for them.
		log.Printf("[MESSAGE] ChatID=%d sent text while in state %s, ignored", chatID, state)
	default:
		bh.startThought(message, text)
	}
}

func (bh *BotHandler) handleCommand(message *tgbotapi.Message, kind string) {
	chatID := message.Chat.ID

	switch message.Command() {
	case "addchat":
		bh.requestChatRegistration(message, kind)
	case "removechat":
		bh.removeChat(chatID, strings.TrimSpace(message.CommandArguments()))
	case "cancel":
		bh.cancelThought(chatID)
	case "export":
		bh.exportRegistry(chatID)
	default:
		log.Printf("[MESSAGE] unknown command '%s' from chatID %d", message.Command(), chatID)
		bh.sendMessage(chatID, "Unknown command.")
	}
}

// requestChatRegistration files a pending ChatApproval and prompts the
// administrator. Any chat may ask; only the admin resolves.
func (bh *BotHandler) requestChatRegistration(message *tgbotapi.Message, kind string) {
	chatID := message.Chat.ID

	if _, found, err := bh.Deps.Registry.Get(chatID); err != nil {
		log.Printf("[MESSAGE] registry read failed for chatID %d: %v", chatID, err)
		bh.sendMessage(chatID, "Something went wrong, please try again later.")
		return
	} else if found {
		bh.sendMessage(chatID, "This chat is already registered!")
		return
	}

	if err := bh.sendChatApprovalPrompt(chatID, chatDisplayName(message), kind); err != nil {
		bh.sendMessage(chatID, "Could not reach the administrator right now, please try again later.")
		return
	}
	bh.sendMessage(chatID, "Registration request sent to administrator. Please wait for approval.")
}

// removeChat deletes a chat from the registry. Admin only.
func (bh *BotHandler) removeChat(actorChatID int64, arg string) {
	if !bh.isAdmin(actorChatID) {
		log.Printf("[MESSAGE] unauthorized /removechat from chatID %d", actorChatID)
		bh.sendMessage(actorChatID, "Only the admin can remove chats.")
		return
	}
	if arg == "" {
		bh.sendMessage(actorChatID, "Usage: /removechat <chat_id>")
		return
	}
	targetID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		bh.sendMessage(actorChatID, "Usage: /removechat <chat_id>")
		return
	}

	switch err := bh.Deps.Registry.Remove(targetID); {
	case err == nil:
		bh.sendMessage(actorChatID, "Chat "+arg+" removed successfully!")
	case errors.Is(err, registry.ErrNotRegistered):
		bh.sendMessage(actorChatID, "Chat "+arg+" not found in the registry.")
	default:
		log.Printf("[MESSAGE] failed to remove chat %s: %v", arg, err)
		bh.sendMessage(actorChatID, "Failed to remove chat, see logs.")
	}
}

// cancelThought is the explicit cancel path, accepted in any non-terminal
// dialog state. Cancelling the admin's display-class sub-dialog puts the
// parked approval back into the pending registry so the request is never
// lost.
func (bh *BotHandler) cancelThought(chatID int64) {
	if bh.isAdmin(chatID) {
		if req, ok := bh.Deps.Sessions.TakeCSSInput(chatID); ok {
			bh.Deps.Sessions.ClearState(chatID)
			token := bh.Deps.Pending.AddChat(req)
			// The item stays pending even if the fresh prompt cannot be
			// delivered; it remains visible through the ops API.
			if err := bh.promptChatApproval(token, req); err != nil {
				log.Printf("[MESSAGE] failed to resend approval prompt for chatID %d: %v", req.ChatID, err)
			}
			bh.sendMessage(chatID, "Display-class input cancelled. The registration request is pending again.")
			return
		}
	}

	if bh.Deps.Sessions.GetState(chatID) == constants.STATE_IDLE {
		bh.sendMessage(chatID, "Nothing to cancel.")
		return
	}
	bh.Deps.Sessions.ClearState(chatID)
	bh.Deps.Sessions.ClearDraft(chatID)
	bh.sendMessage(chatID, "Thought creation cancelled.")
}
