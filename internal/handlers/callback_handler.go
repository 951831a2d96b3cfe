package handlers

import (
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"github.com/marzolo/thoughts-bot/internal/constants"
	"github.com/marzolo/thoughts-bot/internal/telegram_api"
)

// callbackAction is a parsed button payload: an action tag plus, for the
// approval flows, the pending-item token it carries.
type callbackAction struct {
	Action string
	Token  string
}

// parseCallback validates a raw callback payload. Malformed payloads are
// rejected here so a bad button can never crash the dispatch loop.
func parseCallback(data string) (callbackAction, error) {
	switch data {
	case constants.CALLBACK_THOUGHT_KEEP_NAME,
		constants.CALLBACK_THOUGHT_EDIT_NAME,
		constants.CALLBACK_THOUGHT_SUBMIT,
		constants.CALLBACK_THOUGHT_CANCEL:
		return callbackAction{Action: data}, nil
	}

	action, token, found := strings.Cut(data, constants.CALLBACK_DELIMITER)
	if !found || token == "" {
		return callbackAction{}, fmt.Errorf("malformed callback payload %q", data)
	}
	switch action {
	case constants.CALLBACK_PREFIX_CHAT_APPROVE,
		constants.CALLBACK_PREFIX_CHAT_CANCEL,
		constants.CALLBACK_PREFIX_LINK_APPROVE,
		constants.CALLBACK_PREFIX_LINK_REJECT:
		return callbackAction{Action: action, Token: token}, nil
	}
	return callbackAction{}, fmt.Errorf("unknown callback action %q", action)
}

// HandleCallback processes one inline-button press. It runs in its own
// goroutine, like HandleMessage.
func (bh *BotHandler) HandleCallback(update tgbotapi.Update) {
	defer bh.recoverHandler("CALLBACK")

	query := update.CallbackQuery
	if query == nil {
		return
	}

	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	data := query.Data

	log.Printf("[CALLBACK] ChatID=%d MsgID=%d Data='%s'", chatID, messageID, data)
	telegram_api.AnswerCallback(bh.Deps.BotClient, query.ID, "")

	parsed, err := parseCallback(data)
	if err != nil {
		log.Printf("[CALLBACK] %v (chatID %d)", err, chatID)
		bh.sendMessage(chatID, "This button could not be processed.")
		return
	}

	switch parsed.Action {
	case constants.CALLBACK_THOUGHT_KEEP_NAME, constants.CALLBACK_THOUGHT_EDIT_NAME:
		if bh.Deps.Sessions.GetState(chatID) != constants.STATE_USERNAME_CONFIRM {
			log.Printf("[CALLBACK] '%s' outside username-confirm state for chatID %d, ignored", parsed.Action, chatID)
			return
		}
		bh.handleUsernameConfirm(chatID, messageID, parsed.Action)

	case constants.CALLBACK_THOUGHT_SUBMIT, constants.CALLBACK_THOUGHT_CANCEL:
		if bh.Deps.Sessions.GetState(chatID) != constants.STATE_PREVIEW {
			log.Printf("[CALLBACK] '%s' outside preview state for chatID %d, ignored", parsed.Action, chatID)
			return
		}
		bh.handlePreviewChoice(chatID, messageID, parsed.Action)

	case constants.CALLBACK_PREFIX_CHAT_APPROVE, constants.CALLBACK_PREFIX_CHAT_CANCEL,
		constants.CALLBACK_PREFIX_LINK_APPROVE, constants.CALLBACK_PREFIX_LINK_REJECT:
		// Only the designated administrator may resolve pending items. A
		// mismatch is a security fault and is reported, not swallowed.
		if !bh.isAdmin(chatID) {
			log.Printf("[CALLBACK] SECURITY: chatID %d attempted admin action '%s'", chatID, parsed.Action)
			bh.sendMessage(chatID, "You are not authorized to resolve approval requests.")
			bh.notifyAdmin(fmt.Sprintf("Security: chat %d attempted the admin action '%s'.", chatID, parsed.Action))
			return
		}
		bh.routeApproval(messageID, parsed)
	}
}

// routeApproval dispatches an admin decision to the matching flow.
func (bh *BotHandler) routeApproval(messageID int, parsed callbackAction) {
	switch parsed.Action {
	case constants.CALLBACK_PREFIX_CHAT_APPROVE:
		bh.handleChatApprove(messageID, parsed.Token)
	case constants.CALLBACK_PREFIX_CHAT_CANCEL:
		bh.handleChatCancel(messageID, parsed.Token)
	case constants.CALLBACK_PREFIX_LINK_APPROVE:
		bh.handleLinkApprove(messageID, parsed.Token)
	case constants.CALLBACK_PREFIX_LINK_REJECT:
		bh.handleLinkReject(messageID, parsed.Token)
	}
}
