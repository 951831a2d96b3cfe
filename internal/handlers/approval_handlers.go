package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"github.com/marzolo/thoughts-bot/internal/constants"
	"github.com/marzolo/thoughts-bot/internal/models"
	"github.com/marzolo/thoughts-bot/internal/pending"
	"github.com/marzolo/thoughts-bot/internal/publisher"
	"github.com/marzolo/thoughts-bot/internal/telegram_api"
)

// sendChatApprovalPrompt files a pending ChatApproval and asks the admin to
// resolve it. The buttons carry the pending token, never the position. When
// the prompt cannot be delivered the item is rolled back, so no token ever
// exists without a button that resolves it.
func (bh *BotHandler) sendChatApprovalPrompt(chatID int64, chatName, kind string) error {
	req := models.ChatApproval{
		ChatID:   chatID,
		ChatName: chatName,
		ChatKind: kind,
	}
	token := bh.Deps.Pending.AddChat(req)
	if err := bh.promptChatApproval(token, req); err != nil {
		if _, consumeErr := bh.Deps.Pending.Consume(token); consumeErr != nil {
			log.Printf("[APPROVAL] failed to roll back pending token %s: %v", token, consumeErr)
		}
		return err
	}
	return nil
}

// promptChatApproval sends the admin the Approve/Cancel prompt for an
// already-filed pending item.
func (bh *BotHandler) promptChatApproval(token string, req models.ChatApproval) error {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Approve",
				constants.CALLBACK_PREFIX_CHAT_APPROVE+constants.CALLBACK_DELIMITER+token),
			tgbotapi.NewInlineKeyboardButtonData("Cancel",
				constants.CALLBACK_PREFIX_CHAT_CANCEL+constants.CALLBACK_DELIMITER+token),
		),
	)
	text := fmt.Sprintf("Chat registration request:\nID: %d\nName: %s\nKind: %s",
		req.ChatID, req.ChatName, req.ChatKind)
	msg := tgbotapi.NewMessage(bh.Deps.Config.AdminChatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := bh.Deps.BotClient.Send(msg); err != nil {
		log.Printf("[APPROVAL] failed to send chat approval prompt for chatID %d: %v", req.ChatID, err)
		return err
	}
	return nil
}

// editAdminMessage replaces the approval prompt with its outcome.
func (bh *BotHandler) editAdminMessage(messageID int, text string) {
	if _, err := telegram_api.SendOrEditMessage(bh.Deps.BotClient,
		bh.Deps.Config.AdminChatID, messageID, text, nil); err != nil {
		log.Printf("[APPROVAL] failed to update admin message %d: %v", messageID, err)
	}
}

// consumePending resolves a token exactly once. A stale or unknown token
// yields a visible "no pending item" outcome instead of an error dialog.
func (bh *BotHandler) consumePending(messageID int, token, wantKind string) (pending.Request, bool) {
	item, err := bh.Deps.Pending.Consume(token)
	if err != nil {
		if errors.Is(err, pending.ErrNotFound) {
			bh.editAdminMessage(messageID, "No pending item for this request. It may have been resolved already.")
		} else {
			log.Printf("[APPROVAL] consuming token %s failed: %v", token, err)
			bh.editAdminMessage(messageID, "Failed to resolve this request, see logs.")
		}
		return pending.Request{}, false
	}
	if item.Kind != wantKind {
		// A token can only end up behind the wrong button through a bug;
		// the item is already consumed, so report loudly.
		log.Printf("[APPROVAL] token %s has kind %s, expected %s", token, item.Kind, wantKind)
		bh.editAdminMessage(messageID, "This request does not match the pressed button. It has been discarded.")
		return pending.Request{}, false
	}
	return item, true
}

// handleChatApprove resolves an approval. Group chats are registered right
// away with the default display class; direct chats first go through the
// display-class sub-dialog scoped to the admin's next reply. Only one
// sub-dialog can be open at a time: approving a second direct chat before
// answering the first would overwrite the parked approval, so the second
// tap is refused and its token stays unconsumed.
func (bh *BotHandler) handleChatApprove(messageID int, token string) {
	adminChatID := bh.Deps.Config.AdminChatID

	if peeked, err := bh.Deps.Pending.Peek(token); err == nil &&
		peeked.Chat != nil && peeked.Chat.ChatKind == constants.CHAT_KIND_DIRECT &&
		bh.Deps.Sessions.GetState(adminChatID) == constants.STATE_ADMIN_CSS_INPUT {
		bh.sendMessage(adminChatID,
			"Another approval is still waiting for a display class. Reply to it first, then tap Approve again.")
		return
	}

	item, ok := bh.consumePending(messageID, token, pending.KindChat)
	if !ok {
		return
	}
	req := *item.Chat

	if req.ChatKind == constants.CHAT_KIND_GROUP {
		bh.finalizeChatApproval(messageID, req, constants.DEFAULT_CSS_CLASS)
		return
	}

	bh.Deps.Sessions.SetCSSInput(adminChatID, req)
	bh.Deps.Sessions.SetState(adminChatID, constants.STATE_ADMIN_CSS_INPUT)
	bh.editAdminMessage(messageID, fmt.Sprintf(
		"Approving chat %d (%s). Reply with a display class for it (e.g. quote).",
		req.ChatID, req.ChatName))
}

// handleAdminCSSInput finalizes a direct-chat approval with the display
// class the admin just typed.
func (bh *BotHandler) handleAdminCSSInput(cssClass string) {
	adminChatID := bh.Deps.Config.AdminChatID
	bh.Deps.Sessions.ClearState(adminChatID)

	req, ok := bh.Deps.Sessions.TakeCSSInput(adminChatID)
	if !ok {
		bh.sendMessage(adminChatID, "No chat approval is awaiting a display class.")
		return
	}
	if cssClass == "" {
		cssClass = constants.DEFAULT_CSS_CLASS
	}
	bh.finalizeChatApproval(0, req, cssClass)
}

// finalizeChatApproval writes the registry entry and notifies both sides.
// Direct chats get their name seeded as the default author.
func (bh *BotHandler) finalizeChatApproval(messageID int, req models.ChatApproval, cssClass string) {
	acc := models.ChatAccount{
		ChatID:   req.ChatID,
		Name:     req.ChatName,
		Kind:     req.ChatKind,
		Status:   constants.REG_STATUS_APPROVED,
		CSSClass: cssClass,
	}
	if req.ChatKind == constants.CHAT_KIND_DIRECT {
		acc.DefaultAuthor = req.ChatName
	}

	if err := bh.Deps.Registry.Upsert(acc); err != nil {
		log.Printf("[APPROVAL] failed to register chat %d: %v", req.ChatID, err)
		bh.editAdminMessage(messageID, fmt.Sprintf("Failed to register chat %d, see logs.", req.ChatID))
		return
	}

	bh.editAdminMessage(messageID, fmt.Sprintf(
		"Chat %d has been approved with display class '%s'.", req.ChatID, cssClass))
	bh.sendMessage(req.ChatID, "Your chat registration has been approved! You can now use the bot.")
}

// handleChatCancel discards a registration request, with wording tailored
// to the chat kind.
func (bh *BotHandler) handleChatCancel(messageID int, token string) {
	item, ok := bh.consumePending(messageID, token, pending.KindChat)
	if !ok {
		return
	}
	req := *item.Chat

	bh.editAdminMessage(messageID, fmt.Sprintf(
		"Chat %d registration request has been cancelled.", req.ChatID))

	if req.ChatKind == constants.CHAT_KIND_GROUP {
		bh.sendMessage(req.ChatID, "The registration request for this group has been declined by the administrator.")
	} else {
		bh.sendMessage(req.ChatID, "Your chat registration request has been cancelled by the administrator.")
	}
}

// watchGroupLinks scans a group message for shareable URLs and files one
// pending approval per survivor. Messages from unregistered chats are
// ignored without any reply, so outsiders learn nothing about which chats
// the bot knows.
func (bh *BotHandler) watchGroupLinks(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	acc, found, err := bh.Deps.Registry.Get(chatID)
	if err != nil {
		log.Printf("[LINKS] registry read failed for chatID %d: %v", chatID, err)
		return
	}
	if !found || acc.Status != constants.REG_STATUS_APPROVED {
		return
	}

	urls := bh.Deps.Links.Extract(message.Text)
	if len(urls) == 0 {
		return
	}

	sender := ""
	if message.From != nil {
		sender = message.From.UserName
	}

	for _, url := range urls {
		token := bh.Deps.Pending.AddLink(models.LinkApproval{
			URL:          url,
			SourceChatID: chatID,
			SourceChat:   acc.Name,
			Sender:       sender,
			ContextText:  message.Text,
		})

		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Approve",
					constants.CALLBACK_PREFIX_LINK_APPROVE+constants.CALLBACK_DELIMITER+token),
				tgbotapi.NewInlineKeyboardButtonData("Reject",
					constants.CALLBACK_PREFIX_LINK_REJECT+constants.CALLBACK_DELIMITER+token),
			),
		)
		text := fmt.Sprintf("Link shared in %s by @%s:\n%s\n\nMessage: %s",
			acc.Name, sender, url, message.Text)
		msg := tgbotapi.NewMessage(bh.Deps.Config.AdminChatID, text)
		msg.ReplyMarkup = keyboard
		if _, err := bh.Deps.BotClient.Send(msg); err != nil {
			log.Printf("[LINKS] failed to send link approval prompt for %s: %v", url, err)
		}
	}
}

// handleLinkApprove publishes an approved link with a fresh timestamp and
// reflects the outcome into the admin's message.
func (bh *BotHandler) handleLinkApprove(messageID int, token string) {
	item, ok := bh.consumePending(messageID, token, pending.KindLink)
	if !ok {
		return
	}
	req := *item.Link

	cssClass := constants.DEFAULT_CSS_CLASS
	if acc, found, err := bh.Deps.Registry.Get(req.SourceChatID); err == nil && found && acc.CSSClass != "" {
		cssClass = acc.CSSClass
	}

	rec := models.ThoughtRecord{
		Author:   req.Sender,
		Label:    req.SourceChat,
		CSSClass: cssClass,
		Datetime: publisher.FormatTimestamp(time.Now()),
		Content:  req.ContextText,
		// Title resolution is a pending follow-up; the raw URL stands in.
		Title: req.URL,
		URL:   req.URL,
	}

	err := bh.Deps.Publisher.Publish(context.Background(), constants.PUBLISH_KIND_LINK, rec)
	if err == nil {
		bh.editAdminMessage(messageID, fmt.Sprintf("Link published:\n%s", req.URL))
		return
	}

	log.Printf("[LINKS] publish failed for %s: %v", req.URL, err)
	var pubErr *publisher.PublishError
	if errors.As(err, &pubErr) && pubErr.Partial {
		bh.editAdminMessage(messageID, fmt.Sprintf(
			"Link committed locally but the push failed: %s. Manual push needed (%s).", req.URL, pubErr.Path))
		return
	}
	bh.editAdminMessage(messageID, fmt.Sprintf("Publishing link failed: %s\n%v", req.URL, err))
}

// handleLinkReject discards a shared link with no external effect.
func (bh *BotHandler) handleLinkReject(messageID int, token string) {
	item, ok := bh.consumePending(messageID, token, pending.KindLink)
	if !ok {
		return
	}
	bh.editAdminMessage(messageID, fmt.Sprintf("Link rejected:\n%s", item.Link.URL))
}
