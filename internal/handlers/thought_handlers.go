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
	"github.com/marzolo/thoughts-bot/internal/publisher"
	"github.com/marzolo/thoughts-bot/internal/registry"
	"github.com/marzolo/thoughts-bot/internal/session"
	"github.com/marzolo/thoughts-bot/internal/telegram_api"
)

// startThought begins the thought dialog for a direct chat. The chat must
// be present and approved in the registry; otherwise the text is rejected
// and no session is created.
func (bh *BotHandler) startThought(message *tgbotapi.Message, text string) {
	chatID := message.Chat.ID
	if text == "" {
		return
	}

	acc, err := bh.Deps.Registry.Authorize(chatID)
	if err != nil {
		if errors.Is(err, registry.ErrUnauthorized) {
			log.Printf("[THOUGHT] unauthorized chatID %d rejected", chatID)
			bh.sendMessage(chatID, "You are not authorized to use this bot. Please contact the administrator.")
			return
		}
		log.Printf("[THOUGHT] registry read failed for chatID %d: %v", chatID, err)
		bh.sendMessage(chatID, "Something went wrong, please try again later.")
		return
	}

	savedName := acc.DefaultAuthor
	if savedName == "" {
		savedName = acc.Name
	}

	// A fresh text overwrites any stale draft; nothing confirmed is lost.
	bh.Deps.Sessions.UpdateDraft(chatID, session.ThoughtDraft{
		Content:   text,
		CreatedAt: time.Now(),
		SavedName: savedName,
	})
	bh.Deps.Sessions.SetState(chatID, constants.STATE_USERNAME_CONFIRM)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("OK", constants.CALLBACK_THOUGHT_KEEP_NAME),
			tgbotapi.NewInlineKeyboardButtonData("Edit", constants.CALLBACK_THOUGHT_EDIT_NAME),
		),
	)
	prompt := fmt.Sprintf("You are saved as: %s\nWould you like to continue with this name?", savedName)
	if _, err := telegram_api.SendOrEditMessage(bh.Deps.BotClient, chatID, 0, prompt, &keyboard); err != nil {
		log.Printf("[THOUGHT] failed to send name prompt to chatID %d: %v", chatID, err)
	}
}

// handleUsernameConfirm advances the dialog from the name-confirmation step.
func (bh *BotHandler) handleUsernameConfirm(chatID int64, messageID int, data string) {
	draft, ok := bh.Deps.Sessions.GetDraft(chatID)
	if !ok {
		bh.abortThought(chatID, messageID)
		return
	}

	switch data {
	case constants.CALLBACK_THOUGHT_KEEP_NAME:
		draft.Author = draft.SavedName
		bh.Deps.Sessions.UpdateDraft(chatID, draft)
		bh.showPreview(chatID, messageID, draft)
	case constants.CALLBACK_THOUGHT_EDIT_NAME:
		bh.Deps.Sessions.SetState(chatID, constants.STATE_AUTHOR_INPUT)
		if _, err := telegram_api.SendOrEditMessage(bh.Deps.BotClient, chatID, messageID,
			"Please enter your new name:", nil); err != nil {
			log.Printf("[THOUGHT] failed to prompt for author name, chatID %d: %v", chatID, err)
		}
	}
}

// saveCustomAuthor takes the chat's next text verbatim as the author name,
// persists it as the chat's new default and moves to the preview.
func (bh *BotHandler) saveCustomAuthor(chatID int64, name string) {
	draft, ok := bh.Deps.Sessions.GetDraft(chatID)
	if !ok {
		bh.abortThought(chatID, 0)
		return
	}

	if err := bh.Deps.Registry.SetDefaultAuthor(chatID, name); err != nil {
		log.Printf("[THOUGHT] failed to persist default author for chatID %d: %v", chatID, err)
	}

	draft.Author = name
	bh.Deps.Sessions.UpdateDraft(chatID, draft)
	bh.showPreview(chatID, 0, draft)
}

// showPreview renders the draft and asks for the final confirmation.
func (bh *BotHandler) showPreview(chatID int64, messageID int, draft session.ThoughtDraft) {
	bh.Deps.Sessions.SetState(chatID, constants.STATE_PREVIEW)

	preview := fmt.Sprintf(
		"Preview of your thought:\n\nContent: %s\nAuthor: %s\nTime: %s",
		draft.Content, draft.Author, publisher.FormatTimestamp(draft.CreatedAt),
	)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Submit", constants.CALLBACK_THOUGHT_SUBMIT),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", constants.CALLBACK_THOUGHT_CANCEL),
		),
	)
	if _, err := telegram_api.SendOrEditMessage(bh.Deps.BotClient, chatID, messageID, preview, &keyboard); err != nil {
		log.Printf("[THOUGHT] failed to send preview to chatID %d: %v", chatID, err)
	}
}

// handlePreviewChoice resolves the preview step: submit publishes, cancel
// discards. Both are terminal.
func (bh *BotHandler) handlePreviewChoice(chatID int64, messageID int, data string) {
	draft, ok := bh.Deps.Sessions.GetDraft(chatID)
	if !ok {
		bh.abortThought(chatID, messageID)
		return
	}

	bh.Deps.Sessions.ClearState(chatID)
	bh.Deps.Sessions.ClearDraft(chatID)

	if data == constants.CALLBACK_THOUGHT_CANCEL {
		if _, err := telegram_api.SendOrEditMessage(bh.Deps.BotClient, chatID, messageID,
			"Thought creation cancelled.", nil); err != nil {
			log.Printf("[THOUGHT] failed to confirm cancellation, chatID %d: %v", chatID, err)
		}
		return
	}

	bh.submitThought(chatID, messageID, draft)
}

// submitThought packages the confirmed draft and hands it to the publisher.
func (bh *BotHandler) submitThought(chatID int64, messageID int, draft session.ThoughtDraft) {
	cssClass := constants.DEFAULT_CSS_CLASS
	if acc, found, err := bh.Deps.Registry.Get(chatID); err == nil && found && acc.CSSClass != "" {
		cssClass = acc.CSSClass
	}

	rec := models.ThoughtRecord{
		Author:   draft.Author,
		Label:    draft.Author,
		CSSClass: cssClass,
		Datetime: publisher.FormatTimestamp(draft.CreatedAt),
		Content:  draft.Content,
	}

	err := bh.Deps.Publisher.Publish(context.Background(), constants.PUBLISH_KIND_THOUGHT, rec)
	if err == nil {
		if _, err := telegram_api.SendOrEditMessage(bh.Deps.BotClient, chatID, messageID,
			"Thought saved and published successfully!", nil); err != nil {
			log.Printf("[THOUGHT] failed to confirm publish to chatID %d: %v", chatID, err)
		}
		return
	}

	log.Printf("[THOUGHT] publish failed for chatID %d: %v", chatID, err)

	var pubErr *publisher.PublishError
	if errors.As(err, &pubErr) && pubErr.Partial {
		if _, sendErr := telegram_api.SendOrEditMessage(bh.Deps.BotClient, chatID, messageID,
			"Thought saved but there was an error pushing to the repository. "+
				"Please check the logs and push manually.", nil); sendErr != nil {
			log.Printf("[THOUGHT] failed to report partial failure to chatID %d: %v", chatID, sendErr)
		}
		bh.notifyAdmin(fmt.Sprintf("Error pushing thought to repository: %s. Manual push needed.", pubErr.Path))
		return
	}

	if _, sendErr := telegram_api.SendOrEditMessage(bh.Deps.BotClient, chatID, messageID,
		"Publishing your thought failed. Please try again later.", nil); sendErr != nil {
		log.Printf("[THOUGHT] failed to report failure to chatID %d: %v", chatID, sendErr)
	}
	bh.notifyAdmin(fmt.Sprintf("Error publishing thought from chat %d: %v", chatID, err))
}

// abortThought cleans up when a callback arrives for a dialog whose draft
// no longer exists (e.g. after a restart).
func (bh *BotHandler) abortThought(chatID int64, messageID int) {
	bh.Deps.Sessions.ClearState(chatID)
	if _, err := telegram_api.SendOrEditMessage(bh.Deps.BotClient, chatID, messageID,
		"This dialog is no longer active. Send a new message to start over.", nil); err != nil {
		log.Printf("[THOUGHT] failed to report stale dialog to chatID %d: %v", chatID, err)
	}
}
