package telegram_api

import (
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
)

// SendOrEditMessage edits an existing message when messageIDToTryEdit is
// non-zero, falling back to sending a new one. "message is not modified" is
// treated as success; "message to edit not found" falls through to a fresh
// send, since the original may have been deleted by the user.
func SendOrEditMessage(
	botClient *BotClient,
	chatID int64,
	messageIDToTryEdit int,
	text string,
	keyboard *tgbotapi.InlineKeyboardMarkup,
) (tgbotapi.Message, error) {
	if botClient == nil {
		return tgbotapi.Message{}, fmt.Errorf("BotClient is not initialized")
	}

	if messageIDToTryEdit != 0 {
		var editMsg tgbotapi.EditMessageTextConfig
		if keyboard != nil {
			editMsg = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageIDToTryEdit, text, *keyboard)
		} else {
			editMsg = tgbotapi.NewEditMessageText(chatID, messageIDToTryEdit, text)
		}

		_, err := botClient.Request(editMsg)
		if err == nil || strings.Contains(err.Error(), "message is not modified") {
			edited := tgbotapi.Message{MessageID: messageIDToTryEdit, Text: text}
			edited.Chat.ID = chatID
			return edited, nil
		}
		if !strings.Contains(err.Error(), "message to edit not found") {
			log.Printf("SendOrEditMessage: unexpected edit error for chatID=%d msgID=%d: %v. Sending new message.",
				chatID, messageIDToTryEdit, err)
		}
	}

	newMsg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		newMsg.ReplyMarkup = keyboard
	}
	sent, err := botClient.Send(newMsg)
	if err != nil {
		log.Printf("SendOrEditMessage: failed to send message to chatID %d: %v", chatID, err)
		return tgbotapi.Message{}, err
	}
	return sent, nil
}

// SendText sends a plain text message. A failure is logged but never
// escalates: by the time we notify, the primary action already has its
// outcome.
func SendText(botClient *BotClient, chatID int64, text string) {
	if _, err := botClient.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("SendText: failed to notify chatID %d: %v", chatID, err)
	}
}

// AnswerCallback acknowledges a callback query so the client stops showing
// the loading spinner.
func AnswerCallback(botClient *BotClient, queryID, text string) {
	if _, err := botClient.Request(tgbotapi.NewCallback(queryID, text)); err != nil {
		log.Printf("AnswerCallback: failed to answer callback %s: %v", queryID, err)
	}
}
