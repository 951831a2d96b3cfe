package handlers

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/xuri/excelize/v2"
)

// exportRegistry builds an xlsx of all registered chats and sends it to the
// admin as a document. Admin only.
func (bh *BotHandler) exportRegistry(actorChatID int64) {
	if !bh.isAdmin(actorChatID) {
		log.Printf("[EXPORT] unauthorized /export from chatID %d", actorChatID)
		bh.sendMessage(actorChatID, "Only the admin can export the registry.")
		return
	}

	accounts, err := bh.Deps.Registry.List()
	if err != nil {
		log.Printf("[EXPORT] failed to read registry: %v", err)
		bh.sendMessage(actorChatID, "Failed to read the registry, see logs.")
		return
	}

	f := excelize.NewFile()
	sheetName := "Chats"
	index, _ := f.NewSheet(sheetName)
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headers := []string{"Chat ID", "Name", "Kind", "Status", "Display class", "Default author"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, acc := range accounts {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), acc.ChatID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), acc.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), acc.Kind)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), acc.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), acc.CSSClass)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), acc.DefaultAuthor)
	}

	filePath := filepath.Join(os.TempDir(),
		fmt.Sprintf("chats_%s.xlsx", time.Now().Format("2006-01-02_15-04-05")))
	if err := f.SaveAs(filePath); err != nil {
		log.Printf("[EXPORT] failed to save xlsx: %v", err)
		bh.sendMessage(actorChatID, "Failed to generate the export file.")
		return
	}

	doc := tgbotapi.NewDocument(actorChatID, tgbotapi.FilePath(filePath))
	doc.Caption = fmt.Sprintf("Registered chats (%d)", len(accounts))
	if _, err := bh.Deps.BotClient.Send(doc); err != nil {
		log.Printf("[EXPORT] failed to send xlsx: %v", err)
		bh.sendMessage(actorChatID, "Failed to send the export file.")
	}

	if err := os.Remove(filePath); err != nil {
		log.Printf("[EXPORT] failed to remove temp file %s: %v", filePath, err)
	}
}
