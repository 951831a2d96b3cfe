package models

import "time"

// ChatApproval is a pending chat-registration request awaiting the admin's
// decision.
type ChatApproval struct {
	ChatID    int64
	ChatName  string
	ChatKind  string
	CreatedAt time.Time
}

// LinkApproval is a link shared in a group chat awaiting the admin's
// decision.
type LinkApproval struct {
	URL          string
	SourceChatID int64
	SourceChat   string
	Sender       string
	ContextText  string
	CreatedAt    time.Time
}
