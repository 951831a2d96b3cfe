package models

// ChatAccount is the registry entry for a chat known to the bot. It is the
// single source of truth for authorization checks: a chat may only use the
// bot once its Status is "approved".
type ChatAccount struct {
	ChatID        int64  `json:"chat_id"`
	Name          string `json:"name"`
	Kind          string `json:"kind"` // constants.CHAT_KIND_DIRECT or _GROUP
	Status        string `json:"status"`
	CSSClass      string `json:"css_class"`
	DefaultAuthor string `json:"default_author,omitempty"` // direct chats only
}
