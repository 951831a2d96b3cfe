package constants

// Thought conversation states.
// A chat is in exactly one state; free text in STATE_IDLE starts a new draft.
const (
	STATE_IDLE             = "idle"
	STATE_USERNAME_CONFIRM = "username_confirm"
	STATE_AUTHOR_INPUT     = "author_input"
	STATE_PREVIEW          = "preview"
)

// Admin-only states.
const (
	// STATE_ADMIN_CSS_INPUT scopes the admin's next text message to the
	// display-class sub-dialog of a just-approved direct chat.
	STATE_ADMIN_CSS_INPUT = "admin_css_input"
)

// Callback data for the thought dialog (no arguments).
const (
	CALLBACK_THOUGHT_KEEP_NAME = "thought_ok"
	CALLBACK_THOUGHT_EDIT_NAME = "thought_edit"
	CALLBACK_THOUGHT_SUBMIT    = "thought_submit"
	CALLBACK_THOUGHT_CANCEL    = "thought_cancel"
)

// Callback prefixes for the approval flows. The pending-item token follows
// the delimiter, e.g. "chat_approve:2f1c...".
const (
	CALLBACK_PREFIX_CHAT_APPROVE = "chat_approve"
	CALLBACK_PREFIX_CHAT_CANCEL  = "chat_cancel"
	CALLBACK_PREFIX_LINK_APPROVE = "link_approve"
	CALLBACK_PREFIX_LINK_REJECT  = "link_reject"
)

// CALLBACK_DELIMITER separates the action tag from the embedded token.
const CALLBACK_DELIMITER = ":"

// Chat kinds.
const (
	CHAT_KIND_DIRECT = "direct"
	CHAT_KIND_GROUP  = "group"
)

// Registration statuses of a ChatAccount.
const (
	REG_STATUS_PENDING  = "pending"
	REG_STATUS_APPROVED = "approved"
	REG_STATUS_REJECTED = "rejected"
)

// DEFAULT_CSS_CLASS is assigned to chats approved without the display-class
// sub-dialog (group chats). The site falls back to its default theme for it.
const DEFAULT_CSS_CLASS = "default"

// Publish modes selecting the publishing strategy.
const (
	PUBLISH_MODE_GIT      = "git"
	PUBLISH_MODE_DISPATCH = "dispatch"
)

// Publish kinds.
const (
	PUBLISH_KIND_THOUGHT = "thought"
	PUBLISH_KIND_LINK    = "link"
)

// Git identity used for content commits. The site's CI checks the email.
const (
	GIT_USER  = "thoughts_bot"
	GIT_EMAIL = "thoughts_bot@marzolo.com"
)
