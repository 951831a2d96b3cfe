package models

// ThoughtRecord is the JSON document the site's content collection loads.
// Field names and shapes must match src/content.config.ts of the blog.
type ThoughtRecord struct {
	Author   string `json:"author"`
	Label    string `json:"label"`
	CSSClass string `json:"css_class"`
	Datetime string `json:"datetime"` // ISO-8601 truncated to seconds, "Z" suffix
	Content  string `json:"content"`
	Title    string `json:"title,omitempty"` // links only; stays the raw URL for now
	URL      string `json:"url,omitempty"`   // links only
}
