// Package publisher commits approved content to the blog's content store.
// Two interchangeable strategies exist: a local git commit+push and a
// dispatch call to an automation pipeline. Both are all-or-nothing from the
// caller's side; a single Publish call is attempted exactly once, with no
// automatic retry. Callers decide who to notify on failure.
package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/marzolo/thoughts-bot/internal/config"
	"github.com/marzolo/thoughts-bot/internal/constants"
	"github.com/marzolo/thoughts-bot/internal/models"
)

// Publisher is the single publish contract shared by both strategies.
type Publisher interface {
	// Publish durably stores one approved record. kind is
	// constants.PUBLISH_KIND_THOUGHT or constants.PUBLISH_KIND_LINK.
	Publish(ctx context.Context, kind string, rec models.ThoughtRecord) error
}

// PublishError reports a failed publish attempt. Partial means the content
// file was written and committed locally but the push failed, so manual
// recovery is possible; a non-partial failure left no state anywhere.
type PublishError struct {
	Partial bool
	Path    string // local file path, when Partial
	Err     error
}

func (e *PublishError) Error() string {
	if e.Partial {
		return fmt.Sprintf("publish failed after writing %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("publish failed: %v", e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// New selects the strategy configured by PUBLISH_MODE.
func New(cfg *config.Config) (Publisher, error) {
	switch cfg.PublishMode {
	case constants.PUBLISH_MODE_GIT:
		return NewGitPublisher(cfg.RepoDir, cfg.ContentDir, cfg.GitBranch, cfg.SSHKeyPath), nil
	case constants.PUBLISH_MODE_DISPATCH:
		return NewDispatchPublisher(cfg.DispatchURL, cfg.DispatchToken), nil
	default:
		return nil, fmt.Errorf("unknown publish mode %q", cfg.PublishMode)
	}
}

// FormatTimestamp renders t the way the site's content schema expects:
// ISO-8601 truncated to seconds with a trailing UTC marker.
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02T15:04:05") + "Z"
}
