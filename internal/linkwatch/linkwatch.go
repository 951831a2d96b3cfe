// Package linkwatch extracts shareable URLs from group messages and drops
// anything on the configured denylist before a pending approval is created.
package linkwatch

import (
	"fmt"
	"regexp"
	"strings"
)

// urlPattern matches http/https URL-shaped substrings in free text.
var urlPattern = regexp.MustCompile(`https?://[^\s<>"']+`)

// Watcher filters extracted URLs through a denylist of patterns.
type Watcher struct {
	denylist []*regexp.Regexp
}

// NewWatcher compiles the denylist patterns. A bad pattern is a
// configuration error and is reported instead of being skipped silently.
func NewWatcher(denylist []string) (*Watcher, error) {
	w := &Watcher{}
	for _, p := range denylist {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("bad denylist pattern %q: %w", p, err)
		}
		w.denylist = append(w.denylist, re)
	}
	return w, nil
}

// Extract returns all URLs in text that survive the denylist, in order of
// appearance.
func (w *Watcher) Extract(text string) []string {
	var out []string
	for _, url := range urlPattern.FindAllString(text, -1) {
		url = trimTrailing(url)
		if url == "" || w.denied(url) {
			continue
		}
		out = append(out, url)
	}
	return out
}

// trimTrailing strips sentence punctuation that the pattern drags in when a
// URL ends a clause. A closing parenthesis is kept only when it is balanced
// within the URL itself.
func trimTrailing(url string) string {
	url = strings.TrimRight(url, ".,;:!?")
	if strings.HasSuffix(url, ")") && strings.Count(url, ")") > strings.Count(url, "(") {
		url = strings.TrimRight(url[:len(url)-1], ".,;:!?")
	}
	return url
}

func (w *Watcher) denied(url string) bool {
	for _, re := range w.denylist {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}
