package linkwatch

import (
	"reflect"
	"testing"
)

func defaultWatcher(t *testing.T) *Watcher {
	t.Helper()
	w, err := NewWatcher([]string{`instagram\.com/reels?/`, `tiktok\.com/`})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	return w
}

func TestExtractFiltersDenylist(t *testing.T) {
	w := defaultWatcher(t)
	got := w.Extract("check this https://instagram.com/reels/abc and http://example.com/x")
	want := []string{"http://example.com/x"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract = %v, want %v", got, want)
	}
}

func TestExtractMultiple(t *testing.T) {
	w := defaultWatcher(t)
	got := w.Extract("https://a.example/1 text https://b.example/2")
	if len(got) != 2 || got[0] != "https://a.example/1" || got[1] != "https://b.example/2" {
		t.Fatalf("Extract = %v", got)
	}
}

func TestExtractTrimsTrailingPunctuation(t *testing.T) {
	w := defaultWatcher(t)

	got := w.Extract("see http://example.com/x.")
	want := []string{"http://example.com/x"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract = %v, want %v", got, want)
	}

	got = w.Extract("look (https://example.com/y), right?")
	want = []string{"https://example.com/y"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract = %v, want %v", got, want)
	}

	// A balanced closing parenthesis belongs to the URL.
	got = w.Extract("read https://en.wikipedia.org/wiki/Go_(game)")
	want = []string{"https://en.wikipedia.org/wiki/Go_(game)"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract = %v, want %v", got, want)
	}
}

func TestExtractNoURLs(t *testing.T) {
	w := defaultWatcher(t)
	if got := w.Extract("just words, no links here"); got != nil {
		t.Fatalf("Extract = %v, want nil", got)
	}
}

func TestExtractAllDenied(t *testing.T) {
	w := defaultWatcher(t)
	if got := w.Extract("https://www.tiktok.com/@x/video/1"); got != nil {
		t.Fatalf("Extract = %v, want nil", got)
	}
}

func TestEmptyDenylistPassesEverything(t *testing.T) {
	w, err := NewWatcher(nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	got := w.Extract("https://instagram.com/reels/abc")
	if len(got) != 1 {
		t.Fatalf("Extract = %v, want the one URL", got)
	}
}

func TestBadPatternRejected(t *testing.T) {
	if _, err := NewWatcher([]string{"("}); err == nil {
		t.Fatal("want error for invalid denylist pattern")
	}
}
