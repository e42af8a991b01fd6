package subscription

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "forecast_settings.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s, path
}

// TestOpenMissingFile verifies a missing settings file yields an empty store.
func TestOpenMissingFile(t *testing.T) {
	s, _ := openTestStore(t)
	if len(s.All()) != 0 {
		t.Fatalf("expected empty store, got %d entries", len(s.All()))
	}
}

// TestSetPersistsImmediately verifies every mutation is written through to
// disk in the documented file format.
func TestSetPersistsImmediately(t *testing.T) {
	s, path := openTestStore(t)

	if err := s.Set("42", Subscription{Channel: 1001, Location: "Exeter, UK"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var onDisk map[string]struct {
		Channel   int64  `json:"channel"`
		Location  string `json:"location"`
		MessageID *int64 `json:"message_id"`
	}
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entry, ok := onDisk["42"]
	if !ok {
		t.Fatalf("guild 42 missing on disk: %s", data)
	}
	if entry.Channel != 1001 || entry.Location != "Exeter, UK" || entry.MessageID != nil {
		t.Fatalf("unexpected on-disk entry: %+v", entry)
	}
}

// TestReopenRoundtrip verifies subscriptions survive a restart.
func TestReopenRoundtrip(t *testing.T) {
	s, path := openTestStore(t)

	if err := s.Set("42", Subscription{Channel: 1001, Location: "Exeter, UK"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetMessageID("42", 555); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sub, err := reopened.Get("42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Channel != 1001 || sub.Location != "Exeter, UK" {
		t.Fatalf("unexpected subscription: %+v", sub)
	}
	if sub.MessageID == nil || *sub.MessageID != 555 {
		t.Fatalf("expected message id 555, got %v", sub.MessageID)
	}
}

// TestRemove verifies deletion and the not-found sentinel.
func TestRemove(t *testing.T) {
	s, _ := openTestStore(t)

	if err := s.Remove("42"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Set("42", Subscription{Channel: 1001, Location: "Exeter, UK"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Remove("42"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Get("42"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
}

// TestSetMessageIDUnknownGuild verifies the sentinel when the subscription
// vanished before the message id could be recorded.
func TestSetMessageIDUnknownGuild(t *testing.T) {
	s, _ := openTestStore(t)
	if err := s.SetMessageID("42", 555); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
