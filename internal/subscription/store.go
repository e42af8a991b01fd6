package subscription

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	// ErrNotFound is returned when a guild has no forecast configured.
	ErrNotFound = errors.New("no forecast subscription for guild")
)

// Subscription is one guild's daily-forecast configuration. MessageID is the
// last posted forecast message, nil until the first post succeeds.
type Subscription struct {
	Channel   int64  `json:"channel"`
	Location  string `json:"location"`
	MessageID *int64 `json:"message_id"`
}

// Store is a disk-backed map of guild id -> Subscription. Every mutation is
// written through to disk; last writer wins. Mutations are mutex-guarded
// because command handlers, the scheduler and the ops API run on separate
// goroutines.
type Store struct {
	mu   sync.RWMutex
	path string
	subs map[string]Subscription
}

// Open loads the subscription file at path, starting empty if it does not
// exist.
func Open(path string) (*Store, error) {
	s := &Store{
		path: path,
		subs: make(map[string]Subscription),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read subscriptions: %w", err)
	}
	if err := json.Unmarshal(data, &s.subs); err != nil {
		return nil, fmt.Errorf("parse subscriptions %s: %w", path, err)
	}
	return s, nil
}

// Get returns the subscription for a guild.
func (s *Store) Get(guildID string) (Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[guildID]
	if !ok {
		return Subscription{}, ErrNotFound
	}
	return sub, nil
}

// All returns a copy of every subscription keyed by guild id.
func (s *Store) All() map[string]Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Subscription, len(s.subs))
	for id, sub := range s.subs {
		out[id] = sub
	}
	return out
}

// Set creates or replaces a guild's subscription and flushes to disk.
func (s *Store) Set(guildID string, sub Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs[guildID] = sub
	return s.flushLocked()
}

// SetMessageID records the id of a newly posted forecast message and flushes
// to disk. Editing an existing message in place never calls this: the
// identity is unchanged, so no write is needed.
func (s *Store) SetMessageID(guildID string, messageID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[guildID]
	if !ok {
		return ErrNotFound
	}
	sub.MessageID = &messageID
	s.subs[guildID] = sub
	return s.flushLocked()
}

// Remove deletes a guild's subscription and flushes to disk.
func (s *Store) Remove(guildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[guildID]; !ok {
		return ErrNotFound
	}
	delete(s.subs, guildID)
	return s.flushLocked()
}

// flushLocked writes the whole table to a temp file and renames it into
// place, so a concurrent reader never sees a partial file.
func (s *Store) flushLocked() error {
	data, err := json.Marshal(s.subs)
	if err != nil {
		return fmt.Errorf("encode subscriptions: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".subs-*")
	if err != nil {
		return fmt.Errorf("write subscriptions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write subscriptions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write subscriptions: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write subscriptions: %w", err)
	}
	return nil
}
