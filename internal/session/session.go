// Package session keeps per-browser state in memory: the chat transcript and the
// most recently uploaded document. Idle sessions expire after a TTL.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"doc-assistant/internal/chat"
	"doc-assistant/internal/document"
	"doc-assistant/internal/llm"
)

// State is everything the service remembers about one session.
type State struct {
	ID      string
	Chat    *chat.Session
	Created time.Time

	mu  sync.RWMutex
	doc *document.Document
}

// Document returns the current upload, if any.
func (s *State) Document() (document.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return document.Document{}, false
	}
	return *s.doc, true
}

// SetDocument replaces the current upload.
func (s *State) SetDocument(doc document.Document) {
	s.mu.Lock()
	s.doc = &doc
	s.mu.Unlock()
}

// ClearDocument forgets the current upload.
func (s *State) ClearDocument() {
	s.mu.Lock()
	s.doc = nil
	s.mu.Unlock()
}

// Store is a registry of live sessions backed by an expiring in-memory cache.
type Store struct {
	cache    *cache.Cache
	provider llm.Provider
	log      *slog.Logger
	now      func() time.Time
}

// NewStore creates a registry whose sessions share provider and expire after ttl
// without activity.
func NewStore(provider llm.Provider, ttl time.Duration, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	cleanup := ttl / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}
	st := &Store{
		cache:    cache.New(ttl, cleanup),
		provider: provider,
		log:      log,
		now:      time.Now,
	}
	st.cache.OnEvicted(func(id string, v any) {
		state := v.(*State)
		log.Info("session ended", "session_id", id, "exchanges", state.Chat.Len())
	})
	return st
}

// Get returns the session for id and refreshes its expiry.
func (st *Store) Get(id string) (*State, bool) {
	v, found := st.cache.Get(id)
	if !found {
		return nil, false
	}
	state := v.(*State)
	st.cache.Set(id, state, cache.DefaultExpiration)
	return state, true
}

// GetOrCreate returns the session for id, creating a new one under a fresh id
// when id is empty, unknown or expired. created reports whether a new session was made.
func (st *Store) GetOrCreate(id string) (state *State, created bool) {
	if id != "" {
		if state, ok := st.Get(id); ok {
			return state, false
		}
	}
	for {
		state = st.newState(uuid.NewString())
		if err := st.cache.Add(state.ID, state, cache.DefaultExpiration); err == nil {
			st.log.Debug("session created", "session_id", state.ID)
			return state, true
		}
	}
}

// Delete ends the session for id. Unknown ids are ignored.
func (st *Store) Delete(id string) {
	st.cache.Delete(id)
}

// Len returns the number of live sessions, including expired ones not yet purged.
func (st *Store) Len() int {
	return st.cache.ItemCount()
}

func (st *Store) newState(id string) *State {
	return &State{
		ID:      id,
		Chat:    chat.NewSession(st.provider, chat.WithLogger(st.log.With("session_id", id))),
		Created: st.now(),
	}
}
