package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/alessalabs/concierge/agent/contract"
)

var (
	ErrNotFound       = errors.New("session not found")
	ErrInvalidSession = errors.New("session id is empty")
)

const defaultWindow = 20

// Persister is an optional write-through backup for sessions. The in-memory
// Store stays authoritative; persisted snapshots only seed a session that
// is not resident (process restart) and back the Clear operation.
type Persister interface {
	Load(ctx context.Context, sessionID string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, sessionID string) error
}

type Config struct {
	Window int `envconfig:"WINDOW" split_words:"true" default:"20"`
}

type holder struct {
	mu sync.Mutex
	s  *Session
}

// Store keeps per-session state behind a per-session lock: turns in
// different sessions never block each other, turns in the same session are
// serialized.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*holder

	window    int
	persister Persister
	now       func() time.Time
}

type StoreOption func(*Store)

func WithPersister(p Persister) StoreOption {
	return func(st *Store) {
		st.persister = p
	}
}

func WithWindow(window int) StoreOption {
	return func(st *Store) {
		if window > 0 {
			st.window = window
		}
	}
}

func WithStoreClock(now func() time.Time) StoreOption {
	return func(st *Store) {
		if now != nil {
			st.now = now
		}
	}
}

func NewStore(cfg Config, opts ...StoreOption) *Store {
	st := &Store{
		sessions: make(map[string]*holder),
		window:   defaultWindow,
		now:      time.Now,
	}
	if cfg.Window > 0 {
		st.window = cfg.Window
	}
	for _, opt := range opts {
		if opt != nil {
			opt(st)
		}
	}
	return st
}

// holderFor returns the holder for id, creating an empty one on first use.
func (st *Store) holderFor(id string) *holder {
	st.mu.RLock()
	h, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		return h
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if h, ok = st.sessions[id]; ok {
		return h
	}
	h = &holder{}
	st.sessions[id] = h
	return h
}

// hydrate fills an empty holder, trying the persister first. A corrupt
// snapshot is discarded and the session recreated empty.
func (st *Store) hydrate(ctx context.Context, id string, h *holder) {
	if h.s != nil {
		return
	}
	if st.persister != nil {
		s, err := st.persister.Load(ctx, id)
		switch {
		case err == nil && s != nil:
			s.ensureContext()
			h.s = s
			return
		case errors.Is(err, contractx.ErrSessionCorrupt):
			log.Warn().Err(err).Str("session_id", id).Msg("discarding corrupt session snapshot")
			_ = st.persister.Delete(ctx, id)
		case err != nil && !errors.Is(err, ErrNotFound):
			log.Warn().Err(err).Str("session_id", id).Msg("session snapshot load failed")
		}
	}
	h.s = NewSession(id, st.now())
}

// GetOrCreate returns a copy of the session, creating it on first access.
func (st *Store) GetOrCreate(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrInvalidSession
	}
	h := st.holderFor(id)
	h.mu.Lock()
	defer h.mu.Unlock()
	st.hydrate(ctx, id, h)
	return st.snapshot(h.s), nil
}

// Append records one message, evicting the oldest beyond the window.
func (st *Store) Append(ctx context.Context, id string, msg Message) error {
	if id == "" {
		return ErrInvalidSession
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = st.now()
	}

	h := st.holderFor(id)
	h.mu.Lock()
	defer h.mu.Unlock()
	st.hydrate(ctx, id, h)
	h.s.append(msg, st.window)
	st.persist(ctx, h.s)
	return nil
}

// History returns the most recent max messages, oldest first.
func (st *Store) History(ctx context.Context, id string, max int) ([]Message, error) {
	if id == "" {
		return nil, ErrInvalidSession
	}
	h := st.holderFor(id)
	h.mu.Lock()
	defer h.mu.Unlock()
	st.hydrate(ctx, id, h)
	return h.s.recent(max), nil
}

// UpdateContext merges updates into the user-context map, overwriting on
// key collision.
func (st *Store) UpdateContext(ctx context.Context, id string, updates map[string]any) error {
	if id == "" {
		return ErrInvalidSession
	}
	if len(updates) == 0 {
		return nil
	}
	h := st.holderFor(id)
	h.mu.Lock()
	defer h.mu.Unlock()
	st.hydrate(ctx, id, h)
	h.s.ensureContext()
	for k, v := range updates {
		h.s.UserContext[k] = v
	}
	h.s.LastUpdated = st.now().UTC()
	st.persist(ctx, h.s)
	return nil
}

// Context returns a copy of the session's user-context map.
func (st *Store) Context(ctx context.Context, id string) (map[string]any, error) {
	if id == "" {
		return nil, ErrInvalidSession
	}
	h := st.holderFor(id)
	h.mu.Lock()
	defer h.mu.Unlock()
	st.hydrate(ctx, id, h)
	out := make(map[string]any, len(h.s.UserContext))
	for k, v := range h.s.UserContext {
		out[k] = v
	}
	return out, nil
}

// Clear discards all state for the id, both resident and persisted.
func (st *Store) Clear(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidSession
	}
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()

	if st.persister != nil {
		if err := st.persister.Delete(ctx, id); err != nil {
			log.Warn().Err(err).Str("session_id", id).Msg("session snapshot delete failed")
		}
	}
	return nil
}

// Summary reports session metadata without exposing the message log.
func (st *Store) Summary(ctx context.Context, id string) (Summary, error) {
	if id == "" {
		return Summary{}, ErrInvalidSession
	}
	h := st.holderFor(id)
	h.mu.Lock()
	defer h.mu.Unlock()
	st.hydrate(ctx, id, h)
	ctxCopy := make(map[string]any, len(h.s.UserContext))
	for k, v := range h.s.UserContext {
		ctxCopy[k] = v
	}
	return Summary{
		SessionID:    h.s.ID,
		MessageCount: len(h.s.Messages),
		CreatedAt:    h.s.CreatedAt,
		LastUpdated:  h.s.LastUpdated,
		UserContext:  ctxCopy,
	}, nil
}

func (st *Store) persist(ctx context.Context, s *Session) {
	if st.persister == nil {
		return
	}
	if err := st.persister.Save(ctx, s); err != nil {
		log.Warn().Err(err).Str("session_id", s.ID).Msg("session snapshot save failed")
	}
}

func (st *Store) snapshot(s *Session) *Session {
	out := &Session{
		ID:          s.ID,
		Messages:    make([]Message, len(s.Messages)),
		UserContext: make(map[string]any, len(s.UserContext)),
		CreatedAt:   s.CreatedAt,
		LastUpdated: s.LastUpdated,
	}
	copy(out.Messages, s.Messages)
	for k, v := range s.UserContext {
		out.UserContext[k] = v
	}
	return out
}
