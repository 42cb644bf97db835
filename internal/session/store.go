// Package session tracks per-sender conversation state. State lives for
// the process lifetime only; a restart resets every conversation.
package session

import "sync"

// Mode is the analysis mode a sender has selected.
type Mode string

const (
	ModeNone  Mode = "none"
	ModeImage Mode = "image"
	ModeVideo Mode = "video"
	ModeText  Mode = "text"
)

// State holds everything the bot remembers about one sender.
type State struct {
	Greeted bool
	Mode    Mode
}

// Store reads and writes conversation state keyed by sender identifier.
// The in-memory implementation below serves a single instance; a
// multi-instance deployment would back this with an external keyed store.
type Store interface {
	Get(id string) State
	Put(id string, state State)
	Reset(id string)
}

// MemoryStore is a mutex-guarded in-process Store. Access for the same
// identifier is serialized, so a rapid double-send cannot lose an update.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]State
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]State)}
}

// Get returns the state for id. Unknown identifiers get the zero State
// (not greeted, no mode), which is also the post-restart state.
func (s *MemoryStore) Get(id string) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[id]
	if !ok {
		return State{Mode: ModeNone}
	}
	return state
}

// Put stores the state for id.
func (s *MemoryStore) Put(id string, state State) {
	if state.Mode == "" {
		state.Mode = ModeNone
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[id] = state
}

// Reset clears the selected mode but keeps the greeted flag.
func (s *MemoryStore) Reset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.states[id]
	state.Mode = ModeNone
	s.states[id] = state
}
