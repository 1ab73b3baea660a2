package quiz

import (
	"sync"

	"github.com/google/uuid"
)

// State is a room's position in the game lifecycle.
type State int

const (
	StateOpen State = iota + 1
	StateInProgress
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateInProgress:
		return "in_progress"
	case StateFinished:
		return "finished"
	}
	return "unknown"
}

// MessageRef identifies a sent message. Zero means none.
type MessageRef int

// Room is one chat's quiz session.
type Room struct {
	// SessionID distinguishes successive rooms hosted in the same chat.
	SessionID       string
	ChatID          int64
	HostID          int64
	State           State
	Players         map[int64]struct{}
	CurrentQuestion int
	Answered        map[int64]struct{}
	Solved          bool
	ActiveMessage   MessageRef
}

func newRoom(chatID, hostID int64) *Room {
	return &Room{
		SessionID: uuid.NewString(),
		ChatID:    chatID,
		HostID:    hostID,
		State:     StateOpen,
		Players:   make(map[int64]struct{}),
		Answered:  make(map[int64]struct{}),
	}
}

func (r *Room) HasPlayer(userID int64) bool {
	_, ok := r.Players[userID]
	return ok
}

func (r *Room) HasAnswered(userID int64) bool {
	_, ok := r.Answered[userID]
	return ok
}

// startQuestion moves the room to question idx with a fresh answer window.
func (r *Room) startQuestion(idx int) {
	r.CurrentQuestion = idx
	r.Answered = make(map[int64]struct{})
	r.Solved = false
	r.ActiveMessage = 0
}

func (r *Room) clone() Room {
	out := *r
	out.Players = make(map[int64]struct{}, len(r.Players))
	for id := range r.Players {
		out.Players[id] = struct{}{}
	}
	out.Answered = make(map[int64]struct{}, len(r.Answered))
	for id := range r.Answered {
		out.Answered[id] = struct{}{}
	}
	return out
}

// Registry maps chats to their room. Each chat has its own lock and every
// read or write of that chat's room happens while holding it.
type Registry struct {
	mu    sync.Mutex
	chats map[int64]*chatSlot
}

type chatSlot struct {
	mu   sync.Mutex
	room *Room
}

func NewRegistry() *Registry {
	return &Registry{
		chats: make(map[int64]*chatSlot),
	}
}

func (r *Registry) slot(chatID int64) *chatSlot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.chats[chatID]
	if !ok {
		s = &chatSlot{}
		r.chats[chatID] = s
	}
	return s
}

// withChat runs fn while holding the chat's lock.
func (r *Registry) withChat(chatID int64, fn func(s *chatSlot)) {
	s := r.slot(chatID)
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

// open installs a new room in the slot and returns the previous room's active
// question message, if any. The caller holds s.mu.
func (s *chatSlot) open(chatID, hostID int64) (stale MessageRef) {
	if s.room != nil {
		stale = s.room.ActiveMessage
	}
	s.room = newRoom(chatID, hostID)
	return stale
}

// CreateRoom opens a new room for the chat, discarding any previous one.
func (r *Registry) CreateRoom(chatID, hostID int64) Room {
	var out Room
	r.withChat(chatID, func(s *chatSlot) {
		s.open(chatID, hostID)
		out = s.room.clone()
	})
	return out
}

// GetRoom returns a copy of the chat's room.
func (r *Registry) GetRoom(chatID int64) (Room, bool) {
	var (
		out Room
		ok  bool
	)
	r.withChat(chatID, func(s *chatSlot) {
		if s.room != nil {
			out, ok = s.room.clone(), true
		}
	})
	return out, ok
}
