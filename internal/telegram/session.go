package telegram

import (
	"sync"

	"github.com/i474232898/canilaba/internal/users"
)

type state int

const (
	stateIdle state = iota
	stateAwaitingLocation
	stateChoosingDays
)

// session is the per-chat conversation state. Only owner, the user who
// started the step, may continue it.
type session struct {
	state state
	owner int64
	draft users.WeekdaySet
}

func (s session) awaiting(st state, userID int64) bool {
	return s.state == st && s.owner == userID
}

type sessions struct {
	mu   sync.Mutex
	byID map[int64]session
}

func newSessions() *sessions {
	return &sessions{byID: make(map[int64]session)}
}

func (s *sessions) get(chatID int64) session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byID[chatID]
}

func (s *sessions) set(chatID int64, sess session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[chatID] = sess
}

func (s *sessions) reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, chatID)
}

// toggle flips day in the chat's draft and returns the new draft. It reports
// false unless userID owns an open day picker in the chat.
func (s *sessions) toggle(chatID, userID int64, day int) (users.WeekdaySet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[chatID]
	if !ok || !sess.awaiting(stateChoosingDays, userID) {
		return 0, false
	}
	sess.draft = sess.draft.Toggle(users.Weekdays[day])
	s.byID[chatID] = sess
	return sess.draft, true
}
