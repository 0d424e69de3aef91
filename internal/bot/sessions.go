package bot

import (
	"sync"
	"sync/atomic"
)

// operatorSlot serializes transitions of one operator. The session pointer
// is only read or written while mu is held.
type operatorSlot struct {
	mu      sync.Mutex
	session *BroadcastSession
}

func (s *operatorSlot) release() {
	s.mu.Unlock()
}

// sessionStore maps operators to their slot. Slots are never removed; the
// store only grows with the number of distinct operators.
type sessionStore struct {
	mu    sync.Mutex
	slots map[int64]*operatorSlot
	live  atomic.Int64
}

func newSessionStore() *sessionStore {
	return &sessionStore{
		slots: make(map[int64]*operatorSlot),
	}
}

func (s *sessionStore) slot(operatorID int64) *operatorSlot {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[operatorID]
	if !ok {
		slot = &operatorSlot{}
		s.slots[operatorID] = slot
	}
	return slot
}

// acquire blocks until no other transition of the operator is in flight
func (s *sessionStore) acquire(operatorID int64) *operatorSlot {
	slot := s.slot(operatorID)
	slot.mu.Lock()
	return slot
}

// tryAcquire returns false when a transition of the operator is in flight
func (s *sessionStore) tryAcquire(operatorID int64) (*operatorSlot, bool) {
	slot := s.slot(operatorID)
	if !slot.mu.TryLock() {
		return nil, false
	}
	return slot, true
}

// replace installs session in a held slot, discarding any previous one
func (s *sessionStore) replace(slot *operatorSlot, session *BroadcastSession) {
	if slot.session == nil {
		s.live.Add(1)
	}
	slot.session = session
}

// clear removes the session of a held slot
func (s *sessionStore) clear(slot *operatorSlot) {
	if slot.session != nil {
		s.live.Add(-1)
	}
	slot.session = nil
}

// Live returns the number of sessions in progress
func (s *sessionStore) Live() int {
	return int(s.live.Load())
}
