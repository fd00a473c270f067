package polls

import (
	"sort"
	"sync"
)

// Store owns every live poll for the lifetime of the process. Nothing is
// persisted; a restart loses all poll state and pending expiry timers.
//
// All operations are synchronous map mutations under one lock. Interaction
// handlers and expiry timers run in separate goroutines, so anything that
// renders a poll works from a Snapshot copy instead of the live pointer.
type Store struct {
	mu    sync.Mutex
	polls map[string]*Poll
}

func NewStore() *Store {
	return &Store{
		polls: make(map[string]*Poll),
	}
}

// Create inserts a poll under the given id, replacing any previous entry.
func (s *Store) Create(id string, poll *Poll) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll.ID = id
	s.polls[id] = poll
}

// Get returns the live poll for id, or false when unknown. The result must
// not be read concurrently with votes; use Snapshot for rendering.
func (s *Store) Get(id string) (*Poll, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[id]
	return poll, ok
}

// Snapshot returns a deep copy of the poll, or false when unknown.
func (s *Store) Snapshot(id string) (*Poll, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[id]
	if !ok {
		return nil, false
	}
	return poll.snapshot(), true
}

// Delete removes a poll entirely. Ended polls stay queryable until this is
// called explicitly.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.polls[id]
	delete(s.polls, id)
	return ok
}

// ListActiveIDs returns the ids of all polls still open, sorted.
func (s *Store) ListActiveIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, poll := range s.polls {
		if poll.Active {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// EndPoll marks the poll inactive and returns a snapshot of its final
// state, or false when unknown. Ending an already ended poll is a no-op.
func (s *Store) EndPoll(id string) (*Poll, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[id]
	if !ok {
		return nil, false
	}

	poll.Active = false
	return poll.snapshot(), true
}

// CastVote checks the poll's state and records the voter's choice in one
// critical section, replacing any previous choice, and returns a snapshot
// of the resulting state. Voting on another poll can never interleave with
// the precondition checks.
func (s *Store) CastVote(id string, voterID string, option int) (*Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[id]
	if !ok {
		return nil, ErrPollNotFound
	}
	if !poll.Active {
		return nil, ErrPollEnded
	}
	if option < 0 || option >= len(poll.Options) {
		return nil, ErrInvalidOption
	}

	poll.Votes[voterID] = option
	return poll.snapshot(), nil
}

// AddVote records the voter's choice, replacing any previous one. Returns
// false when the poll id is unknown. Option bounds and poll activity are
// the caller's responsibility.
func (s *Store) AddVote(id string, voterID string, option int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[id]
	if !ok {
		return false
	}

	poll.Votes[voterID] = option
	return true
}

// RemoveVote drops the voter's recorded choice, if any.
func (s *Store) RemoveVote(id string, voterID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[id]
	if !ok {
		return false
	}

	_, had := poll.Votes[voterID]
	delete(poll.Votes, voterID)
	return had
}

// HasVoted reports whether the voter has a recorded choice on the poll.
func (s *Store) HasVoted(id string, voterID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[id]
	if !ok {
		return false
	}

	_, voted := poll.Votes[voterID]
	return voted
}
