package batch

import "sync"

// ReplyTarget identifies the message a batch reply is addressed to.
type ReplyTarget struct {
	Channel   string
	ChatID    string
	MessageID string
}

// State accumulates fetch results between two consecutive flushes.
// It is shared by every fetch task and protected by one mutex; the
// critical sections are pure in-memory mutation, never I/O.
//
// Invariant: the reply target is set iff at least one line has been
// appended, and both are always cleared together.
type State struct {
	mu     sync.Mutex
	target *ReplyTarget
	lines  []string
}

// NewState returns an empty State.
func NewState() *State {
	return &State{}
}

// Append records one result line. The first append of a batch fixes the
// reply target; later appends never overwrite it. Line order follows
// lock-acquisition order, which under concurrency is completion order,
// not submission order.
func (s *State) Append(target ReplyTarget, line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.target == nil {
		t := target
		s.target = &t
	}
	s.lines = append(s.lines, line)
}

// Drain atomically takes the accumulated batch and leaves the state
// empty. ok is false when nothing was appended since the previous drain.
func (s *State) Drain() (target ReplyTarget, lines []string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.target == nil {
		return ReplyTarget{}, nil, false
	}
	target = *s.target
	lines = s.lines
	s.target = nil
	s.lines = nil
	return target, lines, true
}

// Len reports the number of accumulated lines.
func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}
