package callback

import "sync"

type slotState int

const (
	pending slotState = iota
	fulfilled
)

// Slot is a single-use completion primitive. It moves from pending to
// fulfilled exactly once; every later Fulfil is a no-op.
type Slot struct {
	mu    sync.Mutex
	state slotState
	done  chan string
}

// NewSlot returns a pending Slot.
func NewSlot() *Slot {
	return &Slot{done: make(chan string, 1)}
}

// Fulfil hands value to the waiter if the slot is still pending.
// It reports whether this call performed the transition.
func (s *Slot) Fulfil(value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != pending {
		return false
	}
	s.state = fulfilled
	// done is buffered with capacity one and written only here.
	s.done <- value
	return true
}

// Fulfilled reports whether a value has been handed over.
func (s *Slot) Fulfilled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == fulfilled
}

// Done returns a channel that yields the value once the slot is fulfilled.
func (s *Slot) Done() <-chan string {
	return s.done
}
