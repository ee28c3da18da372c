// Package errsink is the single-slot "current error message" channel shared by
// the analysis core and whichever UI collaborator displays it.
package errsink

import "sync"

// Sink receives user-facing error messages.
type Sink interface {
	Display(msg string)
	Clear()
}

// Slot holds at most one message. Observers are told about every Display, which
// is how out-of-process channels (Telegram) are fed.
type Slot struct {
	mu        sync.RWMutex
	message   string
	observers []func(msg string)
}

// NewSlot creates an empty slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Subscribe registers fn to be called after each Display.
func (s *Slot) Subscribe(fn func(msg string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Display replaces the current message.
func (s *Slot) Display(msg string) {
	s.mu.Lock()
	s.message = msg
	observers := append([]func(string){}, s.observers...)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(msg)
	}
}

// Clear empties the slot.
func (s *Slot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = ""
}

// Current returns the message on display, or "" when none is.
func (s *Slot) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.message
}
