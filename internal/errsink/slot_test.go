package errsink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlot(t *testing.T) {
	s := NewSlot()
	assert.Equal(t, "", s.Current())

	s.Display("first")
	s.Display("second")
	assert.Equal(t, "second", s.Current())

	s.Clear()
	assert.Equal(t, "", s.Current())
}

func TestSlotObservers(t *testing.T) {
	s := NewSlot()
	var seen []string
	s.Subscribe(func(msg string) { seen = append(seen, msg) })

	s.Display("ERROR READING API")
	s.Clear()

	assert.Equal(t, []string{"ERROR READING API"}, seen)
}
