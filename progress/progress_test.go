package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testEvent struct{ Step string }

func TestNewTracker_DeliversTypedEvent(t *testing.T) {
	var got []string
	tr := NewTracker(func(e testEvent) { got = append(got, e.Step) })

	tr.OnEvent(testEvent{Step: "one"})
	tr.OnEvent(testEvent{Step: "two"})

	assert.Equal(t, []string{"one", "two"}, got)
}

func TestNop_DiscardsEvents(t *testing.T) {
	assert.NotPanics(t, func() { Nop.OnEvent(testEvent{Step: "ignored"}) })
}
