package provision

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wstrucke/scs/progress"
)

const sampleLog = `{"level":"info","pid":1,"user":"root","host":"ctl","system":"web01","time":"2026-01-01T00:00:00Z","message":"phase2 start: wait for post-install reboot"}
{"level":"info","pid":1,"user":"root","host":"ctl","time":"2026-01-01T00:01:00Z","message":"waiting for ssh"}
not even json
{"level":"warn","pid":1,"user":"root","host":"ctl","time":"2026-01-01T00:02:00Z","message":"shutdown command returned an error","error":"EOF"}
`

func TestReadLog_SkipsMalformedLines(t *testing.T) {
	events, err := ReadLog(strings.NewReader(sampleLog))
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "web01", events[0].System)
	assert.Equal(t, "EOF", events[2].Error)
}

func TestForSystem_IncludesEventsAfterFirstMention(t *testing.T) {
	events, err := ReadLog(strings.NewReader(sampleLog))
	require.NoError(t, err)

	filtered := ForSystem(events, "web01")
	require.Len(t, filtered, 3)
	assert.Equal(t, "phase2 start: wait for post-install reboot", filtered[0].Message)
}

func TestForSystem_EmptyWhenSystemNeverMentioned(t *testing.T) {
	events, err := ReadLog(strings.NewReader(sampleLog))
	require.NoError(t, err)

	assert.Empty(t, ForSystem(events, "db01"))
}

func TestReport_DrivesTrackerInOrder(t *testing.T) {
	events, err := ReadLog(strings.NewReader(sampleLog))
	require.NoError(t, err)

	var messages []string
	Report(events, progress.NewTracker(func(e Event) { messages = append(messages, e.Message) }))

	require.Len(t, messages, 3)
	assert.Equal(t, "waiting for ssh", messages[1])
}
