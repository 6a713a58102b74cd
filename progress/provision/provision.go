// Package provision defines the event shape phase 2 writes to the
// background log (gc.NewBackgroundLogger) and decodes it back, letting the
// CLI report progress on a detached provisioning run without re-parsing
// zerolog's wire format inline in cmd/system.
package provision

import (
	"bufio"
	"encoding/json"
	"io"
	"time"

	"github.com/wstrucke/scs/progress"
)

// Event is one line of the background log, as written by a zerolog.Logger
// built with gc.NewBackgroundLogger and the Str/Msg calls in
// provision.Phase2.
type Event struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	PID     int       `json:"pid"`
	User    string    `json:"user"`
	Host    string    `json:"host"`
	System  string    `json:"system,omitempty"`
	From    string    `json:"from,omitempty"`
	To      string    `json:"to,omitempty"`
	Error   string    `json:"error,omitempty"`
	Message string    `json:"message"`
}

// ReadLog parses every newline-delimited JSON event in r. Malformed lines
// are skipped rather than aborting the read, since the log is append-only
// and a torn final line from an in-progress write is expected.
func ReadLog(r io.Reader) ([]Event, error) {
	var events []Event
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) //nolint:mnd
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// ForSystem filters events down to the ones logged for system name, plus
// any events logged before the system's name was first mentioned (phase 2's
// very first line always carries it).
func ForSystem(events []Event, name string) []Event {
	var out []Event
	seen := false
	for _, e := range events {
		if e.System == name {
			seen = true
		}
		if seen {
			out = append(out, e)
		}
	}
	return out
}

// Report drives t with one event per log line, in order, for callers that
// want to print progress through a progress.Tracker instead of iterating
// the slice directly.
func Report(events []Event, t progress.Tracker) {
	for _, e := range events {
		t.OnEvent(e)
	}
}
