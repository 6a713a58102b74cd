package gc

import (
	"os"

	"github.com/rs/zerolog"
)

// NewBackgroundLogger opens path for append and returns a zerolog.Logger that
// writes newline-delimited JSON, one event per phase-2 step, stamped with
// pid/user/host per the Error Handling Design's "Background tasks append to
// the background log with pid, user, and host markers."
func NewBackgroundLogger(path, user, host string) (zerolog.Logger, *os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640) //nolint:mnd
	if err != nil {
		return zerolog.Logger{}, nil, err
	}
	logger := zerolog.New(f).With().
		Timestamp().
		Int("pid", os.Getpid()).
		Str("user", user).
		Str("host", host).
		Logger()
	return logger, f, nil
}
