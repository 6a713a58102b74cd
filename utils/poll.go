package utils

import (
	"context"
	"fmt"
	"os"
	"time"
)

// WaitFor polls check at the given interval until it returns (true, nil),
// returns a non-nil error, or the timeout/context expires.
func WaitFor(ctx context.Context, timeout, interval time.Duration, check func() (done bool, err error)) error {
	deadline := time.Now().Add(timeout)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout after %s", timeout)
		}
		done, err := check()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// AbortChecker is implemented by anything that can report the presence of
// the filesystem abort sentinel (config.Config.AbortFile).
type AbortChecker func() bool

// FileAbortChecker returns an AbortChecker that stats path on every call.
func FileAbortChecker(path string) AbortChecker {
	return func() bool {
		_, err := os.Stat(path)
		return err == nil
	}
}

// PollUntilAborted is like WaitFor but also terminates with an AbortedError
// (via the caller-supplied abort func) on every iteration boundary, per the
// concurrency model's cancellation rule: every polling loop checks the
// abort sentinel each iteration, never only inside a remote shell.
func PollUntilAborted(ctx context.Context, interval time.Duration, aborted AbortChecker, check func() (done bool, err error)) error {
	for {
		if aborted() {
			return fmt.Errorf("aborted: sentinel present")
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		done, err := check()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
