package utils

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const killWaitTimeout = 5 * time.Second

// WritePIDFile writes pid to path with 0600 permissions.
func WritePIDFile(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

// ReadPIDFile reads a PID integer from path.
func ReadPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path) //nolint:gosec // internal runtime path
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse PID from %s: %w", path, err)
	}
	return pid, nil
}

// IsProcessAlive returns true if a process with the given PID currently exists.
func IsProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return syscall.Kill(pid, 0) == nil
}

// TerminateProcess sends SIGTERM to pid, waits up to gracePeriod, then escalates to SIGKILL.
func TerminateProcess(ctx context.Context, pid int, gracePeriod time.Duration) error {
	if !IsProcessAlive(pid) {
		return nil
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		if !IsProcessAlive(pid) {
			return nil
		}
		return killAndWait(ctx, proc, pid)
	}
	if err := WaitFor(ctx, gracePeriod, 100*time.Millisecond, func() (bool, error) { //nolint:mnd
		return !IsProcessAlive(pid), nil
	}); err == nil {
		return nil
	}
	return killAndWait(ctx, proc, pid)
}

func killAndWait(ctx context.Context, proc *os.Process, pid int) error {
	_ = proc.Kill()
	return WaitFor(ctx, killWaitTimeout, 50*time.Millisecond, func() (bool, error) { //nolint:mnd
		return !IsProcessAlive(pid), nil
	})
}
