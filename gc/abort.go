// Package gc provides the cancellation sentinel and background-task logger
// used by the provisioner's phase 2 (§5 Concurrency & Resource Model), plus
// the GC orchestration pattern adapted from the teacher's lock-scoped
// read/collect cycle for sweeping stale release/staging temp directories.
package gc

import (
	"fmt"
	"os"
	"time"

	"github.com/wstrucke/scs/utils"
)

// Sentinel is the filesystem abort flag. Its presence terminates every
// background polling loop at the next iteration boundary and soft-locks new
// operations (they warn but proceed), per §5 Cancellation.
type Sentinel struct {
	Path string
}

// NewSentinel binds a Sentinel to path (config.Config.AbortFile()).
func NewSentinel(path string) *Sentinel { return &Sentinel{Path: path} }

// Set writes reason to the sentinel, creating it if absent.
func (s *Sentinel) Set(reason string) error {
	body := fmt.Sprintf("%s\n%s\n", time.Now().UTC().Format(time.RFC3339), reason)
	return utils.AtomicWriteFile(s.Path, []byte(body), 0o640) //nolint:mnd
}

// Clear implements "abort disable": removes the sentinel.
func (s *Sentinel) Clear() error {
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Present reports whether the sentinel currently exists.
func (s *Sentinel) Present() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

// Checker adapts Present to utils.AbortChecker for use with utils.PollUntilAborted.
func (s *Sentinel) Checker() utils.AbortChecker { return s.Present }
