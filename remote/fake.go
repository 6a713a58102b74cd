package remote

import (
	"context"
	"os"
	"sync"

	"github.com/wstrucke/scs/errs"
)

// FakeHost is an in-memory Host used by provisioner/auditor tests (§8
// scenarios S4–S6) so they exercise the real state machines without a
// hypervisor or network.
type FakeHost struct {
	mu       sync.Mutex
	addr     string
	files    map[string][]byte
	commands map[string]string // exact command -> canned output
	execLog  []string
	alive    bool
}

// NewFakeHost returns a FakeHost with no files and no canned commands.
func NewFakeHost(addr string) *FakeHost {
	return &FakeHost{addr: addr, files: map[string][]byte{}, commands: map[string]string{}, alive: true}
}

// SetAlive controls what WaitForSSH-style polling sees for this host.
func (f *FakeHost) SetAlive(alive bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alive = alive
}

// StubCommand registers a canned output for an exact command string.
func (f *FakeHost) StubCommand(cmd, output string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands[cmd] = output
}

// ExecLog returns every command Exec was called with, in call order.
func (f *FakeHost) ExecLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.execLog))
	copy(out, f.execLog)
	return out
}

func (f *FakeHost) Address() string { return f.addr }

func (f *FakeHost) Exec(_ context.Context, cmd string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execLog = append(f.execLog, cmd)
	if out, ok := f.commands[cmd]; ok {
		return out, nil
	}
	return "", nil
}

func (f *FakeHost) Copy(_ context.Context, remotePath string, content []byte, _ os.FileMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	buf := make([]byte, len(content))
	copy(buf, content)
	f.files[remotePath] = buf
	return nil
}

func (f *FakeHost) Fetch(_ context.Context, remotePath string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[remotePath]
	if !ok {
		return nil, errs.Remotef("fake host %s: %s not found", f.addr, remotePath)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
