// Package remote implements Component G: a typed SSH/SCP executor replacing
// raw shelling to ssh/scp binaries. Production code talks to real hosts via
// SSHHost; tests substitute the embedded FakeHost (remote/fake.go).
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/wstrucke/scs/errs"
)

// Host abstracts remote command execution and file transfer against one
// target. Both the provisioner (Component I) and the auditor (Component J)
// depend on this interface, never on *SSHHost directly, so tests can swap in
// FakeHost.
type Host interface {
	// Exec runs cmd on the host and returns combined stdout/stderr.
	Exec(ctx context.Context, cmd string) (output string, err error)
	// Copy uploads local content to remotePath with the given permission bits.
	Copy(ctx context.Context, remotePath string, content []byte, perm os.FileMode) error
	// Fetch downloads remotePath's content.
	Fetch(ctx context.Context, remotePath string) ([]byte, error)
	// Address returns the dotted-quad or hostname this Host targets.
	Address() string
}

// SSHHost is the production Host backed by golang.org/x/crypto/ssh for
// command execution and github.com/pkg/sftp for file transfer.
type SSHHost struct {
	addr       string
	user       string
	signer     ssh.Signer
	hostKeyCB  ssh.HostKeyCallback
	dialTimeout time.Duration
}

// NewSSHHost builds an SSHHost that authenticates with the private key at
// identityPath. hostKeyCB should come from a loaded known_hosts file;
// ssh.InsecureIgnoreHostKey() is accepted but callers outside tests should
// avoid it.
func NewSSHHost(addr, user, identityPath string, hostKeyCB ssh.HostKeyCallback) (*SSHHost, error) {
	key, err := os.ReadFile(identityPath) //nolint:gosec // operator-configured identity path
	if err != nil {
		return nil, errs.Remotef("read identity %s: %w", identityPath, err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, errs.Remotef("parse identity %s: %w", identityPath, err)
	}
	return &SSHHost{
		addr:        addr,
		user:        user,
		signer:      signer,
		hostKeyCB:   hostKeyCB,
		dialTimeout: 10 * time.Second, //nolint:mnd
	}, nil
}

func (h *SSHHost) Address() string { return h.addr }

func (h *SSHHost) dial(ctx context.Context) (*ssh.Client, error) {
	cfg := &ssh.ClientConfig{
		User:            h.user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(h.signer)},
		HostKeyCallback: h.hostKeyCB,
		Timeout:         h.dialTimeout,
	}
	d := net.Dialer{Timeout: h.dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(h.addr, "22"))
	if err != nil {
		return nil, errs.Remotef("dial %s: %w", h.addr, err)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, h.addr, cfg)
	if err != nil {
		return nil, errs.Remotef("ssh handshake %s: %w", h.addr, err)
	}
	return ssh.NewClient(c, chans, reqs), nil
}

// Exec opens a session over a fresh connection and runs cmd, returning
// combined stdout+stderr.
func (h *SSHHost) Exec(ctx context.Context, cmd string) (string, error) {
	client, err := h.dial(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close() //nolint:errcheck

	sess, err := client.NewSession()
	if err != nil {
		return "", errs.Remotef("open session to %s: %w", h.addr, err)
	}
	defer sess.Close() //nolint:errcheck

	var out bytes.Buffer
	sess.Stdout = &out
	sess.Stderr = &out

	done := make(chan error, 1)
	go func() { done <- sess.Run(cmd) }()

	select {
	case <-ctx.Done():
		return out.String(), errs.Remotef("exec %q on %s: %w", cmd, h.addr, ctx.Err())
	case err := <-done:
		if err != nil {
			return out.String(), errs.Remotef("exec %q on %s: %w", cmd, h.addr, err)
		}
		return out.String(), nil
	}
}

// Copy uploads content to remotePath via SFTP, creating parent directories
// as needed.
func (h *SSHHost) Copy(ctx context.Context, remotePath string, content []byte, perm os.FileMode) error {
	client, err := h.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck

	sc, err := sftp.NewClient(client)
	if err != nil {
		return errs.Remotef("open sftp to %s: %w", h.addr, err)
	}
	defer sc.Close() //nolint:errcheck

	f, err := sc.Create(remotePath)
	if err != nil {
		return errs.Remotef("create %s on %s: %w", remotePath, h.addr, err)
	}
	defer f.Close() //nolint:errcheck

	if _, err := f.Write(content); err != nil {
		return errs.Remotef("write %s on %s: %w", remotePath, h.addr, err)
	}
	if err := sc.Chmod(remotePath, perm); err != nil {
		return errs.Remotef("chmod %s on %s: %w", remotePath, h.addr, err)
	}
	return nil
}

// Fetch downloads remotePath's content via SFTP.
func (h *SSHHost) Fetch(ctx context.Context, remotePath string) ([]byte, error) {
	client, err := h.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close() //nolint:errcheck

	sc, err := sftp.NewClient(client)
	if err != nil {
		return nil, errs.Remotef("open sftp to %s: %w", h.addr, err)
	}
	defer sc.Close() //nolint:errcheck

	f, err := sc.Open(remotePath)
	if err != nil {
		return nil, errs.Remotef("open %s on %s: %w", remotePath, h.addr, err)
	}
	defer f.Close() //nolint:errcheck

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errs.Remotef("read %s on %s: %w", remotePath, h.addr, err)
	}
	return data, nil
}

// Alive reports whether a TCP connection to port 22 succeeds within the
// given timeout, the first rung of the IPAM liveness probe (§4.4).
func Alive(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(addr, "22"), timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// WaitForSSH polls Alive every interval until it succeeds or ctx is done,
// used by the provisioner's phase-2 "wait-SSH" step.
func WaitForSSH(ctx context.Context, addr string, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if Alive(addr, 2*time.Second) { //nolint:mnd
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for ssh on %s: %w", addr, ctx.Err())
		case <-ticker.C:
		}
	}
}
