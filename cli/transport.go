package cli

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

// SSHTransport is the byte stream of an interactive shell.
type SSHTransport interface {
	io.ReadWriteCloser
}

type shellTransport struct {
	session *ssh.Session
	stdout  io.Reader
	stdin   io.WriteCloser
}

// shellModes turn off remote echo so that output holds only what the device
// prints.
var shellModes = ssh.TerminalModes{ssh.ECHO: 0}

// NewSSHTransport starts an interactive shell, on a dumb pty without echo,
// over an established client. Closing the transport leaves the client open.
func NewSSHTransport(client *ssh.Client) (SSHTransport, error) {
	session, err := client.NewSession()
	if err != nil {
		return nil, err
	}
	t := &shellTransport{session: session}
	if err = t.start(); err != nil {
		_ = t.Close()
		return nil, err
	}
	return t, nil
}

func (t *shellTransport) start() (err error) {
	if t.stdout, err = t.session.StdoutPipe(); err != nil {
		return err
	}
	if t.stdin, err = t.session.StdinPipe(); err != nil {
		return err
	}
	if err = t.session.RequestPty("dumb", 80, 200, shellModes); err != nil {
		return errors.Wrap(err, "request pty failed")
	}
	return errors.Wrap(t.session.Shell(), "login shell failed")
}

func (t *shellTransport) Read(p []byte) (int, error) {
	return t.stdout.Read(p)
}

func (t *shellTransport) Write(p []byte) (int, error) {
	return t.stdin.Write(p)
}

func (t *shellTransport) Close() error {
	if t.stdin != nil {
		_ = t.stdin.Close()
	}
	return t.session.Close()
}

// execRunner runs every command on its own exec channel.
type execRunner struct {
	client *ssh.Client
}

// Run executes cmd and delivers its combined stdout and stderr. A non-zero
// exit status is not an error.
func (r *execRunner) Run(ctx context.Context, cmd string) (string, error) {
	session, err := r.client.NewSession()
	if err != nil {
		return "", err
	}
	defer session.Close()

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := session.CombinedOutput(cmd)
		done <- result{out, err}
	}()

	select {
	case res := <-done:
		var exitErr *ssh.ExitError
		if res.err != nil && !errors.As(res.err, &exitErr) {
			return string(res.out), res.err
		}
		return string(res.out), nil
	case <-ctx.Done():
		_ = session.Close()
		return "", ctx.Err()
	}
}
