package client

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"

	"github.com/napi-network/napi/sshutil"
)

// Transport is the byte stream a session is framed over.
type Transport interface {
	io.ReadWriteCloser
}

// sshTransport is a subsystem channel on a client it owns.
type sshTransport struct {
	client  *ssh.Client
	session *ssh.Session
	stdout  io.Reader
	stdin   io.WriteCloser

	trace  *ClientTrace
	target string
}

// NewSSHTransport dials target and starts subsystem on a new channel. ctx
// bounds the dial and the channel setup.
func NewSSHTransport(ctx context.Context, clientConfig *ssh.ClientConfig, target, subsystem string) (Transport, error) {
	t := &sshTransport{target: target, trace: ContextClientTrace(ctx)}

	t.trace.DialStart(clientConfig, target)
	begin := time.Now()
	client, err := sshutil.Dial(ctx, target, clientConfig)
	t.trace.DialDone(clientConfig, target, err, time.Since(begin))
	if err != nil {
		return nil, err
	}
	t.client = client

	if err = t.open(subsystem); err != nil {
		_ = t.Close()
		return nil, err
	}
	return t, nil
}

func (t *sshTransport) open(subsystem string) (err error) {
	if t.session, err = t.client.NewSession(); err != nil {
		return err
	}
	if t.stdout, err = t.session.StdoutPipe(); err != nil {
		return err
	}
	if t.stdin, err = t.session.StdinPipe(); err != nil {
		return err
	}
	return errors.Wrapf(t.session.RequestSubsystem(subsystem), "subsystem %s", subsystem)
}

func (t *sshTransport) Read(p []byte) (n int, err error) {
	t.trace.ReadStart(p)
	defer func(begin time.Time) {
		t.trace.ReadDone(p, n, err, time.Since(begin))
	}(time.Now())
	return t.stdout.Read(p)
}

func (t *sshTransport) Write(p []byte) (n int, err error) {
	t.trace.WriteStart(p)
	defer func(begin time.Time) {
		t.trace.WriteDone(p, n, err, time.Since(begin))
	}(time.Now())
	return t.stdin.Write(p)
}

// Close releases stdin, the channel and the client, in that order, and
// delivers the first failure. A channel already closed by the peer is not a
// failure.
func (t *sshTransport) Close() (err error) {
	defer func() { t.trace.ConnectionClosed(t.target, err) }()

	keep := func(e error) {
		if err == nil && e != nil && e != io.EOF {
			err = e
		}
	}
	if t.stdin != nil {
		keep(t.stdin.Close())
	}
	if t.session != nil {
		keep(t.session.Close())
	}
	keep(t.client.Close())
	return err
}
