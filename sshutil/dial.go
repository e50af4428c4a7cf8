// Package sshutil dials SSH connections under a context deadline and
// classifies the failures of doing so.
package sshutil

import (
	"context"
	"net"

	"golang.org/x/crypto/ssh"
)

// Dial connects to target and completes the SSH handshake, giving up when ctx
// is done. The deadline is enforced here rather than left to the ssh client.
func Dial(ctx context.Context, target string, cfg *ssh.ClientConfig) (*ssh.Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", target)
	if err != nil {
		return nil, err
	}

	type result struct {
		client *ssh.Client
		err    error
	}
	done := make(chan result, 1)
	go func() {
		c, chans, reqs, err := ssh.NewClientConn(conn, target, cfg)
		if err != nil {
			done <- result{err: err}
			return
		}
		done <- result{client: ssh.NewClient(c, chans, reqs)}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			_ = conn.Close()
		}
		return r.client, r.err
	case <-ctx.Done():
		// Closing the conn unblocks the handshake.
		_ = conn.Close()
		if r := <-done; r.client != nil {
			_ = r.client.Close()
		}
		return nil, ctx.Err()
	}
}
