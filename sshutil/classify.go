package sshutil

import (
	"context"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"

	"github.com/napi-network/napi/fault"
)

// Classify maps a connection-phase failure to a fault kind. Errors that are
// already classified pass through unchanged; nothing is left unclassified.
func Classify(err error, host string) error {
	if err == nil || fault.Classified(err) {
		return err
	}

	var openErr *ssh.OpenChannelError
	switch {
	case isTimeout(err):
		return fault.Wrap(err, fault.Timeout, "connection to %s timed out", host)
	case isAuthFailure(err):
		return fault.Wrap(err, fault.Auth, "failed to authenticate on %s", host)
	case errors.As(err, &openErr):
		if openErr.Reason == ssh.ResourceShortage {
			return fault.Wrap(err, fault.SessionLimit, "session limit exceeded on %s", host)
		}
		return fault.Wrap(err, fault.Connection, "connection to %s refused by host", host)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fault.Wrap(err, fault.Connection, "connection to %s refused", host)
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, net.ErrClosed):
		return fault.Wrap(err, fault.Connection, "lost connection to %s", host)
	case strings.Contains(err.Error(), "subsystem request failed"):
		return fault.Wrap(err, fault.Connection, "connection to %s refused by host", host)
	case strings.Contains(err.Error(), "handshake failed"), strings.Contains(err.Error(), "no common algorithm"):
		return fault.Wrap(err, fault.Connection, "key exchange with %s failed", host)
	default:
		return fault.Wrap(err, fault.Connection, "failed to connect to %s", host)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// The ssh client reports exhausted auth methods only as text.
func isAuthFailure(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "unable to authenticate") || strings.Contains(msg, "no supported methods remain")
}
