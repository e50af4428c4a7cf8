package client

import (
	"context"
	"time"

	"github.com/imdario/mergo"
	"golang.org/x/crypto/ssh"

	"github.com/napi-network/napi/logging"
	"github.com/napi-network/napi/netconf/common"
)

// unique type to prevent assignment.
type clientEventContextKey struct{}

// ContextClientTrace returns the Trace associated with the
// provided context. If none, it returns DefaultLoggingHooks.
func ContextClientTrace(ctx context.Context) *ClientTrace {
	trace, _ := ctx.Value(clientEventContextKey{}).(*ClientTrace)
	if trace == nil {
		return DefaultLoggingHooks
	}
	_ = mergo.Merge(trace, NoOpLoggingHooks)
	return trace
}

// WithClientTrace returns a new context based on the provided parent
// ctx. Netconf client requests made with the returned context will use
// the provided trace hooks
func WithClientTrace(ctx context.Context, trace *ClientTrace) context.Context {
	return context.WithValue(ctx, clientEventContextKey{}, trace)
}

// ClientTrace defines a structure for handling trace events
//
//nolint:golint
type ClientTrace struct {
	// ConnectStart is called when starting to create a netconf connection to a remote server.
	ConnectStart func(target string)

	// ConnectDone is called when the connection attempt completes, with err indicating
	// whether it was successful.
	ConnectDone func(target string, err error, d time.Duration)

	// DialStart is called when starting to dial a remote server.
	DialStart func(clientConfig *ssh.ClientConfig, target string)

	// DialDone is called when dial completes.
	DialDone func(clientConfig *ssh.ClientConfig, target string, err error, d time.Duration)

	// HelloDone is called when the hello message has been received from the server.
	HelloDone func(msg *common.HelloMessage)

	// StateChanged is called on every session state transition.
	StateChanged func(target string, from, to State)

	// ConnectionClosed is called after a transport connection has been closed, with
	// err indicating any error condition.
	ConnectionClosed func(target string, err error)

	// ReadStart is called before a read from the underlying transport.
	ReadStart func(buf []byte)

	// ReadDone is called after a read from the underlying transport.
	ReadDone func(buf []byte, c int, err error, d time.Duration)

	// WriteStart is called before a write to the underlying transport.
	WriteStart func(buf []byte)

	// WriteDone is called after a write to the underlying transport.
	WriteDone func(buf []byte, c int, err error, d time.Duration)

	// Error is called after an error condition has been detected.
	Error func(context, target string, err error)

	// ExecuteStart is called before the execution of an rpc request.
	ExecuteStart func(req common.Request)

	// ExecuteDone is called after the execution of an rpc request.
	ExecuteDone func(req common.Request, res *common.RPCReply, err error, d time.Duration)
}

func netconfLog(target string) *logging.Entry {
	return logging.WithTarget("netconf", target)
}

func took(e *logging.Entry, err error, d time.Duration) *logging.Entry {
	if err != nil {
		e = e.WithError(err)
	}
	return e.WithField("took_ms", d.Milliseconds())
}

// DefaultLoggingHooks reports errors only.
var DefaultLoggingHooks = &ClientTrace{
	Error: func(context, target string, err error) {
		netconfLog(target).WithError(err).WithField("context", context).Error("netconf failure")
	},
}

// MetricLoggingHooks log the duration of dials, connects, i/o and rpcs.
var MetricLoggingHooks = &ClientTrace{
	ConnectDone: func(target string, err error, d time.Duration) {
		took(netconfLog(target), err, d).Info("connect done")
	},
	DialDone: func(clientConfig *ssh.ClientConfig, target string, err error, d time.Duration) {
		took(netconfLog(target).WithField("user", clientConfig.User), err, d).Info("dial done")
	},
	ReadDone: func(p []byte, c int, err error, d time.Duration) {
		took(logging.WithOperation("netconf-read").WithField("bytes", c), err, d).Info("read done")
	},
	WriteDone: func(p []byte, c int, err error, d time.Duration) {
		took(logging.WithOperation("netconf-write").WithField("bytes", c), err, d).Info("write done")
	},
	Error: DefaultLoggingHooks.Error,
	ExecuteDone: func(req common.Request, res *common.RPCReply, err error, d time.Duration) {
		took(logging.WithOperation("netconf-rpc"), err, d).Info("rpc done")
	},
}

// DiagnosticLoggingHooks log every event at debug level, payloads included.
var DiagnosticLoggingHooks = &ClientTrace{
	ConnectStart: func(target string) {
		netconfLog(target).Debug("connect start")
	},
	ConnectDone: MetricLoggingHooks.ConnectDone,
	DialStart: func(clientConfig *ssh.ClientConfig, target string) {
		netconfLog(target).WithField("user", clientConfig.User).Debug("dial start")
	},
	DialDone: func(clientConfig *ssh.ClientConfig, target string, err error, d time.Duration) {
		took(netconfLog(target), err, d).Debug("dial done")
	},
	HelloDone: func(msg *common.HelloMessage) {
		logging.WithFields(map[string]interface{}{
			"session_id":   msg.SessionID,
			"capabilities": len(msg.Capabilities),
		}).Debug("server hello")
	},
	StateChanged: func(target string, from, to State) {
		netconfLog(target).WithField("from", from.String()).WithField("to", to.String()).Debug("session state")
	},
	ConnectionClosed: func(target string, err error) {
		took(netconfLog(target), err, 0).Debug("connection closed")
	},
	ReadDone: func(p []byte, c int, err error, d time.Duration) {
		took(logging.WithOperation("netconf-read"), err, d).Debugf("%s", p[:c])
	},
	WriteStart: func(p []byte) {
		logging.WithOperation("netconf-write").Debugf("%s", p)
	},
	Error: DefaultLoggingHooks.Error,
	ExecuteStart: func(req common.Request) {
		logging.WithOperation("netconf-rpc").Debugf("request %T", req)
	},
	ExecuteDone: func(req common.Request, res *common.RPCReply, err error, d time.Duration) {
		took(logging.WithOperation("netconf-rpc"), err, d).Debugf("request %T done", req)
	},
}

// NoOpLoggingHooks provides set of hooks that do nothing.
var NoOpLoggingHooks = &ClientTrace{
	ConnectStart:     func(target string) {},
	ConnectDone:      func(target string, err error, d time.Duration) {},
	DialStart:        func(clientConfig *ssh.ClientConfig, target string) {},
	DialDone:         func(clientConfig *ssh.ClientConfig, target string, err error, d time.Duration) {},
	HelloDone:        func(msg *common.HelloMessage) {},
	StateChanged:     func(target string, from, to State) {},
	ConnectionClosed: func(target string, err error) {},
	ReadStart:        func(p []byte) {},
	ReadDone:         func(p []byte, c int, err error, d time.Duration) {},
	WriteStart:       func(p []byte) {},
	WriteDone:        func(p []byte, c int, err error, d time.Duration) {},
	Error:            func(context, target string, err error) {},
	ExecuteStart:     func(req common.Request) {},
	ExecuteDone:      func(req common.Request, res *common.RPCReply, err error, d time.Duration) {},
}

func init() {
	for _, hooks := range []*ClientTrace{DefaultLoggingHooks, MetricLoggingHooks, DiagnosticLoggingHooks} {
		_ = mergo.Merge(hooks, NoOpLoggingHooks)
	}
}
