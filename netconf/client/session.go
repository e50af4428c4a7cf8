package client

import (
	"context"
	"encoding/xml"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/napi-network/napi/fault"
	"github.com/napi-network/napi/netconf/common"
	"github.com/napi-network/napi/netconf/common/codec"
)

// The Message layer defines a set of base protocol operations
// invoked as RPC methods with XML-encoded parameters.

// State is the lifecycle position of a session.
type State int32

// Session states, in the order a session moves through them.
const (
	StateDisconnected State = iota
	StateConnecting
	StateHelloSent
	StateReady
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateHelloSent:
		return "hello-sent"
	case StateReady:
		return "ready"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Session represents a Netconf Session
type Session interface {
	// Execute executes an RPC request on the server and returns the reply.
	// Requests are serialised; the wait for the reply ends when ctx is done,
	// in which case the session is torn down.
	Execute(ctx context.Context, req common.Request) (*common.RPCReply, error)

	// Close sends close-session, unless one has already been executed, and
	// releases the transport. Close can be called more than once.
	Close()

	// ID delivers the server-allocated id of the session.
	ID() uint64

	// ServerCapabilities delivers the server-supplied capabilities.
	ServerCapabilities() []string

	// State delivers the current lifecycle state.
	State() State

	// Target delivers the host the session is connected to.
	Target() string
}

type sesImpl struct {
	cfg   *Config
	t     Transport
	dec   *codec.Decoder
	enc   *codec.Encoder
	trace *ClientTrace

	hellochan chan *common.HelloMessage
	replies   chan *common.RPCReply
	done      chan struct{} // closed when the reader exits
	closed    chan struct{} // closed on teardown

	hello   *common.HelloMessage
	reqLock sync.Mutex
	state   int32

	closeOnce    sync.Once
	teardownOnce sync.Once

	target string
	host   string
}

// NewSession creates a new Netconf session, using the supplied Transport.
// The server hello is awaited before the client hello is sent.
func NewSession(ctx context.Context, t Transport, target string, cfg *Config) (Session, error) {
	si := &sesImpl{
		cfg:    cfg,
		t:      t,
		target: target,
		host:   hostOf(target),
		dec:    codec.NewDecoder(t),
		enc:    codec.NewEncoder(t),
		trace:  ContextClientTrace(ctx),

		hellochan: make(chan *common.HelloMessage, 1),
		replies:   make(chan *common.RPCReply),
		done:      make(chan struct{}),
		closed:    make(chan struct{}),
	}
	si.setState(StateConnecting)

	// Launch goroutine to handle incoming messages from the server.
	go si.handleIncomingMessages()

	if err := si.waitForServerHello(ctx); err != nil {
		si.trace.Error("Failed to receive hello", si.target, err)
		si.teardown()
		return nil, err
	}

	err := si.enc.Encode(&common.HelloMessage{Capabilities: cfg.Capabilities})
	if err != nil {
		si.trace.Error("Failed to encode hello", si.target, err)
		si.teardown()
		return nil, fault.Wrap(err, fault.Connection, "lost connection to %s", si.host)
	}
	si.setState(StateHelloSent)

	select {
	case <-time.After(cfg.SettleDelay):
	case <-ctx.Done():
		si.teardown()
		return nil, fault.Wrap(ctx.Err(), fault.Timeout, "connection to %s timed out", si.host)
	}
	si.setState(StateReady)
	return si, nil
}

func (si *sesImpl) Execute(ctx context.Context, req common.Request) (reply *common.RPCReply, err error) {
	si.trace.ExecuteStart(req)
	defer func(begin time.Time) {
		si.trace.ExecuteDone(req, reply, err, time.Since(begin))
	}(time.Now())

	si.reqLock.Lock()
	defer si.reqLock.Unlock()

	if st := si.State(); st != StateReady {
		return nil, fault.New(fault.Connection, "session to %s is %s", si.host, st)
	}

	b, err := codec.Marshal(&common.RPCMessage{MessageID: common.MessageID, Union: common.GetUnion(req)})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request")
	}
	if err = si.enc.WriteMessage(b); err != nil {
		si.teardown()
		return nil, fault.Wrap(err, fault.Connection, "lost connection to %s", si.host)
	}

	select {
	case reply = <-si.replies:
	case <-si.done:
		si.teardown()
		return nil, fault.New(fault.Connection, "lost connection to %s", si.host)
	case <-ctx.Done():
		// A late reply would be taken for the answer to the next request.
		si.teardown()
		return nil, fault.Wrap(ctx.Err(), fault.Timeout, "rpc to %s timed out", si.host)
	}

	if _, ok := req.(*common.CloseSessionReq); ok {
		si.setState(StateClosing)
	}
	return reply, classifyReply(si.host, reply)
}

func (si *sesImpl) Close() {
	si.closeOnce.Do(func() {
		if si.State() == StateReady {
			ctx, cancel := context.WithTimeout(context.Background(), si.cfg.CloseTimeout)
			if _, err := si.Execute(ctx, &common.CloseSessionReq{}); err != nil {
				si.trace.Error("close-session failed", si.target, err)
			}
			cancel()
		}
		si.setState(StateClosing)
		si.teardown()
	})
}

func (si *sesImpl) ID() uint64 {
	return si.hello.SessionID
}

func (si *sesImpl) ServerCapabilities() []string {
	return si.hello.Capabilities
}

func (si *sesImpl) State() State {
	return State(atomic.LoadInt32(&si.state))
}

func (si *sesImpl) Target() string {
	return si.host
}

func (si *sesImpl) setState(to State) {
	from := State(atomic.SwapInt32(&si.state, int32(to)))
	if from != to {
		si.trace.StateChanged(si.target, from, to)
	}
}

func (si *sesImpl) teardown() {
	si.teardownOnce.Do(func() {
		close(si.closed)
		if err := si.t.Close(); err != nil {
			si.trace.Error("Session close failed", si.target, err)
		}
		si.setState(StateClosed)
	})
}

func (si *sesImpl) waitForServerHello(ctx context.Context) (err error) {
	select {
	case hello, ok := <-si.hellochan:
		if !ok {
			return fault.New(fault.Connection, "lost connection to %s before hello", si.host)
		}
		si.hello = hello
	case <-time.After(si.cfg.HelloTimeout):
		err = fault.New(fault.Timeout, "no hello from %s", si.host)
	case <-ctx.Done():
		err = fault.Wrap(ctx.Err(), fault.Timeout, "no hello from %s", si.host)
	}
	return
}

func (si *sesImpl) handleIncomingMessages() {
	defer close(si.done)
	defer close(si.hellochan)

	// Loop, looking for a start element type of hello or rpc-reply.
	for {
		token, err := si.dec.Token()
		if err != nil {
			return
		}

		if err = si.handleToken(token); err != nil {
			return
		}
	}
}

func (si *sesImpl) handleToken(token xml.Token) (err error) {
	if token, ok := token.(xml.StartElement); ok {
		switch token.Name {
		case common.NameHello: // <hello>
			err = si.handleHello(token)

		case common.NameRPCReply: // <rpc-reply>
			err = si.handleRPCReply(token)

		default:
		}
	}
	return
}

func (si *sesImpl) handleHello(token xml.StartElement) (err error) {
	hello := &common.HelloMessage{}
	if err = si.decodeElement(hello, &token); err != nil {
		return
	}

	select {
	case si.hellochan <- hello:
		si.trace.HelloDone(hello)
	default:
		// A second hello is ignored.
	}
	return
}

func (si *sesImpl) handleRPCReply(token xml.StartElement) (err error) {
	reply := &common.RPCReply{}
	if err = si.decodeElement(reply, &token); err != nil {
		return
	}

	select {
	case si.replies <- reply:
	case <-si.closed:
		return errors.New("session closed")
	}
	return
}

func (si *sesImpl) decodeElement(v interface{}, start *xml.StartElement) (err error) {
	if err = si.dec.DecodeElement(v, start); err != nil {
		si.trace.Error(fmt.Sprintf("DecodeElement token:%s", start.Name.Local), si.target, err)
	}
	return
}

func hostOf(target string) string {
	if host, _, err := net.SplitHostPort(target); err == nil {
		return host
	}
	return target
}
