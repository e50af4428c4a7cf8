package testserver

import (
	"fmt"
	"runtime"
	"sync"

	assert "github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/napi-network/napi/testutil"
)

// Defines credentials used for test sessions.
const (
	TestUserName = "testUser"
	TestPassword = "testPassword"
)

// TestNCServer represents a Netconf Server that can be used for 'on-board' testing.
// It encapsulates a transport connection to an SSH server, and a netconf session handler that will
// be invoked to handle netconf messages.
type TestNCServer struct {
	*testutil.SSHServer
	tctx assert.TestingT

	mu              sync.Mutex
	sessionHandlers map[uint64]*SessionHandler
	reqHandlers     []RequestHandler
	caps            []string
	silent          bool
	nextSid         uint64
}

// NewTestNetconfServer creates a new TestNCServer that will accept Netconf localhost connections on an ephemeral port (available
// via Port(), with credentials defined by TestUserName and TestPassword.
// tctx will be used for handling failures; if the supplied value is nil, a default test context will be used.
// The behaviour of the Netconf session handler can be configured using the WithCapabilities and
// WithRequestHandler methods.
func NewTestNetconfServer(tctx assert.TestingT, opts ...testutil.ServerOption) *TestNCServer {
	ncs := &TestNCServer{sessionHandlers: make(map[uint64]*SessionHandler)}

	if tctx == nil {
		// Default test context to built-in implementation.
		tctx = ncs
	}
	ncs.tctx = tctx

	ncs.SSHServer = testutil.NewSSHServerHandler(tctx, TestUserName, TestPassword, ncs.newFactory(), opts...)
	return ncs
}

func (ncs *TestNCServer) newFactory() testutil.HandlerFactory {
	return func(t assert.TestingT) testutil.SSHHandler {
		ncs.mu.Lock()
		defer ncs.mu.Unlock()
		ncs.nextSid++
		sess := newSessionHandler(ncs.tctx, ncs.nextSid)
		if ncs.caps != nil {
			sess.capabilities = ncs.caps
		}
		sess.silent = ncs.silent
		sess.reqHandlers = append([]RequestHandler(nil), ncs.reqHandlers...)
		ncs.sessionHandlers[ncs.nextSid] = sess
		return sess
	}
}

// LastHandler delivers the handler of the most recent session.
func (ncs *TestNCServer) LastHandler() *SessionHandler {
	ncs.mu.Lock()
	defer ncs.mu.Unlock()
	return ncs.sessionHandlers[ncs.nextSid]
}

// SessionCount delivers the number of sessions opened so far.
func (ncs *TestNCServer) SessionCount() int {
	ncs.mu.Lock()
	defer ncs.mu.Unlock()
	return int(ncs.nextSid)
}

// WithRequestHandler adds a request handler to the netconf session.
func (ncs *TestNCServer) WithRequestHandler(rh RequestHandler) *TestNCServer {
	ncs.mu.Lock()
	defer ncs.mu.Unlock()
	ncs.reqHandlers = append(ncs.reqHandlers, rh)
	return ncs
}

// WithCapabilities define the capabilities that the server will advertise when a netconf client connects.
func (ncs *TestNCServer) WithCapabilities(caps []string) *TestNCServer {
	ncs.mu.Lock()
	defer ncs.mu.Unlock()
	ncs.caps = caps
	return ncs
}

// WithoutHello stops the server from sending its hello.
func (ncs *TestNCServer) WithoutHello() *TestNCServer {
	ncs.mu.Lock()
	defer ncs.mu.Unlock()
	ncs.silent = true
	return ncs
}

// ClientConfig delivers an ssh configuration holding the test credentials.
func (ncs *TestNCServer) ClientConfig() *ssh.ClientConfig {
	return &ssh.ClientConfig{
		User:            TestUserName,
		Auth:            []ssh.AuthMethod{ssh.Password(TestPassword)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // nolint: gosec
	}
}

// Close closes any active transport to the test server and prevents subsequent connections.
func (ncs *TestNCServer) Close() {
	ncs.SSHServer.Close()
}

// Errorf provides testing.T compatibility if a test context is not provided when the test server is
// created.
func (ncs *TestNCServer) Errorf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// FailNow provides testing.T compatibility if a test context is not provided when the test server is
// created.
func (ncs *TestNCServer) FailNow() {
	runtime.Goexit()
}

// SessionHandler delivers the netconf session handler associated with the specified session id.
func (ncs *TestNCServer) SessionHandler(id uint64) *SessionHandler {
	ncs.mu.Lock()
	sh, ok := ncs.sessionHandlers[id]
	ncs.mu.Unlock()
	if !ok {
		ncs.tctx.Errorf("Failed to get handler for session %d", id)
		ncs.tctx.FailNow()
	}
	return sh
}
