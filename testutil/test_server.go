package testutil

import (
	"bufio"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net"
	"sync"

	assert "github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

// SSHHandler handles a channel once the client has started a shell or a
// subsystem on it.
type SSHHandler interface {
	Handle(t assert.TestingT, ch ssh.Channel)
}

// ExecHandler is implemented by handlers that also serve exec requests. Exec
// writes the command output to ch and returns its exit status.
type ExecHandler interface {
	Exec(t assert.TestingT, cmd string, ch ssh.Channel) uint32
}

// HandlerFactory delivers the handler for a newly opened channel.
type HandlerFactory func(t assert.TestingT) SSHHandler

// ServerOption configures a test server.
type ServerOption func(*SSHServer)

// WithChannelRejection makes the server refuse every session channel.
func WithChannelRejection(reason ssh.RejectionReason, message string) ServerOption {
	return func(s *SSHServer) {
		s.rejectReason = reason
		s.rejectMessage = message
	}
}

// SSHServer represents a test SSH Server
type SSHServer struct {
	listener net.Listener
	t        assert.TestingT
	factory  HandlerFactory

	rejectReason  ssh.RejectionReason
	rejectMessage string

	mu    sync.Mutex
	conns []net.Conn
}

// NewSSHServer delivers a new test SSH Server that echoes each input line
// prefixed by "GOT:".
// The server implements password authentication with the given credentials.
func NewSSHServer(t assert.TestingT, uname, password string) *SSHServer {
	return NewSSHServerHandler(t, uname, password, func(t assert.TestingT) SSHHandler { return &echoer{} })
}

// NewSSHServerHandler delivers a new test SSH Server, with a custom channel handler.
// The server implements password authentication with the given credentials.
func NewSSHServerHandler(t assert.TestingT, uname, password string, factory HandlerFactory, opts ...ServerOption) *SSHServer {
	listener, err := net.Listen("tcp", "localhost:0")
	assert.NoError(t, err, "Listen failed")

	s := &SSHServer{listener: listener, t: t, factory: factory}
	for _, opt := range opts {
		opt(s)
	}

	go s.acceptConnections(newSSHServerConfig(t, uname, password))
	return s
}

// Port delivers the tcp port number on which the server is listening.
func (s *SSHServer) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Address delivers the localhost address on which the server is listening.
func (s *SSHServer) Address() string {
	return fmt.Sprintf("localhost:%d", s.Port())
}

// Close stops listening and drops every open connection.
func (s *SSHServer) Close() {
	_ = s.listener.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		_ = c.Close()
	}
	s.conns = nil
}

func (s *SSHServer) acceptConnections(config *ssh.ServerConfig) {
	for {
		nConn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, nConn)
		s.mu.Unlock()

		go s.serveConnection(nConn, config)
	}
}

func (s *SSHServer) serveConnection(nConn net.Conn, config *ssh.ServerConfig) {
	_, chch, reqch, err := ssh.NewServerConn(nConn, config)
	if err != nil {
		_ = nConn.Close()
		return
	}

	go ssh.DiscardRequests(reqch)

	// Service the incoming Channel channel.
	for newChannel := range chch {
		if s.rejectMessage != "" {
			_ = newChannel.Reject(s.rejectReason, s.rejectMessage)
			continue
		}
		if newChannel.ChannelType() != "session" {
			_ = newChannel.Reject(ssh.UnknownChannelType, "unsupported channel type")
			continue
		}
		ch, requests, err := newChannel.Accept()
		if err != nil {
			continue
		}
		go s.serveRequests(ch, requests, s.factory(s.t))
	}
}

type execRequest struct {
	Command string
}

type exitStatus struct {
	Status uint32
}

func (s *SSHServer) serveRequests(ch ssh.Channel, in <-chan *ssh.Request, h SSHHandler) {
	started := false
	for req := range in {
		switch req.Type {
		case "pty-req", "env":
			_ = req.Reply(true, nil)

		case "shell", "subsystem":
			if started {
				_ = req.Reply(false, nil)
				continue
			}
			started = true
			_ = req.Reply(true, nil)
			go func() {
				defer ch.Close()
				h.Handle(s.t, ch)
			}()

		case "exec":
			eh, ok := h.(ExecHandler)
			cmd := execRequest{}
			if started || !ok || ssh.Unmarshal(req.Payload, &cmd) != nil {
				_ = req.Reply(false, nil)
				continue
			}
			started = true
			_ = req.Reply(true, nil)
			go func() {
				defer ch.Close()
				status := eh.Exec(s.t, cmd.Command, ch)
				_ = ch.CloseWrite()
				_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(&exitStatus{Status: status}))
			}()

		default:
			if req.WantReply {
				_ = req.Reply(false, nil)
			}
		}
	}
}

// echoer writes back every line it reads, prefixed by "GOT:".
type echoer struct{}

func (e *echoer) Handle(t assert.TestingT, ch ssh.Channel) {
	chReader := bufio.NewReader(ch)
	chWriter := bufio.NewWriter(ch)
	for {
		input, err := chReader.ReadString('\n')
		if err != nil {
			return
		}
		_, err = chWriter.WriteString(fmt.Sprintf("GOT:%s", input))
		assert.NoError(t, err, "Write failed")
		_ = chWriter.Flush()
	}
}

func newSSHServerConfig(t assert.TestingT, uname, password string) *ssh.ServerConfig {
	config := &ssh.ServerConfig{
		PasswordCallback: func(c ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if c.User() == uname && string(pass) == password {
				return nil, nil
			}
			return nil, fmt.Errorf("password rejected for %q", c.User())
		},
	}

	config.AddHostKey(generateHostKey(t))
	return config
}

func generateHostKey(t assert.TestingT) (hostkey ssh.Signer) {
	reader := rand.Reader
	bitSize := 2048
	var err error
	var key *rsa.PrivateKey
	if key, err = rsa.GenerateKey(reader, bitSize); err == nil {
		privateBytes := encodePrivateKeyToPEM(key)
		if hostkey, err = ssh.ParsePrivateKey(privateBytes); err == nil {
			return
		}
	}
	t.Errorf("Failed to generate host key %v", err)
	return
}

func encodePrivateKeyToPEM(privateKey *rsa.PrivateKey) []byte {
	// Get ASN.1 DER format
	privDER := x509.MarshalPKCS1PrivateKey(privateKey)

	// pem.Block
	privBlock := pem.Block{
		Type:    "RSA PRIVATE KEY",
		Headers: nil,
		Bytes:   privDER,
	}

	// Private key in PEM format
	return pem.EncodeToMemory(&privBlock)
}
