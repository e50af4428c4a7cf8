package testserver

import (
	"bytes"
	"encoding/xml"
	"io"
	"sync"
	"time"

	assert "github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/napi-network/napi/netconf/common"
	"github.com/napi-network/napi/netconf/common/codec"
)

// SessionHandler represents the server side of an active netconf SSH session.
type SessionHandler struct {
	// t is the testing context used for handling unexpected errors.
	t assert.TestingT

	// ch is the underlying transport connection.
	ch ssh.Channel

	// The codecs used to handle client i/o
	enc *codec.Encoder
	dec *codec.Decoder

	// Serialises access to encoder.
	encLock sync.Mutex

	// The capabilities advertised to the client.
	capabilities []string
	// The session id to be reported to the client.
	sid uint64
	// Suppresses the server hello.
	silent bool

	// Channel used to signal successful receipt of client capabilities.
	hellochan chan bool

	// The HelloMessage sent by the connecting client.
	ClientHello *common.HelloMessage

	// The queue of handlers used to process incoming client requests.
	// If the queue is empty, a request is processed by the EchoRequestHandler
	reqHandlers []RequestHandler

	mu       sync.Mutex
	requests []*RPCRequestMessage
	raw      bytes.Buffer
}

// RPCRequestMessage and RPCRequest represent an RPC request from a client, where the element type of the
// request body is unknown.
type RPCRequestMessage struct {
	XMLName   xml.Name
	MessageID string     `xml:"message-id,attr"`
	Request   RPCRequest `xml:",any"`
}

// RPCRequest is the body of a request.
type RPCRequest struct {
	XMLName xml.Name
	Body    string `xml:",innerxml"`
}

// RPCReplyMessage and ReplyData represent an rpc-reply message that will be sent to a client session, where the
// element type of the reply body (i.e. the content of the data element) is unknown.
type RPCReplyMessage struct {
	XMLName   xml.Name          `xml:"urn:ietf:params:xml:ns:netconf:base:1.0 rpc-reply"`
	MessageID string            `xml:"message-id,attr"`
	Errors    []common.RPCError `xml:"rpc-error,omitempty"`
	Data      *ReplyData        `xml:"data,omitempty"`
	Ok        *struct{}         `xml:"ok,omitempty"`
}

// ReplyData carries reply content verbatim.
type ReplyData struct {
	Data string `xml:",innerxml"`
}

// RequestHandler is a function type that will be invoked by the session handler to handle an RPC
// request.
type RequestHandler func(h *SessionHandler, req *RPCRequestMessage)

// EchoRequestHandler responds to a request with a reply containing a data element holding
// the body of the request.
var EchoRequestHandler = func(h *SessionHandler, req *RPCRequestMessage) {
	h.Reply(&RPCReplyMessage{Data: &ReplyData{Data: req.Request.Body}, MessageID: req.MessageID})
}

// FailingRequestHandler replies to a request with an error.
var FailingRequestHandler = ErrorReplyHandler("oops")

// OkRequestHandler replies to a request with ok.
var OkRequestHandler = func(h *SessionHandler, req *RPCRequestMessage) {
	h.Reply(&RPCReplyMessage{Ok: &struct{}{}, MessageID: req.MessageID})
}

// CloseRequestHandler closes the transport channel on request receipt.
var CloseRequestHandler = func(h *SessionHandler, req *RPCRequestMessage) {
	h.Close()
}

// IgnoreRequestHandler does in nothing on receipt of a request.
var IgnoreRequestHandler = func(h *SessionHandler, req *RPCRequestMessage) {}

// DataReplyHandler replies with data wrapped in a data element.
func DataReplyHandler(data string) RequestHandler {
	return func(h *SessionHandler, req *RPCRequestMessage) {
		h.Reply(&RPCReplyMessage{Data: &ReplyData{Data: data}, MessageID: req.MessageID})
	}
}

// ErrorReplyHandler replies with a single rpc-error of severity error.
func ErrorReplyHandler(message string) RequestHandler {
	return func(h *SessionHandler, req *RPCRequestMessage) {
		h.Reply(&RPCReplyMessage{
			MessageID: req.MessageID,
			Errors: []common.RPCError{
				{Type: "application", Tag: "operation-failed", Severity: "error", Message: message},
			},
		})
	}
}

func newSessionHandler(t assert.TestingT, sid uint64) *SessionHandler {
	return &SessionHandler{
		t:            t,
		sid:          sid,
		hellochan:    make(chan bool, 1),
		capabilities: common.DefaultCapabilities,
	}
}

// Handle establishes a Netconf server session on a newly-connected SSH channel.
func (h *SessionHandler) Handle(t assert.TestingT, ch ssh.Channel) {
	h.ch = ch
	h.dec = codec.NewDecoder(io.TeeReader(ch, &lockedWriter{h}))
	h.enc = codec.NewEncoder(ch)

	if !h.silent {
		err := h.encode(&common.HelloMessage{Capabilities: h.capabilities, SessionID: h.sid})
		assert.NoError(h.t, err, "Failed to send server hello")
	}

	// Loop, looking for a start element type of hello or rpc.
	for {
		token, err := h.dec.Token()
		if err != nil {
			return
		}
		h.handleToken(token)
	}
}

// WaitHello blocks until the client hello has been received or d elapses.
func (h *SessionHandler) WaitHello(d time.Duration) bool {
	select {
	case <-h.hellochan:
		return true
	case <-time.After(d):
		return false
	}
}

// Reply sends m to the client.
func (h *SessionHandler) Reply(m interface{}) {
	err := h.encode(m)
	assert.NoError(h.t, err, "Failed to encode response")
}

// Close initiates session tear-down by closing the underlying transport channel.
func (h *SessionHandler) Close() {
	_ = h.ch.Close()
}

// ReqCount delivers the number of requests that have been received by the session.
func (h *SessionHandler) ReqCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.requests)
}

// Requests delivers the requests received so far, close-session included.
func (h *SessionHandler) Requests() []*RPCRequestMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*RPCRequestMessage(nil), h.requests...)
}

// LastRequest delivers the most recent request, or nil.
func (h *SessionHandler) LastRequest() *RPCRequestMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.requests) == 0 {
		return nil
	}
	return h.requests[len(h.requests)-1]
}

// Raw delivers every byte read from the client, framing included.
func (h *SessionHandler) Raw() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.raw.String()
}

func (h *SessionHandler) handleToken(token xml.Token) {
	if token, ok := token.(xml.StartElement); ok {
		switch token.Name {
		case common.NameHello: // <hello>
			h.handleHello(token)

		case common.NameRPC: // <rpc>
			h.handleRPC(token)

		default:
		}
	}
}

func (h *SessionHandler) handleHello(token xml.StartElement) {
	h.ClientHello = &common.HelloMessage{}
	h.decodeElement(h.ClientHello, &token)
	select {
	case h.hellochan <- true:
	default:
	}
}

func (h *SessionHandler) handleRPC(token xml.StartElement) {
	request := &RPCRequestMessage{}
	h.decodeElement(request, &token)

	h.mu.Lock()
	h.requests = append(h.requests, request)
	h.mu.Unlock()

	if request.Request.XMLName.Local == "close-session" {
		OkRequestHandler(h, request)
		h.Close()
		return
	}
	h.nextReqHandler()(h, request)
}

func (h *SessionHandler) decodeElement(v interface{}, start *xml.StartElement) {
	err := h.dec.DecodeElement(v, start)
	assert.NoError(h.t, err, "DecodeElement failed")
}

func (h *SessionHandler) nextReqHandler() (reqh RequestHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.reqHandlers) == 0 {
		return EchoRequestHandler
	}
	h.reqHandlers, reqh = h.reqHandlers[1:], h.reqHandlers[0]
	return
}

func (h *SessionHandler) encode(m interface{}) error {
	h.encLock.Lock()
	defer h.encLock.Unlock()

	return h.enc.Encode(m)
}

type lockedWriter struct {
	h *SessionHandler
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.h.mu.Lock()
	defer w.h.mu.Unlock()
	return w.h.raw.Write(p)
}
