package common

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Defines structs representing netconf messages.

// Request represents the body of a Netconf RPC request.
type Request interface{}

// HelloMessage defines the message sent/received during session negotiation.
type HelloMessage struct {
	XMLName      xml.Name `xml:"urn:ietf:params:xml:ns:netconf:base:1.0 hello"`
	Capabilities []string `xml:"capabilities>capability"`
	SessionID    uint64   `xml:"session-id,omitempty"`
}

// RPCMessage defines an rpc request message
type RPCMessage struct {
	XMLName   xml.Name `xml:"urn:ietf:params:xml:ns:netconf:base:1.0 rpc"`
	MessageID string   `xml:"message-id,attr"`
	*Union
}

// RPCReply defines the an rpc reply message
type RPCReply struct {
	XMLName   xml.Name   `xml:"rpc-reply"`
	Errors    []RPCError `xml:"rpc-error,omitempty"`
	Data      string     `xml:",innerxml"`
	Ok        *struct{}  `xml:"ok,omitempty"`
	MessageID string     `xml:"message-id,attr"`
}

// RPCError defines an error reply to a RPC request
type RPCError struct {
	Type     string `xml:"error-type"`
	Tag      string `xml:"error-tag"`
	Severity string `xml:"error-severity"`
	Path     string `xml:"error-path"`
	Message  string `xml:"error-message"`
	Info     string `xml:",innerxml"`
}

// Error generates a string representation of the RPC error
func (re *RPCError) Error() string {
	return fmt.Sprintf("netconf rpc [%s] '%s'", re.Severity, strings.TrimSpace(re.Message))
}

// CloseSessionReq asks the server to release the session.
type CloseSessionReq struct {
	XMLName xml.Name `xml:"close-session"`
}

// Union carries a request body either as a value with xml tags or as a
// verbatim xml string.
type Union struct {
	ValueStr interface{}
	ValueXML string `xml:",innerxml"`
}

// GetUnion wraps s in a Union.
func GetUnion(s interface{}) *Union {
	switch request := s.(type) {
	case string:
		return &Union{ValueXML: request}
	default:
		return &Union{ValueStr: request}
	}
}

// MessageID is used for every rpc. Requests on a session are strictly
// sequential, so replies never need to be told apart.
const MessageID = "1"

// DefaultCapabilities is the fixed set advertised by the client.
var DefaultCapabilities = []string{
	CapBase10,
}

// Define xml names for different netconf messages.
var (
	NameHello    = xml.Name{Space: NetconfNS, Local: "hello"}
	NameRPC      = xml.Name{Space: NetconfNS, Local: "rpc"}
	NameRPCReply = xml.Name{Space: NetconfNS, Local: "rpc-reply"}
)

// Define netconf URNs.
const (
	NetconfNS = "urn:ietf:params:xml:ns:netconf:base:1.0"
	CapBase10 = "urn:ietf:params:netconf:base:1.0"
)

// Datastores.
const (
	Running   = "running"
	Candidate = "candidate"
	Startup   = "startup"
)
