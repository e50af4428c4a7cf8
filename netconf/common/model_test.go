package common

import (
	"encoding/xml"
	"testing"

	assert "github.com/stretchr/testify/require"
)

func TestRPCErrorString(t *testing.T) {
	err := &RPCError{
		Severity: "Severity",
		Message:  " Message\n",
	}

	assert.Equal(t, "netconf rpc [Severity] 'Message'", err.Error())
}

func TestHelloEncoding(t *testing.T) {
	b, err := xml.Marshal(&HelloMessage{Capabilities: DefaultCapabilities})
	assert.NoError(t, err)
	assert.Equal(t, `<hello xmlns="urn:ietf:params:xml:ns:netconf:base:1.0"><capabilities>`+
		`<capability>urn:ietf:params:netconf:base:1.0</capability></capabilities></hello>`, string(b))
}

func TestRPCEncoding(t *testing.T) {
	b, err := xml.Marshal(&RPCMessage{MessageID: MessageID, Union: GetUnion("<get/>")})
	assert.NoError(t, err)
	assert.Equal(t, `<rpc xmlns="urn:ietf:params:xml:ns:netconf:base:1.0" message-id="1"><get/></rpc>`, string(b))
}

func TestReplyDecoding(t *testing.T) {
	reply := &RPCReply{}
	assert.NoError(t, xml.Unmarshal([]byte(`<rpc-reply xmlns="urn:ietf:params:xml:ns:netconf:base:1.0" message-id="1">`+
		`<rpc-error><error-type>application</error-type><error-tag>operation-failed</error-tag>`+
		`<error-severity>error</error-severity><error-message xml:lang="en">boom</error-message></rpc-error>`+
		`</rpc-reply>`), reply))
	assert.Len(t, reply.Errors, 1)
	assert.Equal(t, "boom", reply.Errors[0].Message)
	assert.Equal(t, "operation-failed", reply.Errors[0].Tag)
	assert.Nil(t, reply.Ok)

	reply = &RPCReply{}
	assert.NoError(t, xml.Unmarshal([]byte(`<rpc-reply message-id="1"><ok/></rpc-reply>`), reply))
	assert.NotNil(t, reply.Ok)
	assert.Empty(t, reply.Errors)
}
