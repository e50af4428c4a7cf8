package client

import (
	"testing"

	assert "github.com/stretchr/testify/require"

	"github.com/napi-network/napi/fault"
	"github.com/napi-network/napi/netconf/common"
)

func TestClassifyReply(t *testing.T) {
	assert.NoError(t, classifyReply("leaf1", &common.RPCReply{}))
	assert.ErrorIs(t, classifyReply("leaf1", nil), fault.ErrConnection)

	// The first rpc-error decides, whatever its severity.
	err := classifyReply("leaf1", &common.RPCReply{Errors: []common.RPCError{
		{Severity: "warning", Message: " interface is down "},
		{Severity: "error", Message: "system is busy in committing configurations of other users"},
	}})
	assert.ErrorIs(t, err, fault.ErrRPC)
	assert.NotErrorIs(t, err, fault.ErrCommit)
	assert.Equal(t, "rpc on leaf1 failed: interface is down", err.Error())

	err = classifyReply("leaf1", &common.RPCReply{Errors: []common.RPCError{
		{Severity: "error", Message: "Error: The system is busy in committing configurations of other users."},
	}})
	assert.ErrorIs(t, err, fault.ErrCommit)
}
