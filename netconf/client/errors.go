package client

import (
	"strings"

	"github.com/napi-network/napi/fault"
	"github.com/napi-network/napi/netconf/common"
)

// commitBusy is reported by devices while another user holds the commit lock.
const commitBusy = "system is busy in committing configurations of other users"

// classifyReply maps a reply to an error if it carries an rpc-error. The first
// rpc-error decides, whatever its severity.
func classifyReply(host string, r *common.RPCReply) error {
	if r == nil {
		return fault.New(fault.Connection, "lost connection to %s", host)
	}
	if len(r.Errors) == 0 {
		return nil
	}

	rpcErr := r.Errors[0]
	message := strings.TrimSpace(rpcErr.Message)
	if strings.Contains(message, commitBusy) || strings.Contains(rpcErr.Info, commitBusy) {
		return fault.Wrap(&rpcErr, fault.Commit, "commit on %s failed: %s", host, message)
	}
	return fault.Wrap(&rpcErr, fault.RPC, "rpc on %s failed: %s", host, message)
}
