package client

import (
	"time"

	"github.com/napi-network/napi/netconf/common"
)

// Defines structs describing netconf configuration.

// Config defines properties that configure netconf session behaviour.
type Config struct {
	// ConnectTimeout bounds the TCP connect and SSH handshake.
	ConnectTimeout time.Duration
	// HelloTimeout bounds the wait for the server hello.
	HelloTimeout time.Duration
	// SettleDelay is slept after sending the client hello, before the session accepts rpcs.
	SettleDelay time.Duration
	// CloseTimeout bounds the wait for the close-session reply.
	CloseTimeout time.Duration
	// Capabilities advertised in the client hello.
	Capabilities []string
}

// DefaultConfig supplies the value of every Config field left unset.
var DefaultConfig = &Config{
	ConnectTimeout: 5 * time.Second,
	HelloTimeout:   5 * time.Second,
	SettleDelay:    10 * time.Millisecond,
	CloseTimeout:   time.Second,
	Capabilities:   common.DefaultCapabilities,
}
