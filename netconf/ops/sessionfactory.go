package ops

import (
	"context"

	"golang.org/x/crypto/ssh"

	"github.com/napi-network/napi/netconf/client"
)

// NewSession opens a NETCONF session to target with the default client
// configuration.
func NewSession(ctx context.Context, sshcfg *ssh.ClientConfig, target string) (Session, error) {
	return NewSessionWithConfig(ctx, sshcfg, target, client.DefaultConfig)
}

// NewSessionWithConfig opens a NETCONF session to target. Unset cfg fields
// take their defaults.
func NewSessionWithConfig(ctx context.Context, sshcfg *ssh.ClientConfig, target string, cfg *client.Config) (Session, error) {
	cs, err := client.NewRPCSessionWithConfig(ctx, sshcfg, target, cfg)
	if err != nil {
		return nil, err
	}
	return Wrap(cs), nil
}

// Wrap adds the operations to an established session.
func Wrap(cs client.Session) Session {
	return &sImpl{Session: cs}
}
