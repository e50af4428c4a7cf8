package client

import (
	"context"
	"time"

	"github.com/imdario/mergo"
	"golang.org/x/crypto/ssh"

	"github.com/napi-network/napi/sshutil"
)

// NewRPCSession connects to the target using the ssh configuration, and establishes
// a netconf session with default configuration.
func NewRPCSession(ctx context.Context, sshcfg *ssh.ClientConfig, target string) (s Session, err error) {
	return NewRPCSessionWithConfig(ctx, sshcfg, target, DefaultConfig)
}

// NewRPCSessionWithConfig connects to the  target using the ssh configuration, and establishes
// a netconf session with the client configuration. Failures are classified
// by fault kind.
func NewRPCSessionWithConfig(ctx context.Context, sshcfg *ssh.ClientConfig, target string, cfg *Config) (s Session, err error) {
	resolved := &Config{}
	if cfg != nil {
		*resolved = *cfg
	}
	_ = mergo.Merge(resolved, DefaultConfig)

	trace := ContextClientTrace(ctx)
	trace.ConnectStart(target)
	defer func(begin time.Time) {
		trace.ConnectDone(target, err, time.Since(begin))
	}(time.Now())

	dctx, cancel := context.WithTimeout(ctx, resolved.ConnectTimeout)
	defer cancel()

	var t Transport
	if t, err = NewSSHTransport(dctx, sshcfg, target, "netconf"); err != nil {
		return nil, sshutil.Classify(err, hostOf(target))
	}

	if s, err = NewSession(ctx, t, target, resolved); err != nil {
		return nil, sshutil.Classify(err, hostOf(target))
	}
	return s, nil
}
