package cli

import (
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/imdario/mergo"
	"golang.org/x/crypto/ssh"

	"github.com/napi-network/napi/fault"
	"github.com/napi-network/napi/logging"
	"github.com/napi-network/napi/sshutil"
)

// Commander is a value that renders itself as shell commands.
type Commander interface {
	Commands() []string
}

// Commands is a literal command list.
type Commands []string

// Commands delivers c.
func (c Commands) Commands() []string {
	return c
}

// Config defines the connection properties of a Driver.
type Config struct {
	SSH            *ssh.ClientConfig
	Port           int
	ConnectTimeout time.Duration
	CommandTimeout time.Duration
	// SettleDelay is slept once the connection is up.
	SettleDelay time.Duration
	// ReadTimeout is the silence that ends prompt auto-detection.
	ReadTimeout time.Duration
}

// DefaultDriverConfig supplies the value of every Config field left unset.
var DefaultDriverConfig = &Config{
	Port:           22,
	ConnectTimeout: 15 * time.Second,
	CommandTimeout: 15 * time.Second,
	SettleDelay:    300 * time.Millisecond,
	ReadTimeout:    time.Second,
}

// Driver runs commands on one device over one SSH connection.
type Driver struct {
	host     string
	platform Platform
	cfg      *Config

	client *ssh.Client
	shell  *PromptSession
	exec   *execRunner

	closeOnce sync.Once
}

// Connect opens a connection to host using the strategy of vendor. An
// unknown vendor fails before any network i/o.
func Connect(ctx context.Context, vendor, host string, cfg *Config) (*Driver, error) {
	p, err := PlatformFor(vendor)
	if err != nil {
		return nil, err
	}
	if cfg == nil || cfg.SSH == nil {
		return nil, fault.New(fault.Configuration, "no ssh configuration for %s", host)
	}

	resolved := *cfg
	_ = mergo.Merge(&resolved, DefaultDriverConfig)

	d := &Driver{host: host, platform: p, cfg: &resolved}
	log := logging.WithTarget("cli", host).WithField("platform", p.Name)

	dctx, cancel := context.WithTimeout(ctx, resolved.ConnectTimeout)
	defer cancel()

	if d.client, err = sshutil.Dial(dctx, d.target(), resolved.SSH); err != nil {
		err = sshutil.Classify(err, host)
		log.WithError(err).Debug("connect failed")
		return nil, err
	}

	if p.Interactive {
		if err = d.openShell(dctx); err != nil {
			_ = d.Close()
			err = sshutil.Classify(err, host)
			log.WithError(err).Debug("shell failed")
			return nil, err
		}
	} else {
		d.exec = &execRunner{client: d.client}
	}

	select {
	case <-time.After(resolved.SettleDelay):
	case <-ctx.Done():
		_ = d.Close()
		return nil, fault.Wrap(ctx.Err(), fault.Timeout, "connection to %s timed out", host)
	}
	log.Debug("connected")
	return d, nil
}

func (d *Driver) target() string {
	if _, _, err := net.SplitHostPort(d.host); err == nil {
		return d.host
	}
	return net.JoinHostPort(d.host, strconv.Itoa(d.cfg.Port))
}

func (d *Driver) openShell(ctx context.Context) error {
	t, err := NewSSHTransport(d.client)
	if err != nil {
		return err
	}
	d.shell, err = NewCliSession(ctx, t, NewSessionConfig(
		WithPrompt(d.platform.Prompt),
		WithCommands(d.platform.InitCommands...),
		WithTimeout(d.cfg.ReadTimeout),
	))
	return err
}

// Platform delivers the platform the driver was connected with.
func (d *Driver) Platform() Platform {
	return d.platform
}

// SendCommand runs cmd and delivers its output.
func (d *Driver) SendCommand(ctx context.Context, cmd string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, d.cfg.CommandTimeout)
	defer cancel()

	logging.WithTarget("cli", d.host).Debugf("sending %q", cmd)

	var out string
	var err error
	if d.shell != nil {
		out, err = d.shell.Send(cctx, cmd)
		out = stripEcho(out, cmd)
	} else {
		out, err = d.exec.Run(cctx, cmd)
	}
	if err != nil {
		if cctx.Err() != nil {
			return "", fault.Wrap(err, fault.Timeout, "command on %s timed out", d.host)
		}
		return "", sshutil.Classify(err, d.host)
	}
	return out, nil
}

// SendCommands runs every command of c in order and delivers the outputs
// joined by newlines. The first failure stops the run.
func (d *Driver) SendCommands(ctx context.Context, c Commander) (string, error) {
	cmds := c.Commands()
	outs := make([]string, 0, len(cmds))
	for _, cmd := range cmds {
		out, err := d.SendCommand(ctx, cmd)
		if err != nil {
			return strings.Join(outs, "\n"), err
		}
		outs = append(outs, out)
	}
	return strings.Join(outs, "\n"), nil
}

// Close releases the connection. Close can be called more than once.
func (d *Driver) Close() error {
	var err error
	d.closeOnce.Do(func() {
		if d.shell != nil {
			_ = d.shell.Close()
		}
		if d.client != nil {
			err = d.client.Close()
		}
	})
	return err
}

// stripEcho drops the echoed command some shells print before the output.
func stripEcho(out, cmd string) string {
	first, rest, found := strings.Cut(out, "\n")
	if strings.TrimSpace(first) == strings.TrimSpace(cmd) {
		if !found {
			return ""
		}
		return rest
	}
	return out
}
