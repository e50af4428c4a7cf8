package config

import (
	"os"

	"golang.org/x/crypto/ssh"

	"github.com/napi-network/napi/cli"
	"github.com/napi-network/napi/fault"
	"github.com/napi-network/napi/netconf/client"
)

// SSHClientConfig builds the client configuration for the given algorithm
// set. Host keys are not verified.
func (c *Config) SSHClientConfig(alg Algorithms) (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod
	if len(c.KeyFiles) > 0 {
		signers := make([]ssh.Signer, 0, len(c.KeyFiles))
		for _, f := range c.KeyFiles {
			pem, err := os.ReadFile(f) // nolint: gosec
			if err != nil {
				return nil, fault.Wrap(err, fault.Configuration, "cannot read key file %s", f)
			}
			signer, err := ssh.ParsePrivateKey(pem)
			if err != nil {
				return nil, fault.Wrap(err, fault.Configuration, "invalid key file %s", f)
			}
			signers = append(signers, signer)
		}
		auth = append(auth, ssh.PublicKeys(signers...))
	}
	if c.Password != "" {
		auth = append(auth, ssh.Password(c.Password))
	}
	if c.Username == "" || len(auth) == 0 {
		return nil, fault.New(fault.Configuration, "no credentials configured")
	}

	return &ssh.ClientConfig{
		User: c.Username,
		Auth: auth,
		Config: ssh.Config{
			KeyExchanges: alg.KeyExchanges,
			Ciphers:      alg.Ciphers,
			MACs:         alg.MACs,
		},
		HostKeyAlgorithms: alg.HostKeys,
		HostKeyCallback:   ssh.InsecureIgnoreHostKey(), // nolint: gosec
	}, nil
}

// NetconfSession delivers the netconf session configuration.
func (c *Config) NetconfSession() *client.Config {
	return &client.Config{
		ConnectTimeout: c.Netconf.ConnectTimeout,
		HelloTimeout:   c.Netconf.HelloTimeout,
	}
}

// CLIDriver delivers the shell driver configuration.
func (c *Config) CLIDriver() (*cli.Config, error) {
	sshcfg, err := c.SSHClientConfig(c.CLI.Algorithms)
	if err != nil {
		return nil, err
	}
	return &cli.Config{
		SSH:            sshcfg,
		Port:           c.CLI.Port,
		ConnectTimeout: c.CLI.ConnectTimeout,
		CommandTimeout: c.CLI.CommandTimeout,
		SettleDelay:    c.CLI.SettleDelay,
	}, nil
}
