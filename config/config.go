// Package config loads the credentials and transport settings of the switch
// management core.
package config

import (
	"os"
	"time"

	"github.com/imdario/mergo"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/napi-network/napi/fault"
)

// Environment variables that override the file.
const (
	EnvUsername = "NAPI_USERNAME"
	EnvPassword = "NAPI_PASSWORD"
	EnvKeyFile  = "NAPI_KEY_FILE"
)

// Config is the top level configuration.
type Config struct {
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	KeyFiles []string `yaml:"key_files"`

	Netconf Netconf `yaml:"netconf"`
	CLI     CLI     `yaml:"cli"`
	Log     Log     `yaml:"log"`
}

// Algorithms restricts the SSH negotiation. Empty lists leave the library
// defaults in place.
type Algorithms struct {
	KeyExchanges []string `yaml:"key_exchanges"`
	HostKeys     []string `yaml:"host_keys"`
	Ciphers      []string `yaml:"ciphers"`
	MACs         []string `yaml:"macs"`
}

// Netconf configures NETCONF sessions.
type Netconf struct {
	Port           int           `yaml:"port"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	HelloTimeout   time.Duration `yaml:"hello_timeout"`
	RPCTimeout     time.Duration `yaml:"rpc_timeout"`
	Algorithms     Algorithms    `yaml:"algorithms"`
}

// CLI configures shell sessions.
type CLI struct {
	Port           int           `yaml:"port"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	CommandTimeout time.Duration `yaml:"command_timeout"`
	SettleDelay    time.Duration `yaml:"settle_delay"`
	Algorithms     Algorithms    `yaml:"algorithms"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default delivers the built-in configuration.
func Default() *Config {
	return &Config{
		Netconf: Netconf{
			Port:           830,
			ConnectTimeout: 15 * time.Second,
			HelloTimeout:   15 * time.Second,
			RPCTimeout:     60 * time.Second,
			Algorithms: Algorithms{
				KeyExchanges: []string{"ecdh-sha2-nistp256"},
				HostKeys:     []string{"ssh-rsa"},
				Ciphers:      []string{"aes128-ctr"},
				MACs:         []string{"hmac-sha2-256"},
			},
		},
		CLI: CLI{
			Port:           22,
			ConnectTimeout: 15 * time.Second,
			CommandTimeout: 15 * time.Second,
			SettleDelay:    300 * time.Millisecond,
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// Load reads the file at path. An empty path yields the defaults. In both
// cases the environment overrides are applied.
func Load(path string) (*Config, error) {
	if path == "" {
		return Resolve(&Config{})
	}
	b, err := os.ReadFile(path) // nolint: gosec
	if err != nil {
		return nil, fault.Wrap(err, fault.Configuration, "cannot read config %s", path)
	}
	return Parse(b)
}

// Parse decodes a YAML document and resolves it.
func Parse(b []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fault.Wrap(err, fault.Configuration, "invalid config")
	}
	return Resolve(c)
}

// Resolve fills every unset value of c from the defaults, applies the
// environment and validates the result.
func Resolve(c *Config) (*Config, error) {
	if err := mergo.Merge(c, Default()); err != nil {
		return nil, errors.Wrap(err, "failed to apply defaults")
	}
	c.applyEnv(os.LookupEnv)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvUsername); ok {
		c.Username = v
	}
	if v, ok := lookup(EnvPassword); ok {
		c.Password = v
	}
	if v, ok := lookup(EnvKeyFile); ok && v != "" {
		c.KeyFiles = append([]string{v}, c.KeyFiles...)
	}
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	for name, port := range map[string]int{"netconf": c.Netconf.Port, "cli": c.CLI.Port} {
		if port < 1 || port > 65535 {
			return fault.New(fault.Configuration, "%s port %d out of range", name, port)
		}
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fault.New(fault.Configuration, "unknown log format %q", c.Log.Format)
	}
	return nil
}
