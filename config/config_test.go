package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	assert "github.com/stretchr/testify/require"

	"github.com/napi-network/napi/fault"
)

const sample = `
username: netops
password: secret
netconf:
  port: 2830
  hello_timeout: 3s
cli:
  command_timeout: 1m
log:
  level: debug
`

func clearEnv(t *testing.T) {
	for _, k := range []string{EnvUsername, EnvPassword, EnvKeyFile} {
		t.Setenv(k, "")
		assert.NoError(t, os.Unsetenv(k))
	}
}

func TestParseMergesDefaults(t *testing.T) {
	clearEnv(t)
	c, err := Parse([]byte(sample))
	assert.NoError(t, err)

	assert.Equal(t, 2830, c.Netconf.Port)
	assert.Equal(t, 3*time.Second, c.Netconf.HelloTimeout)
	assert.Equal(t, 15*time.Second, c.Netconf.ConnectTimeout, "unset values come from the defaults")
	assert.Equal(t, []string{"ecdh-sha2-nistp256"}, c.Netconf.Algorithms.KeyExchanges)
	assert.Equal(t, time.Minute, c.CLI.CommandTimeout)
	assert.Equal(t, 22, c.CLI.Port)
	assert.Equal(t, 300*time.Millisecond, c.CLI.SettleDelay)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "text", c.Log.Format)
}

func TestParseRejectsBadInput(t *testing.T) {
	_, err := Parse([]byte("netconf: [1, 2"))
	assert.ErrorIs(t, err, fault.ErrConfiguration)

	_, err = Parse([]byte("netconf:\n  port: 70000\n"))
	assert.ErrorIs(t, err, fault.ErrConfiguration)

	_, err = Parse([]byte("log:\n  format: xml\n"))
	assert.ErrorIs(t, err, fault.ErrConfiguration)
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "napi.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	c, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, 2830, c.Netconf.Port)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, fault.ErrConfiguration)
}

func TestEnvironmentOverrides(t *testing.T) {
	env := map[string]string{EnvUsername: "robot", EnvPassword: "hunter2", EnvKeyFile: "/keys/id_rsa"}
	c := &Config{Username: "netops", KeyFiles: []string{"/keys/other"}}
	c.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	assert.Equal(t, "robot", c.Username)
	assert.Equal(t, "hunter2", c.Password)
	assert.Equal(t, []string{"/keys/id_rsa", "/keys/other"}, c.KeyFiles)
}

func TestSSHClientConfig(t *testing.T) {
	clearEnv(t)
	c, err := Parse([]byte(sample))
	assert.NoError(t, err)

	sshcfg, err := c.SSHClientConfig(c.Netconf.Algorithms)
	assert.NoError(t, err)
	assert.Equal(t, "netops", sshcfg.User)
	assert.Len(t, sshcfg.Auth, 1)
	assert.Equal(t, []string{"aes128-ctr"}, sshcfg.Ciphers)
	assert.Equal(t, []string{"hmac-sha2-256"}, sshcfg.MACs)
	assert.Equal(t, []string{"ssh-rsa"}, sshcfg.HostKeyAlgorithms)
	assert.NotNil(t, sshcfg.HostKeyCallback)

	sshcfg, err = c.SSHClientConfig(c.CLI.Algorithms)
	assert.NoError(t, err)
	assert.Empty(t, sshcfg.KeyExchanges, "library defaults")
}

func TestSSHClientConfigWithKeyFile(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	assert.NoError(t, err)
	path := filepath.Join(t.TempDir(), "id_rsa")
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	assert.NoError(t, os.WriteFile(path, pemBytes, 0o600))

	c := &Config{Username: "netops", KeyFiles: []string{path}, Password: "secret"}
	sshcfg, err := c.SSHClientConfig(Algorithms{})
	assert.NoError(t, err)
	assert.Len(t, sshcfg.Auth, 2)

	c.KeyFiles = []string{filepath.Join(t.TempDir(), "nope")}
	_, err = c.SSHClientConfig(Algorithms{})
	assert.ErrorIs(t, err, fault.ErrConfiguration)
}

func TestSSHClientConfigNeedsCredentials(t *testing.T) {
	_, err := (&Config{Username: "netops"}).SSHClientConfig(Algorithms{})
	assert.ErrorIs(t, err, fault.ErrConfiguration)
}

func TestDerivedConfigs(t *testing.T) {
	clearEnv(t)
	c, err := Parse([]byte(sample))
	assert.NoError(t, err)

	nc := c.NetconfSession()
	assert.Equal(t, 3*time.Second, nc.HelloTimeout)

	cc, err := c.CLIDriver()
	assert.NoError(t, err)
	assert.Equal(t, 22, cc.Port)
	assert.Equal(t, time.Minute, cc.CommandTimeout)
}
