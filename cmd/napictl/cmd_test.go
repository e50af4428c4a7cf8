package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	assert "github.com/stretchr/testify/require"

	"github.com/napi-network/napi/cli"
	"github.com/napi-network/napi/config"
	"github.com/napi-network/napi/driver"
	"github.com/napi-network/napi/fault"
)

// fakeShell answers commands from a table and records what it was sent.
type fakeShell struct {
	responses map[string]string
	sent      []string
}

func (s *fakeShell) SendCommand(ctx context.Context, cmd string) (string, error) {
	s.sent = append(s.sent, cmd)
	return s.responses[cmd], nil
}

func (s *fakeShell) SendCommands(ctx context.Context, c cli.Commander) (string, error) {
	s.sent = append(s.sent, c.Commands()...)
	return "", nil
}

func (s *fakeShell) Close() error { return nil }

func run(t *testing.T, sh driver.Shell, args ...string) (document, error) {
	t.Setenv(config.EnvUsername, "ops")
	out := &bytes.Buffer{}
	a := newApp(out)
	a.newDialers = func(*config.Config) (*driver.Dialers, error) {
		return &driver.Dialers{CLI: func(ctx context.Context, vendor, host string) (driver.Shell, error) {
			return sh, nil
		}}, nil
	}
	a.readPassword = func() (string, error) { return "secret", nil }

	root := newRootCmd(a)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())

	doc := document{}
	if out.Len() > 0 {
		assert.NoError(t, json.Unmarshal(out.Bytes(), &doc), out.String())
	}
	return doc, err
}

var nvidia = []string{"--fqdn", "leaf2.example.net", "--vendor", "nvidia"}

func TestMacs(t *testing.T) {
	sh := &fakeShell{responses: map[string]string{
		"net show bridge macs vlan 104 json": `[{"vlan":104,"mac":"52:9A:00:97:E4:1B","ifname":"swp1"}]`,
	}}
	doc, err := run(t, sh, append(nvidia, "macs", "--vlan", "104")...)
	assert.NoError(t, err)
	assert.Equal(t, 200, doc.Status)
	assert.Equal(t, "leaf2.example.net", doc.Device)
	assert.Equal(t, []interface{}{map[string]interface{}{
		"vlan": float64(104), "mac": "52:9a:00:97:e4:1b", "interface": "swp1",
	}}, doc.Result)
}

func TestStateGet(t *testing.T) {
	sh := &fakeShell{responses: map[string]string{
		"bridge -j vlan show dev swp1": `[{"ifname":"swp1","vlans":[{"vlan":10,"flags":["PVID"]},{"vlan":20},{"vlan":30}]}]`,
	}}
	doc, err := run(t, sh, append(nvidia, "state", "get", "-i", "swp1", "--untagged", "10", "--tagged", "20,30")...)
	assert.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"interface": "swp1", "state": "prod"}, doc.Result)
}

func TestStateSet(t *testing.T) {
	sh := &fakeShell{responses: map[string]string{
		"bridge -j vlan show dev swp1": `[{"ifname":"swp1","vlans":[{"vlan":10,"flags":["PVID"]}]}]`,
	}}
	doc, err := run(t, sh, append(nvidia, "--ask-pass", "state", "set", "setup", "-i", "swp1", "--setup", "4")...)
	assert.NoError(t, err)
	assert.Equal(t, 200, doc.Status)
	assert.Equal(t, []string{
		"bridge -j vlan show dev swp1",
		"sudo bridge vlan delete dev swp1 vid 10",
		"sudo bridge vlan add dev swp1 vid 4 pvid untagged",
	}, sh.sent)
}

func TestErrorsAreReported(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		status int
	}{
		{"no device", []string{"macs"}, 400},
		{"no vendor", []string{"--fqdn", "leaf1", "macs"}, 400},
		{"unsupported vendor", []string{"--fqdn", "leaf1", "--vendor", "juniper", "macs"}, 501},
		{"no interface", append(nvidia, "state", "get"), 400},
		{"bad vlans", append(nvidia, "state", "get", "-i", "swp1", "--tagged", "20-x"), 400},
		{"unsettable", append(nvidia, "state", "set", "l3", "-i", "swp1"), 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := run(t, &fakeShell{}, tt.args...)
			assert.Error(t, err)
			assert.Equal(t, tt.status, doc.Status)
			assert.Equal(t, tt.status, fault.StatusCode(err))
			assert.NotEmpty(t, doc.Error)
			assert.Nil(t, doc.Result)
		})
	}
}

func TestMissingConfigFile(t *testing.T) {
	doc, err := run(t, &fakeShell{}, append(nvidia, "-c", "/nonexistent/napi.yaml", "macs")...)
	assert.ErrorIs(t, err, fault.ErrConfiguration)
	assert.Equal(t, 400, doc.Status)
}
