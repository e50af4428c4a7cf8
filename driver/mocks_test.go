package driver

import (
	"context"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/ssh"

	"github.com/napi-network/napi/cli"
	"github.com/napi-network/napi/netconf/mocks"
	"github.com/napi-network/napi/netconf/ops"
)

type mockOpSession struct {
	mocks.Session
}

func (m *mockOpSession) Get(ctx context.Context, filter, result interface{}) error {
	return m.Called(ctx, filter, result).Error(0)
}

func (m *mockOpSession) GetConfig(ctx context.Context, source string, filter, result interface{}) error {
	return m.Called(ctx, source, filter, result).Error(0)
}

func (m *mockOpSession) EditConfig(ctx context.Context, target string, config interface{}, options ...ops.EditOption) error {
	return m.Called(ctx, target, config).Error(0)
}

func (m *mockOpSession) CloseSession(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var _ ops.Session = (*mockOpSession)(nil)

type mockShell struct {
	mock.Mock
}

func (m *mockShell) SendCommand(ctx context.Context, cmd string) (string, error) {
	ret := m.Called(ctx, cmd)
	return ret.String(0), ret.Error(1)
}

func (m *mockShell) SendCommands(ctx context.Context, c cli.Commander) (string, error) {
	ret := m.Called(ctx, c.Commands())
	return ret.String(0), ret.Error(1)
}

func (m *mockShell) Close() error {
	return m.Called().Error(0)
}

var _ Shell = (*mockShell)(nil)

func netconfDialers(s ops.Session) *Dialers {
	return &Dialers{
		Netconf: func(ctx context.Context, host string) (ops.Session, error) { return s, nil },
	}
}

func cliDialers(sh Shell) *Dialers {
	return &Dialers{
		CLI: func(ctx context.Context, vendor, host string) (Shell, error) { return sh, nil },
	}
}

func clientConfigFor(user, password string) *ssh.ClientConfig {
	return &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.Password(password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // nolint: gosec
	}
}
