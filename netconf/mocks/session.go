// Package mocks holds testify mocks of the netconf client interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/napi-network/napi/netconf/client"
	"github.com/napi-network/napi/netconf/common"
)

// Session is a mock type for the client.Session type
type Session struct {
	mock.Mock
}

// Close provides a mock function with given fields:
func (_m *Session) Close() {
	_m.Called()
}

// Execute provides a mock function with given fields: ctx, req
func (_m *Session) Execute(ctx context.Context, req common.Request) (*common.RPCReply, error) {
	ret := _m.Called(ctx, req)

	var r0 *common.RPCReply
	if rf, ok := ret.Get(0).(func(context.Context, common.Request) *common.RPCReply); ok {
		r0 = rf(ctx, req)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*common.RPCReply)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, common.Request) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ID provides a mock function with given fields:
func (_m *Session) ID() uint64 {
	ret := _m.Called()
	return ret.Get(0).(uint64)
}

// ServerCapabilities provides a mock function with given fields:
func (_m *Session) ServerCapabilities() []string {
	ret := _m.Called()

	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}
	return r0
}

// State provides a mock function with given fields:
func (_m *Session) State() client.State {
	ret := _m.Called()
	return ret.Get(0).(client.State)
}

// Target provides a mock function with given fields:
func (_m *Session) Target() string {
	ret := _m.Called()
	return ret.String(0)
}

var _ client.Session = (*Session)(nil)
