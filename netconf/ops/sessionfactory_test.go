package ops

import (
	"context"
	"testing"

	assert "github.com/stretchr/testify/require"

	"github.com/napi-network/napi/fault"
	"github.com/napi-network/napi/netconf/testserver"
)

func TestSessionAgainstServer(t *testing.T) {
	ts := testserver.NewTestNetconfServer(t).
		WithRequestHandler(testserver.DataReplyHandler(`<element attr1="ABC"/>`)).
		WithRequestHandler(testserver.OkRequestHandler).
		WithRequestHandler(testserver.FailingRequestHandler)
	defer ts.Close()

	s, err := NewSession(context.Background(), ts.ClientConfig(), ts.Address())
	assert.NoError(t, err)
	defer s.Close()

	result := &Element{}
	assert.NoError(t, s.Get(context.Background(), `<element/>`, result))
	assert.Equal(t, "ABC", result.Attr1)

	assert.NoError(t, s.EditConfig(context.Background(), "", `<element attr1="DEF"/>`))
	req := ts.LastHandler().LastRequest()
	assert.Equal(t, "edit-config", req.Request.XMLName.Local)
	assert.Equal(t, `<target><running/></target><config><element attr1="DEF"/></config>`, req.Request.Body)

	err = s.EditConfig(context.Background(), "", `<element/>`)
	assert.ErrorIs(t, err, fault.ErrRPC)

	assert.NoError(t, s.CloseSession(context.Background()))
}
