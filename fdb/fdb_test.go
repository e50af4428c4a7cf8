package fdb

import (
	"encoding/xml"
	"testing"

	assert "github.com/stretchr/testify/require"
)

func TestNormalizeMAC(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"529a-0097-e41b", "52:9a:00:97:e4:1b"},
		{"529A.0097.E41B", "52:9a:00:97:e4:1b"},
		{"52-9a-00-97-e4-1b", "52:9a:00:97:e4:1b"},
		{"52:9A:00:97:E4:1B", "52:9a:00:97:e4:1b"},
		{" 529a0097e41b ", "52:9a:00:97:e4:1b"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeMAC(tt.in)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeMACRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "529a-0097", "zz9a-0097-e41b", "529a-0097-e41b-0000"} {
		_, err := NormalizeMAC(in)
		assert.Error(t, err, in)
	}
}

func TestCEFilter(t *testing.T) {
	b, err := xml.Marshal(CEFilter("104"))
	assert.NoError(t, err)
	assert.Equal(t, `<mac xmlns="http://www.huawei.com/netconf/vrp/huawei-mac"><vlanFdbDynamics><vlanFdbDynamic>`+
		`<vlanId>104</vlanId><macAddress></macAddress><outIfName></outIfName>`+
		`</vlanFdbDynamic></vlanFdbDynamics></mac>`, string(b))
}

func TestDecodeCE(t *testing.T) {
	m := &CEMac{}
	assert.NoError(t, xml.Unmarshal([]byte(`<mac xmlns="http://www.huawei.com/netconf/vrp/huawei-mac"><vlanFdbDynamics>
		<vlanFdbDynamic><vlanId>104</vlanId><macAddress>529a-0097-e41b</macAddress><outIfName>100GE1/0/1:1</outIfName></vlanFdbDynamic>
		<vlanFdbDynamic><vlanId>106</vlanId><macAddress>629a-0097-e41c</macAddress><outIfName>100GE1/0/1:5</outIfName></vlanFdbDynamic>
		</vlanFdbDynamics></mac>`), m))

	entries, err := DecodeCE(m)
	assert.NoError(t, err)
	assert.Equal(t, []Entry{
		{VLAN: 104, MAC: "52:9a:00:97:e4:1b", Interface: "100GE1/0/1:1"},
		{VLAN: 106, MAC: "62:9a:00:97:e4:1c", Interface: "100GE1/0/1:5"},
	}, entries)
}

func TestDecodeCEEmpty(t *testing.T) {
	_, err := DecodeCE(&CEMac{})
	assert.ErrorIs(t, err, ErrNoData)

	m := &CEMac{}
	assert.NoError(t, xml.Unmarshal([]byte(`<mac xmlns="http://www.huawei.com/netconf/vrp/huawei-mac"/>`), m))
	entries, err := DecodeCE(m)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCumulusCommand(t *testing.T) {
	assert.Equal(t, "net show bridge macs vlan 104 json", CumulusCommand("104"))
	assert.Equal(t, "net show bridge macs dynamic json", CumulusCommand(""))
}

func TestDecodeCumulus(t *testing.T) {
	entries, err := DecodeCumulus(`[{"vlan":104,"mac":"52:9A:00:97:E4:1B","ifname":"swp1","flags":[]},
		{"vlan":106,"mac":"62:9a:00:97:e4:1c","ifname":"swp5"}]`)
	assert.NoError(t, err)
	assert.Equal(t, []Entry{
		{VLAN: 104, MAC: "52:9a:00:97:e4:1b", Interface: "swp1"},
		{VLAN: 106, MAC: "62:9a:00:97:e4:1c", Interface: "swp5"},
	}, entries)

	entries, err = DecodeCumulus("")
	assert.NoError(t, err)
	assert.Empty(t, entries)
	assert.NotNil(t, entries)

	_, err = DecodeCumulus("Usage: net show bridge macs")
	assert.Error(t, err)
}
