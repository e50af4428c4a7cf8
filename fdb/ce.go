package fdb

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// CEMacNamespace is the namespace of the huawei-mac model.
const CEMacNamespace = "http://www.huawei.com/netconf/vrp/huawei-mac"

// ErrNoData is returned when a reply holds no MAC table at all.
var ErrNoData = errors.New("no mac-address data in reply")

// CEMac is the root of the huawei-mac subtree.
type CEMac struct {
	XMLName xml.Name         `xml:"http://www.huawei.com/netconf/vrp/huawei-mac mac"`
	Entries []CEDynamicEntry `xml:"vlanFdbDynamics>vlanFdbDynamic"`
}

// CEDynamicEntry is one dynamically learned entry.
type CEDynamicEntry struct {
	VlanID     string `xml:"vlanId"`
	MacAddress string `xml:"macAddress"`
	OutIfName  string `xml:"outIfName"`
}

// CEFilter selects dynamic entries, restricted to vlan when it is not empty.
func CEFilter(vlan string) *CEMac {
	return &CEMac{Entries: []CEDynamicEntry{{VlanID: vlan}}}
}

// DecodeCE converts a get result into entries. A result that never matched a
// mac element yields ErrNoData.
func DecodeCE(m *CEMac) ([]Entry, error) {
	if m == nil || m.XMLName.Local == "" {
		return nil, ErrNoData
	}
	entries := make([]Entry, 0, len(m.Entries))
	for _, e := range m.Entries {
		vlan, err := strconv.Atoi(strings.TrimSpace(e.VlanID))
		if err != nil {
			return nil, errors.Errorf("invalid vlan %q in mac table", e.VlanID)
		}
		mac, err := NormalizeMAC(e.MacAddress)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{VLAN: vlan, MAC: mac, Interface: strings.TrimSpace(e.OutIfName)})
	}
	return entries, nil
}
