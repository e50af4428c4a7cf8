// Package ce translates link configs to and from the Huawei CloudEngine
// huawei-ethernet NETCONF model.
package ce

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/napi-network/napi/link"
)

// Namespace of the huawei-ethernet model.
const Namespace = "http://www.huawei.com/netconf/vrp/huawei-ethernet"

// Values of the l2Enable leaf.
const (
	L2Enable  = "enable"
	L2Disable = "disable"
)

// ErrNoInterface is returned when a reply holds no data for the interface.
var ErrNoInterface = errors.New("interface not present in reply")

// Ethernet is the root of the huawei-ethernet subtree, used both as an
// edit-config payload and as a get-config filter and result.
type Ethernet struct {
	XMLName    xml.Name     `xml:"http://www.huawei.com/netconf/vrp/huawei-ethernet ethernet"`
	Interfaces []EthernetIf `xml:"ethernetIfs>ethernetIf"`
}

// EthernetIf is one ethernetIf list entry.
type EthernetIf struct {
	Name        string       `xml:"ifName"`
	L2Enable    string       `xml:"l2Enable"`
	L2Attribute *L2Attribute `xml:"l2Attribute"`
}

// L2Attribute holds the port mode leaves.
type L2Attribute struct {
	LinkType   string `xml:"linkType,omitempty"`
	PVID       string `xml:"pvid,omitempty"`
	TrunkVlans string `xml:"trunkVlans,omitempty"`
}

// Encode renders c as an edit-config payload.
func Encode(c link.LinkConfig) *Ethernet {
	attr := &L2Attribute{}
	if c.Mode != link.ModeNone {
		attr.LinkType = string(c.Mode)
		attr.PVID = strconv.Itoa(c.PVID)
	}
	if c.Mode == link.ModeTrunk {
		attr.TrunkVlans = link.FormatVLANs(c.TrunkAllowedVLANs)
	}
	return &Ethernet{Interfaces: []EthernetIf{{Name: c.Name, L2Enable: L2Enable, L2Attribute: attr}}}
}

// ReadFilter is the subtree filter selecting the L2 leaves of one interface.
func ReadFilter(name string) *Ethernet {
	return &Ethernet{Interfaces: []EthernetIf{{Name: name, L2Attribute: &L2Attribute{}}}}
}

// Decode extracts the config of the named interface from a get-config result.
func Decode(e *Ethernet, name string) (link.LinkConfig, error) {
	if e == nil {
		return link.LinkConfig{}, ErrNoInterface
	}
	for _, ifc := range e.Interfaces {
		if !strings.EqualFold(strings.TrimSpace(ifc.Name), name) {
			continue
		}
		return decodeInterface(ifc, name)
	}
	return link.LinkConfig{}, ErrNoInterface
}

func decodeInterface(ifc EthernetIf, name string) (link.LinkConfig, error) {
	c := link.LinkConfig{Name: name}
	if strings.TrimSpace(ifc.L2Enable) == L2Disable {
		c.L2Disabled = true
		return c, nil
	}
	if ifc.L2Attribute == nil {
		return c, nil
	}

	c.Mode = link.Mode(strings.TrimSpace(ifc.L2Attribute.LinkType))
	if pvid := strings.TrimSpace(ifc.L2Attribute.PVID); pvid != "" {
		v, err := strconv.Atoi(pvid)
		if err != nil {
			return c, errors.Wrapf(err, "invalid pvid %q on %s", pvid, name)
		}
		c.PVID = v
	}
	if c.Mode == link.ModeTrunk {
		vlans, err := link.ExpandVLANs(ifc.L2Attribute.TrunkVlans)
		if err != nil {
			return c, errors.Wrapf(err, "invalid trunk vlans on %s", name)
		}
		c.TrunkAllowedVLANs = vlans
	}
	return c, nil
}
