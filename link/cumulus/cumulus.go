// Package cumulus translates link configs to and from Linux bridge VLAN
// membership as reported and changed by iproute2 on NVIDIA Cumulus switches.
package cumulus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/napi-network/napi/link"
)

// ErrNoInterface is returned when the device reports no bridge membership for
// the interface.
var ErrNoInterface = errors.New("interface not present in bridge")

const flagPVID = "PVID"

// ShowCommand reads the VLAN membership of an interface as JSON.
func ShowCommand(name string) string {
	return "bridge -j vlan show dev " + name
}

// Member is one VLAN (or VLAN range) entry of a port.
type Member struct {
	VID   int      `json:"vlan"`
	End   int      `json:"vlanEnd,omitempty"`
	Flags []string `json:"flags,omitempty"`
}

// PVID reports whether the entry carries the port VLAN id flag.
func (m Member) PVID() bool {
	for _, f := range m.Flags {
		if f == flagPVID {
			return true
		}
	}
	return false
}

func (m Member) vids() []int {
	if m.End <= m.VID {
		return []int{m.VID}
	}
	vids := make([]int, 0, m.End-m.VID+1)
	for v := m.VID; v <= m.End; v++ {
		vids = append(vids, v)
	}
	return vids
}

func (m Member) spec() string {
	if m.End > m.VID {
		return fmt.Sprintf("%d-%d", m.VID, m.End)
	}
	return fmt.Sprint(m.VID)
}

// Membership is the bridge VLAN membership of one port.
type Membership struct {
	Name  string   `json:"ifname"`
	VLANs []Member `json:"vlans"`
}

// ParseMembership parses the output of ShowCommand. Both the list form of
// current iproute2 and the older object-keyed form are accepted.
func ParseMembership(name, output string) (*Membership, error) {
	out := bytes.TrimSpace([]byte(output))
	if len(out) == 0 || strings.Contains(output, "Cannot find device") {
		return nil, ErrNoInterface
	}

	switch out[0] {
	case '[':
		var ports []Membership
		if err := json.Unmarshal(out, &ports); err != nil {
			return nil, errors.Wrap(err, "unexpected bridge vlan output")
		}
		for i := range ports {
			if ports[i].Name == name {
				return &ports[i], nil
			}
		}
		if len(ports) == 1 && ports[0].Name == "" {
			ports[0].Name = name
			return &ports[0], nil
		}
	case '{':
		var ports map[string][]Member
		if err := json.Unmarshal(out, &ports); err != nil {
			return nil, errors.Wrap(err, "unexpected bridge vlan output")
		}
		if vlans, ok := ports[name]; ok {
			return &Membership{Name: name, VLANs: vlans}, nil
		}
	default:
		return nil, errors.Errorf("unexpected bridge vlan output: %.64s", output)
	}
	return nil, ErrNoInterface
}

// Decode derives the link config from bridge membership. A single VLAN that
// is also the PVID is an access port; anything else is a trunk whose allowed
// set includes the PVID.
func Decode(m *Membership) link.LinkConfig {
	c := link.LinkConfig{Name: m.Name}
	var vids []int
	for _, e := range m.VLANs {
		if e.PVID() && c.PVID == 0 {
			c.PVID = e.VID
		}
		vids = append(vids, e.vids()...)
	}

	switch {
	case len(vids) == 0:
		c.Mode = link.ModeNone
	case len(vids) == 1 && c.PVID != 0:
		c.Mode = link.ModeAccess
	default:
		c.Mode = link.ModeTrunk
		c.TrunkAllowedVLANs = link.SortedVLANs(vids)
	}
	return c
}

// Diff moves a port from Current to Desired membership.
type Diff struct {
	Desired link.LinkConfig
	Current *Membership
}

// Commands removes every current VLAN, then adds the desired ones with the
// PVID last.
func (d Diff) Commands() []string {
	name := d.Desired.Name
	var cmds []string
	if d.Current != nil {
		for _, e := range d.Current.VLANs {
			cmds = append(cmds, fmt.Sprintf("sudo bridge vlan delete dev %s vid %s", name, e.spec()))
		}
	}

	switch d.Desired.Mode {
	case link.ModeAccess:
		cmds = append(cmds, pvidCommand(name, d.Desired.PVID))
	case link.ModeTrunk:
		for _, v := range d.Desired.TrunkAllowedVLANs {
			cmds = append(cmds, fmt.Sprintf("sudo bridge vlan add dev %s vid %d", name, v))
		}
		cmds = append(cmds, pvidCommand(name, d.Desired.PVID))
	}
	return cmds
}

func pvidCommand(name string, pvid int) string {
	return fmt.Sprintf("sudo bridge vlan add dev %s vid %d pvid untagged", name, pvid)
}
