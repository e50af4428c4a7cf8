// Package link holds the vendor-neutral model of an interface's L2 configuration
// and the reconciler that names it.
package link

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode is the L2 port mode.
type Mode string

// Port modes. A device may report others, which are kept verbatim.
const (
	ModeNone   Mode = ""
	ModeAccess Mode = "access"
	ModeTrunk  Mode = "trunk"
)

// LinkConfig is the L2 configuration of one interface.
type LinkConfig struct {
	Name string
	Mode Mode
	// PVID is the native/access VLAN; 0 means none.
	PVID int
	// TrunkAllowedVLANs is only meaningful in trunk mode.
	TrunkAllowedVLANs []int
	// L2Disabled is set when the device reports the port as routed.
	L2Disabled bool
}

// Access returns an access-port config.
func Access(name string, pvid int) LinkConfig {
	return LinkConfig{Name: name, Mode: ModeAccess, PVID: pvid}
}

// Trunk returns a trunk-port config.
func Trunk(name string, pvid int, allowed []int) LinkConfig {
	return LinkConfig{Name: name, Mode: ModeTrunk, PVID: pvid, TrunkAllowedVLANs: normalize(allowed)}
}

// Equal compares name, mode, PVID and the set of trunk VLANs.
func (c LinkConfig) Equal(o LinkConfig) bool {
	if c.Name != o.Name || c.Mode != o.Mode || c.PVID != o.PVID || c.L2Disabled != o.L2Disabled {
		return false
	}
	if c.Mode != ModeTrunk {
		return true
	}
	a, b := normalize(c.TrunkAllowedVLANs), normalize(o.TrunkAllowedVLANs)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Describe renders the config the way unknown states report it.
func (c LinkConfig) Describe() string {
	mode := string(c.Mode)
	if mode == "" {
		mode = "None"
	}
	pvid := "None"
	if c.PVID != 0 {
		pvid = strconv.Itoa(c.PVID)
	}
	return fmt.Sprintf("mode=%s, pvid=%s, allowed vlans=[%s]", mode, pvid,
		strings.ReplaceAll(FormatVLANs(c.TrunkAllowedVLANs), ",", ", "))
}

func (c LinkConfig) String() string {
	return c.Name + ": " + c.Describe()
}
