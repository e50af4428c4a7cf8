// Package inventory defines the device and interface values supplied by callers.
// Lookup of these values is the caller's concern.
package inventory

import "strings"

// Device is a managed switch.
type Device struct {
	FQDN     string `json:"fqdn" yaml:"fqdn"`
	Vendor   string `json:"vendor" yaml:"vendor"`
	Model    string `json:"model,omitempty" yaml:"model,omitempty"`
	Tenant   string `json:"tenant,omitempty" yaml:"tenant,omitempty"`
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
	IP       string `json:"ip,omitempty" yaml:"ip,omitempty"`
}

// Name is the first label of the FQDN.
func (d Device) Name() string {
	name, _, _ := strings.Cut(d.FQDN, ".")
	return name
}

// Address is the host used to reach the device: its IP when known, else its FQDN.
func (d Device) Address() string {
	if d.IP != "" {
		return d.IP
	}
	return d.FQDN
}

// Vlans holds the VLAN assignment of an interface. Zero means not set.
type Vlans struct {
	Setup    int   `json:"setup,omitempty" yaml:"setup,omitempty"`
	Untagged int   `json:"untagged,omitempty" yaml:"untagged,omitempty"`
	Tagged   []int `json:"tagged,omitempty" yaml:"tagged,omitempty"`
}

// Interface is a switch port and its intended VLANs.
type Interface struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Vlans       Vlans  `json:"vlans" yaml:"vlans"`
}
