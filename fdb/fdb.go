// Package fdb models MAC forwarding table entries and the vendor payloads
// they are read from.
package fdb

import (
	"encoding/hex"
	"net"
	"strings"

	"github.com/pkg/errors"
)

// Entry is one learned MAC address.
type Entry struct {
	VLAN      int    `json:"vlan"`
	MAC       string `json:"mac"`
	Interface string `json:"interface"`
}

// NormalizeMAC renders a MAC address as lower-case colon separated octets.
// Dotted (529a.0097.e41b), dash grouped (529a-0097-e41b), dash or colon
// paired and bare forms are accepted.
func NormalizeMAC(s string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		switch r {
		case '-', '.', ':':
			return -1
		}
		return r
	}, strings.TrimSpace(s))

	if len(digits) != 12 {
		return "", errors.Errorf("invalid mac address %q", s)
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		return "", errors.Errorf("invalid mac address %q", s)
	}
	return net.HardwareAddr(b).String(), nil
}
