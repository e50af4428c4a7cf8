package fdb

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// CumulusCommand lists the bridge MAC table, restricted to vlan when it is not
// empty, otherwise to dynamically learned entries.
func CumulusCommand(vlan string) string {
	if vlan != "" {
		return "net show bridge macs vlan " + vlan + " json"
	}
	return "net show bridge macs dynamic json"
}

type cumulusEntry struct {
	VLAN   int    `json:"vlan"`
	MAC    string `json:"mac"`
	IfName string `json:"ifname"`
}

// DecodeCumulus parses the output of CumulusCommand. Empty output is an empty
// table.
func DecodeCumulus(output string) ([]Entry, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return []Entry{}, nil
	}

	var raw []cumulusEntry
	if err := json.Unmarshal([]byte(output), &raw); err != nil {
		return nil, errors.Wrap(err, "unexpected mac table output")
	}
	entries := make([]Entry, 0, len(raw))
	for _, e := range raw {
		mac, err := NormalizeMAC(e.MAC)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{VLAN: e.VLAN, MAC: mac, Interface: e.IfName})
	}
	return entries, nil
}
