package cli

import (
	"strings"

	"github.com/napi-network/napi/fault"
)

// Platform describes how commands reach a vendor's shell.
type Platform struct {
	// Name of the platform profile.
	Name string
	// Interactive platforms are driven through a prompt on a pty shell;
	// the others run each command on its own exec channel.
	Interactive bool
	// Prompt is the regular expression matching the shell prompt.
	Prompt string
	// InitCommands are run once the prompt has been seen.
	InitCommands []string
}

var platforms = map[string]Platform{
	"huawei": {
		Name:         "huawei_vrp",
		Interactive:  true,
		Prompt:       `^[<\[]\S+[>\]]\s*$`,
		InitCommands: []string{"screen-length 0 temporary"},
	},
	"nvidia": {
		Name: "generic",
	},
}

// PlatformFor delivers the platform of vendor.
func PlatformFor(vendor string) (Platform, error) {
	p, ok := platforms[strings.ToLower(vendor)]
	if !ok {
		return Platform{}, fault.New(fault.UnsupportedVendor, "unsupported vendor %q", vendor)
	}
	return p, nil
}
