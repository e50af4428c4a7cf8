package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/napi-network/napi/config"
	"github.com/napi-network/napi/driver"
	"github.com/napi-network/napi/fault"
	"github.com/napi-network/napi/inventory"
	"github.com/napi-network/napi/link"
	"github.com/napi-network/napi/logging"
	"github.com/napi-network/napi/netconf/client"
)

// app holds the flags and collaborators shared by every command.
type app struct {
	out io.Writer

	configPath string
	askPass    bool
	verbose    bool

	device inventory.Device
	ifc    inventory.Interface
	tagged string

	// Replaced in tests.
	newDialers   func(*config.Config) (*driver.Dialers, error)
	readPassword func() (string, error)
}

func newApp(out io.Writer) *app {
	return &app{
		out:          out,
		newDialers:   driver.NewDialers,
		readPassword: promptPassword,
	}
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fault.Wrap(err, fault.Configuration, "cannot read password")
	}
	return string(b), nil
}

// dialers loads the configuration and delivers the session dialers.
func (a *app) dialers() (*driver.Dialers, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if a.askPass {
		if cfg.Password, err = a.readPassword(); err != nil {
			return nil, err
		}
	}
	level := cfg.Log.Level
	if a.verbose {
		level = "debug"
	}
	if err = logging.Configure(level, cfg.Log.Format); err != nil {
		return nil, fault.Wrap(err, fault.Configuration, "invalid log level %q", level)
	}
	return a.newDialers(cfg)
}

func (a *app) checkDevice() error {
	if a.device.FQDN == "" && a.device.IP == "" {
		return fault.New(fault.Configuration, "either --fqdn or --ip is required")
	}
	if a.device.Vendor == "" {
		return fault.New(fault.Configuration, "--vendor is required")
	}
	if a.device.FQDN == "" {
		a.device.FQDN = a.device.IP
	}
	return nil
}

func (a *app) checkInterface() error {
	if err := a.checkDevice(); err != nil {
		return err
	}
	if strings.TrimSpace(a.ifc.Name) == "" {
		return fault.New(fault.Configuration, "--interface is required")
	}
	if a.tagged != "" {
		vlans, err := link.ExpandVLANs(a.tagged)
		if err != nil {
			return fault.Wrap(err, fault.Configuration, "invalid --tagged %q", a.tagged)
		}
		a.ifc.Vlans.Tagged = vlans
	}
	return nil
}

// document is the JSON shape of every result.
type document struct {
	Status int         `json:"status"`
	Device string      `json:"device,omitempty"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
	Detail string      `json:"detail,omitempty"`
}

// report writes the outcome of a command and hands err back to cobra.
func (a *app) report(result interface{}, err error) error {
	doc := document{Status: 200, Device: a.device.FQDN, Result: result}
	if err != nil {
		doc = document{
			Status: fault.StatusCode(err),
			Device: a.device.FQDN,
			Error:  fault.PublicMessage(err),
		}
		if a.verbose {
			doc.Detail = fmt.Sprintf("%+v", err)
		}
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(doc); encErr != nil {
		return encErr
	}
	return err
}

// context carries the diagnostic NETCONF trace when verbose.
func (a *app) context(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if a.verbose {
		ctx = client.WithClientTrace(ctx, client.DiagnosticLoggingHooks)
	}
	return ctx
}
