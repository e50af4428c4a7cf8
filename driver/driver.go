// Package driver is the vendor-neutral facade: MAC table reads and named
// link-state reads and writes, dispatched by device vendor.
package driver

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/napi-network/napi/cli"
	"github.com/napi-network/napi/config"
	"github.com/napi-network/napi/fault"
	"github.com/napi-network/napi/fdb"
	"github.com/napi-network/napi/inventory"
	"github.com/napi-network/napi/link"
	"github.com/napi-network/napi/logging"
	"github.com/napi-network/napi/netconf/ops"
)

// MacTableDriver reads the learned MAC addresses of a device.
type MacTableDriver interface {
	// GetMacs lists the MAC table, restricted to vlan unless it is empty.
	GetMacs(ctx context.Context, vlan string) ([]fdb.Entry, error)
}

// LinkStateDriver reads and sets the named state of one interface.
type LinkStateDriver interface {
	GetState(ctx context.Context) (link.State, error)
	SetState(ctx context.Context, name link.StateName) error
}

// Shell runs commands on a device.
type Shell interface {
	SendCommand(ctx context.Context, cmd string) (string, error)
	SendCommands(ctx context.Context, c cli.Commander) (string, error)
	Close() error
}

// Dialers open the sessions the drivers work through. Every call opens a
// new session.
type Dialers struct {
	Netconf func(ctx context.Context, host string) (ops.Session, error)
	CLI     func(ctx context.Context, vendor, host string) (Shell, error)
	// RPCTimeout bounds every facade call when set.
	RPCTimeout time.Duration
}

// NewDialers delivers dialers configured from cfg.
func NewDialers(cfg *config.Config) (*Dialers, error) {
	ncSSH, err := cfg.SSHClientConfig(cfg.Netconf.Algorithms)
	if err != nil {
		return nil, err
	}
	cliCfg, err := cfg.CLIDriver()
	if err != nil {
		return nil, err
	}
	ncCfg := cfg.NetconfSession()
	ncPort := strconv.Itoa(cfg.Netconf.Port)

	return &Dialers{
		Netconf: func(ctx context.Context, host string) (ops.Session, error) {
			return ops.NewSessionWithConfig(ctx, ncSSH, net.JoinHostPort(host, ncPort), ncCfg)
		},
		CLI: func(ctx context.Context, vendor, host string) (Shell, error) {
			return cli.Connect(ctx, vendor, host, cliCfg)
		},
		RPCTimeout: cfg.Netconf.RPCTimeout,
	}, nil
}

func (d *Dialers) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.RPCTimeout > 0 {
		return context.WithTimeout(ctx, d.RPCTimeout)
	}
	return context.WithCancel(ctx)
}

var macTableDrivers = map[string]func(inventory.Device, *Dialers) MacTableDriver{
	"huawei": newCEMacTable,
	"nvidia": newCumulusMacTable,
}

var linkStateDrivers = map[string]func(inventory.Device, inventory.Interface, *Dialers) LinkStateDriver{
	"huawei": newCELinkState,
	"nvidia": newCumulusLinkState,
}

// NewMacTableDriver delivers the MAC table driver for the vendor of dev.
func NewMacTableDriver(dev inventory.Device, dialers *Dialers) (MacTableDriver, error) {
	newDriver, ok := macTableDrivers[strings.ToLower(dev.Vendor)]
	if !ok {
		return nil, fault.New(fault.UnsupportedVendor, "unsupported vendor %q", dev.Vendor)
	}
	return newDriver(dev, dialers), nil
}

// NewLinkStateDriver delivers the link state driver of ifc for the vendor of dev.
func NewLinkStateDriver(dev inventory.Device, ifc inventory.Interface, dialers *Dialers) (LinkStateDriver, error) {
	newDriver, ok := linkStateDrivers[strings.ToLower(dev.Vendor)]
	if !ok {
		return nil, fault.New(fault.UnsupportedVendor, "unsupported vendor %q", dev.Vendor)
	}
	return newDriver(dev, ifc, dialers), nil
}

// DesiredStates derives the settable states of ifc. prod is a trunk of the
// tagged VLANs with the untagged VLAN as PVID, setup an access port in the
// setup VLAN. A Linux bridge lists the PVID among the members, so
// pvidIsMember adds the untagged VLAN to the allowed set.
func DesiredStates(ifc inventory.Interface, pvidIsMember bool) link.DesiredStates {
	allowed := append([]int(nil), ifc.Vlans.Tagged...)
	if pvidIsMember && ifc.Vlans.Untagged != 0 {
		allowed = append(allowed, ifc.Vlans.Untagged)
	}
	return link.DesiredStates{
		{Name: link.Prod, Config: link.Trunk(ifc.Name, ifc.Vlans.Untagged, allowed)},
		{Name: link.Setup, Config: link.Access(ifc.Name, ifc.Vlans.Setup)},
	}
}

// settable looks up the desired config of name.
func settable(desired link.DesiredStates, name link.StateName, ifc inventory.Interface) (link.LinkConfig, error) {
	if !name.Settable() {
		return link.LinkConfig{}, fault.New(fault.Configuration, "state %q cannot be set", name)
	}
	c, ok := desired.Lookup(name)
	if !ok || c.PVID == 0 {
		return link.LinkConfig{}, fault.New(fault.Configuration, "no %s vlan for interface %s", name, ifc.Name)
	}
	return c, nil
}

func noInterface(ifc inventory.Interface, dev inventory.Device) error {
	return fault.New(fault.Configuration, "no interface %s on the box %s", ifc.Name, dev.FQDN)
}

// operation starts the log entry of one facade call.
func operation(dev inventory.Device, name string) *logging.Entry {
	return logging.WithDevice(dev.FQDN).
		WithField("vendor", dev.Vendor).
		WithField("operation", name).
		WithField("operation_id", uuid.NewString())
}

func finish(log *logging.Entry, begin time.Time, err error) {
	log = log.WithField("took", time.Since(begin).String())
	if err != nil {
		log.WithError(err).WithField("status", fault.StatusCode(err)).Warn("operation failed")
		return
	}
	log.Info("operation done")
}
