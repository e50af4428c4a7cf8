package driver

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/napi-network/napi/fdb"
	"github.com/napi-network/napi/inventory"
	"github.com/napi-network/napi/link"
	"github.com/napi-network/napi/link/cumulus"
)

// noSuchDevice is printed by iproute2 for an unknown interface.
const noSuchDevice = "No such device"

type cumulusMacTable struct {
	dev     inventory.Device
	dialers *Dialers
}

func newCumulusMacTable(dev inventory.Device, dialers *Dialers) MacTableDriver {
	return &cumulusMacTable{dev: dev, dialers: dialers}
}

func (d *cumulusMacTable) GetMacs(ctx context.Context, vlan string) (entries []fdb.Entry, err error) {
	log := operation(d.dev, "get_macs").WithField("vlan", vlan)
	defer func(begin time.Time) { finish(log, begin, err) }(time.Now())

	ctx, cancel := d.dialers.bound(ctx)
	defer cancel()

	sh, err := d.dialers.CLI(ctx, d.dev.Vendor, d.dev.Address())
	if err != nil {
		return nil, err
	}
	defer sh.Close()

	out, err := sh.SendCommand(ctx, fdb.CumulusCommand(vlan))
	if err != nil {
		return nil, err
	}
	return fdb.DecodeCumulus(out)
}

type cumulusLinkState struct {
	dev     inventory.Device
	ifc     inventory.Interface
	desired link.DesiredStates
	dialers *Dialers
}

func newCumulusLinkState(dev inventory.Device, ifc inventory.Interface, dialers *Dialers) LinkStateDriver {
	return &cumulusLinkState{dev: dev, ifc: ifc, desired: DesiredStates(ifc, true), dialers: dialers}
}

func (d *cumulusLinkState) membership(ctx context.Context, sh Shell) (*cumulus.Membership, error) {
	out, err := sh.SendCommand(ctx, cumulus.ShowCommand(d.ifc.Name))
	if err != nil {
		return nil, err
	}
	m, err := cumulus.ParseMembership(d.ifc.Name, out)
	if errors.Is(err, cumulus.ErrNoInterface) {
		return nil, noInterface(d.ifc, d.dev)
	}
	return m, err
}

func (d *cumulusLinkState) GetState(ctx context.Context) (state link.State, err error) {
	log := operation(d.dev, "get_state").WithField("interface", d.ifc.Name)
	defer func(begin time.Time) { finish(log.WithField("state", state.String()), begin, err) }(time.Now())

	ctx, cancel := d.dialers.bound(ctx)
	defer cancel()

	sh, err := d.dialers.CLI(ctx, d.dev.Vendor, d.dev.Address())
	if err != nil {
		return link.State{}, err
	}
	defer sh.Close()

	m, err := d.membership(ctx, sh)
	if err != nil {
		return link.State{}, err
	}
	return link.Reconcile(d.desired, cumulus.Decode(m)), nil
}

func (d *cumulusLinkState) SetState(ctx context.Context, name link.StateName) (err error) {
	log := operation(d.dev, "set_state").WithField("interface", d.ifc.Name).WithField("state", name)
	defer func(begin time.Time) { finish(log, begin, err) }(time.Now())

	c, err := settable(d.desired, name, d.ifc)
	if err != nil {
		return err
	}

	ctx, cancel := d.dialers.bound(ctx)
	defer cancel()

	sh, err := d.dialers.CLI(ctx, d.dev.Vendor, d.dev.Address())
	if err != nil {
		return err
	}
	defer sh.Close()

	current, err := d.membership(ctx, sh)
	if err != nil {
		return err
	}
	out, err := sh.SendCommands(ctx, cumulus.Diff{Desired: c, Current: current})
	if err != nil {
		return err
	}
	if strings.Contains(out, noSuchDevice) {
		return noInterface(d.ifc, d.dev)
	}
	return nil
}
