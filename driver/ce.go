package driver

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/napi-network/napi/fault"
	"github.com/napi-network/napi/fdb"
	"github.com/napi-network/napi/inventory"
	"github.com/napi-network/napi/link"
	"github.com/napi-network/napi/link/ce"
)

type ceMacTable struct {
	dev     inventory.Device
	dialers *Dialers
}

func newCEMacTable(dev inventory.Device, dialers *Dialers) MacTableDriver {
	return &ceMacTable{dev: dev, dialers: dialers}
}

func (d *ceMacTable) GetMacs(ctx context.Context, vlan string) (entries []fdb.Entry, err error) {
	log := operation(d.dev, "get_macs").WithField("vlan", vlan)
	defer func(begin time.Time) { finish(log, begin, err) }(time.Now())

	ctx, cancel := d.dialers.bound(ctx)
	defer cancel()

	s, err := d.dialers.Netconf(ctx, d.dev.Address())
	if err != nil {
		return nil, err
	}
	defer s.Close()

	m := &fdb.CEMac{}
	if err = s.Get(ctx, fdb.CEFilter(vlan), m); err != nil {
		return nil, err
	}
	entries, err = fdb.DecodeCE(m)
	if errors.Is(err, fdb.ErrNoData) {
		return nil, fault.New(fault.Configuration, "no mac-address data on %s", d.dev.FQDN)
	}
	return entries, err
}

type ceLinkState struct {
	dev     inventory.Device
	ifc     inventory.Interface
	desired link.DesiredStates
	dialers *Dialers
}

func newCELinkState(dev inventory.Device, ifc inventory.Interface, dialers *Dialers) LinkStateDriver {
	return &ceLinkState{dev: dev, ifc: ifc, desired: DesiredStates(ifc, false), dialers: dialers}
}

func (d *ceLinkState) GetState(ctx context.Context) (state link.State, err error) {
	log := operation(d.dev, "get_state").WithField("interface", d.ifc.Name)
	defer func(begin time.Time) { finish(log.WithField("state", state.String()), begin, err) }(time.Now())

	ctx, cancel := d.dialers.bound(ctx)
	defer cancel()

	s, err := d.dialers.Netconf(ctx, d.dev.Address())
	if err != nil {
		return link.State{}, err
	}
	defer s.Close()

	e := &ce.Ethernet{}
	if err = s.GetConfig(ctx, "", ce.ReadFilter(d.ifc.Name), e); err != nil {
		return link.State{}, err
	}
	actual, err := ce.Decode(e, d.ifc.Name)
	if errors.Is(err, ce.ErrNoInterface) {
		return link.State{}, noInterface(d.ifc, d.dev)
	}
	if err != nil {
		return link.State{}, err
	}
	return link.Reconcile(d.desired, actual), nil
}

func (d *ceLinkState) SetState(ctx context.Context, name link.StateName) (err error) {
	log := operation(d.dev, "set_state").WithField("interface", d.ifc.Name).WithField("state", name)
	defer func(begin time.Time) { finish(log, begin, err) }(time.Now())

	c, err := settable(d.desired, name, d.ifc)
	if err != nil {
		return err
	}

	ctx, cancel := d.dialers.bound(ctx)
	defer cancel()

	s, err := d.dialers.Netconf(ctx, d.dev.Address())
	if err != nil {
		return err
	}
	defer s.Close()

	return s.EditConfig(ctx, "", ce.Encode(c))
}
