package main

import (
	"github.com/spf13/cobra"

	"github.com/napi-network/napi/driver"
	"github.com/napi-network/napi/fdb"
	"github.com/napi-network/napi/link"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:               "napictl",
		Short:             "ToR switch management",
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	}
	root.SetOut(a.out)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Configuration file")
	pf.BoolVar(&a.askPass, "ask-pass", false, "Prompt for the device password")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Debug logging and error details")
	pf.StringVar(&a.device.FQDN, "fqdn", "", "Device FQDN")
	pf.StringVar(&a.device.IP, "ip", "", "Device address, used instead of the FQDN to connect")
	pf.StringVar(&a.device.Vendor, "vendor", "", "Device vendor (huawei, nvidia)")

	root.AddCommand(newMacsCmd(a), newStateCmd(a))
	return root
}

func newMacsCmd(a *app) *cobra.Command {
	var vlan string
	cmd := &cobra.Command{
		Use:   "macs",
		Short: "List the learned MAC addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.macs(cmd, vlan)
			return a.report(entries, err)
		},
	}
	cmd.Flags().StringVar(&vlan, "vlan", "", "Restrict to one VLAN")
	return cmd
}

func (a *app) macs(cmd *cobra.Command, vlan string) ([]fdb.Entry, error) {
	if err := a.checkDevice(); err != nil {
		return nil, err
	}
	dialers, err := a.dialers()
	if err != nil {
		return nil, err
	}
	d, err := driver.NewMacTableDriver(a.device, dialers)
	if err != nil {
		return nil, err
	}
	return d.GetMacs(a.context(cmd), vlan)
}

func newStateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Read or set the named state of an interface",
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.ifc.Name, "interface", "i", "", "Interface name")
	pf.IntVar(&a.ifc.Vlans.Setup, "setup", 0, "Setup VLAN")
	pf.IntVar(&a.ifc.Vlans.Untagged, "untagged", 0, "Untagged (native) VLAN")
	pf.StringVar(&a.tagged, "tagged", "", "Tagged VLANs, e.g. 20,30-32")

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Read the state of the interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := a.getState(cmd)
			if err != nil {
				return a.report(nil, err)
			}
			return a.report(stateResult{Interface: a.ifc.Name, State: state.Name, Detail: state.Detail}, nil)
		},
	}, &cobra.Command{
		Use:       "set <prod|setup>",
		Short:     "Push the config of a named state",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(link.Prod), string(link.Setup)},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := link.StateName(args[0])
			if err := a.setState(cmd, name); err != nil {
				return a.report(nil, err)
			}
			return a.report(stateResult{Interface: a.ifc.Name, State: name}, nil)
		},
	})
	return cmd
}

type stateResult struct {
	Interface string         `json:"interface"`
	State     link.StateName `json:"state"`
	Detail    string         `json:"detail,omitempty"`
}

func (a *app) linkDriver() (driver.LinkStateDriver, error) {
	if err := a.checkInterface(); err != nil {
		return nil, err
	}
	dialers, err := a.dialers()
	if err != nil {
		return nil, err
	}
	return driver.NewLinkStateDriver(a.device, a.ifc, dialers)
}

func (a *app) getState(cmd *cobra.Command) (link.State, error) {
	d, err := a.linkDriver()
	if err != nil {
		return link.State{}, err
	}
	return d.GetState(a.context(cmd))
}

func (a *app) setState(cmd *cobra.Command, name link.StateName) error {
	d, err := a.linkDriver()
	if err != nil {
		return err
	}
	return d.SetState(a.context(cmd), name)
}
