// Napictl reads MAC tables and reads or switches the named link state of a
// switch port.
//
//	napictl -c napi.yaml --fqdn leaf1.example.net --vendor huawei macs --vlan 104
//	napictl --fqdn leaf2.example.net --vendor nvidia -i swp1 --untagged 10 --tagged 20,30 state get
//	napictl --fqdn leaf2.example.net --vendor nvidia -i swp1 --setup 4 state set setup
//
// Every result is printed as one JSON document carrying an HTTP style status.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(newApp(os.Stdout)).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
