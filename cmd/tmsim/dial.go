// cmd/tmsim/dial.go
package main

import (
	"github.com/spf13/cobra"

	"github.com/tamzrod/tmrobot-sim/internal/config"
	"github.com/tamzrod/tmrobot-sim/internal/transport"
)

var clientFlags struct {
	endpoint string
	unitID   uint8
	timeout  int
}

// addClientFlags registers the flags shared by commands that talk to a controller.
func addClientFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&clientFlags.endpoint, "endpoint", "e", "", "controller address (host:port)")
	f.Uint8Var(&clientFlags.unitID, "unit-id", 1, "controller unit id")
	f.IntVar(&clientFlags.timeout, "timeout-ms", 0, "per-request timeout in ms")
}

func applyClientFlags(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	if f.Changed("endpoint") {
		c.Client.Endpoint = clientFlags.endpoint
	}
	if f.Changed("unit-id") {
		c.Client.UnitID = clientFlags.unitID
	}
	if f.Changed("timeout-ms") {
		c.Client.TimeoutMs = clientFlags.timeout
	}
}

func dial(cfg *config.Config) (*transport.Client, error) {
	return transport.Dial(transport.Config{
		Endpoint: cfg.Client.Endpoint,
		UnitID:   cfg.Client.UnitID,
		Timeout:  cfg.Client.Timeout(),
	})
}
