// cmd/tmsim/serve.go
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamzrod/tmrobot-sim/internal/config"
	"github.com/tamzrod/tmrobot-sim/internal/device"
	"github.com/tamzrod/tmrobot-sim/internal/latency"
	"github.com/tamzrod/tmrobot-sim/internal/register"
	"github.com/tamzrod/tmrobot-sim/internal/server"
)

var serveFlags struct {
	listen    string
	unitID    uint8
	noLatency bool
	seed      uint64
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulated controller until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(func(c *config.Config) {
			f := cmd.Flags()
			if f.Changed("listen") {
				c.Server.Listen = serveFlags.listen
			}
			if f.Changed("unit-id") {
				c.Server.UnitID = serveFlags.unitID
			}
			if f.Changed("no-latency") {
				c.Server.Latency.Enabled = !serveFlags.noLatency
			}
			if f.Changed("seed") {
				c.Server.Latency.Seed = serveFlags.seed
			}
		})
		if err != nil {
			return err
		}

		model := latency.None
		if cfg.Server.Latency.Enabled {
			seed := cfg.Server.Latency.Seed
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			model = latency.NewUniform(cfg.Server.Latency.Model(), seed)
		}

		img, err := device.Build(device.Config{Capacity: cfg.Server.Capacity, Latency: model})
		if err != nil {
			return err
		}

		for _, f := range device.Fields() {
			log.Info("field",
				"name", f.Name, "region", f.Region, "addr", f.Address,
				"end", f.End(), "kind", f.Kind, "count", f.Count)
		}
		log.Info("layout ready",
			"capacity", cfg.Server.Capacity, "latency", cfg.Server.Latency.Enabled)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(server.Config{
			UnitID:      cfg.Server.UnitID,
			IdleTimeout: cfg.Server.IdleTimeout(),
		}, img, log.Logger)

		err = srv.ListenAndServe(ctx, cfg.Server.Listen)

		for _, r := range register.Regions {
			reads, writes := img.Bank(r).Counters()
			log.Info("bank counters", "region", r, "reads", reads, "writes", writes)
		}
		return err
	},
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.listen, "listen", "", "listen address (host:port)")
	f.Uint8Var(&serveFlags.unitID, "unit-id", 1, "unit id to answer (0 answers any)")
	f.BoolVar(&serveFlags.noLatency, "no-latency", false, "answer without simulated delay")
	f.Uint64Var(&serveFlags.seed, "seed", 0, "latency RNG seed (0 = time-seeded)")

	rootCmd.AddCommand(serveCmd)
}
