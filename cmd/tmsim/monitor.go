// cmd/tmsim/monitor.go
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamzrod/tmrobot-sim/internal/config"
	"github.com/tamzrod/tmrobot-sim/internal/device"
	"github.com/tamzrod/tmrobot-sim/internal/poller"
	"github.com/tamzrod/tmrobot-sim/internal/status"
)

var monitorFlags struct {
	interval int
	fields   []string
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Poll presets continuously and track link health.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(func(c *config.Config) {
			applyClientFlags(cmd, c)
			f := cmd.Flags()
			if f.Changed("interval-ms") {
				c.Monitor.IntervalMs = monitorFlags.interval
			}
			if f.Changed("fields") {
				c.Monitor.Fields = monitorFlags.fields
			}
		})
		if err != nil {
			return err
		}

		names := cfg.Monitor.Fields
		if len(names) == 0 {
			names = device.PresetKeys()
		}

		client, err := dial(cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		p, err := poller.Build(names, cfg.Monitor.Interval(), client)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// ---- channel between poller and printer ----
		out := make(chan poller.PollResult)
		go p.Run(ctx, out)

		tracker := status.NewTracker()
		secTicker := time.NewTicker(time.Second)
		defer secTicker.Stop()

		w := cmd.OutOrStdout()
		for {
			select {
			case <-ctx.Done():
				log.Info("monitor stopped", "link", tracker.Snapshot().String())
				return nil

			case res := <-out:
				if tracker.Observe(res.Err) {
					log.Info("link state changed", "link", tracker.Snapshot().String())
				}
				if res.Err != nil {
					log.Error("poll failed", "err", res.Err)
					continue
				}
				writeTimestamp(w, res.At)
				for _, b := range res.Blocks {
					writeBlock(w, b)
				}

			case <-secTicker.C:
				// Tick 1 Hz while not OK.
				if tracker.Tick() {
					log.Debug("link still down", "link", tracker.Snapshot().String())
				}
			}
		}
	},
}

func init() {
	f := monitorCmd.Flags()
	f.IntVarP(&monitorFlags.interval, "interval-ms", "i", 0, "poll interval in ms (default 5000)")
	f.StringSliceVar(&monitorFlags.fields, "fields", nil, "presets or field names to poll (default all presets)")
	addClientFlags(monitorCmd)

	rootCmd.AddCommand(monitorCmd)
}
