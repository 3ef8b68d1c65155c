// cmd/tmsim/perf.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamzrod/tmrobot-sim/internal/config"
	"github.com/tamzrod/tmrobot-sim/internal/executor"
	"github.com/tamzrod/tmrobot-sim/internal/perf"
)

var perfFlags struct {
	test     string
	count    int
	interval int
	seed     uint64
}

var perfCmd = &cobra.Command{
	Use:   "perf",
	Short: "Run one performance test and print the report.",
	Long: "Runs a paced request loop against the controller and prints progress and " +
		"a latency report. Tests: " + kindList() + ".",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(func(c *config.Config) {
			applyClientFlags(cmd, c)
			f := cmd.Flags()
			if f.Changed("test") {
				c.Perf.Test = perfFlags.test
			}
			if f.Changed("count") {
				c.Perf.Count = perfFlags.count
			}
			if f.Changed("interval-ms") {
				c.Perf.IntervalMs = perfFlags.interval
			}
			if f.Changed("seed") {
				c.Perf.Seed = perfFlags.seed
			}
		})
		if err != nil {
			return err
		}

		kind, err := executor.ParseTestKind(cfg.Perf.Test)
		if err != nil {
			return err
		}

		client, err := dial(cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		seed := cfg.Perf.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		exec, err := executor.New(client, seed, log.Logger)
		if err != nil {
			return err
		}

		events := make(chan perf.Event, 64)
		sampler := perf.NewSampler(exec, events, log.Logger)

		run := perf.Config{Test: kind, Count: cfg.Perf.Count, Interval: cfg.Perf.Interval()}
		if err := sampler.Start(context.Background(), run); err != nil {
			return err
		}

		sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-sigCtx.Done()
			sampler.Stop()
		}()

		out := cmd.OutOrStdout()
		step := progressStep(run.Count)
		progress := func(ev perf.Event) {
			if ev.Done%step == 0 || ev.Done == ev.Total {
				fmt.Fprintf(out, "[%d/%d] mean %s  success %.1f %%\n",
					ev.Done, ev.Total, perf.Millis(ev.Running.Mean), ev.Running.SuccessRate)
			}
		}

	recv:
		for {
			select {
			case ev := <-events:
				if ev.Final {
					break recv
				}
				progress(ev)
			case <-sampler.Done():
				// the final event is not guaranteed after a stop
				for {
					select {
					case ev := <-events:
						if ev.Final {
							break recv
						}
						progress(ev)
					default:
						break recv
					}
				}
			}
		}
		sampler.Wait()

		report, ok := sampler.Report()
		if !ok {
			return fmt.Errorf("perf: no run recorded")
		}
		fmt.Fprintf(out, "finished: %s (%d/%d)\n\n", report.State, len(report.Samples), report.Config.Count)
		return perf.WriteReport(out, report)
	},
}

// progressStep prints about twenty progress lines per run.
func progressStep(total int) int {
	if total <= 20 {
		return 1
	}
	return total / 20
}

func kindList() string {
	kinds := executor.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func init() {
	f := perfCmd.Flags()
	f.StringVarP(&perfFlags.test, "test", "t", "", "test to run")
	f.IntVarP(&perfFlags.count, "count", "n", 0, "number of requests")
	f.IntVarP(&perfFlags.interval, "interval-ms", "i", 0, "pause between requests in ms (0 = stress)")
	f.Uint64Var(&perfFlags.seed, "seed", 0, "write payload RNG seed (0 = time-seeded)")
	addClientFlags(perfCmd)

	rootCmd.AddCommand(perfCmd)
}
