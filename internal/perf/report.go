// internal/perf/report.go
package perf

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Report is a finished (or stopped) run ready to be rendered.
type Report struct {
	RunID    string
	Config   Config
	Started  time.Time
	State    State
	Samples  []Sample
	Stats    Stats
	HasStats bool
}

// Stress-mode verdict thresholds on the mean response time.
const (
	excellentMean = 5 * time.Millisecond
	goodMean      = 10 * time.Millisecond
)

// Verdict grades a stress-mode mean response time.
func Verdict(mean time.Duration) string {
	switch {
	case mean < excellentMean:
		return "excellent (mean < 5 ms)"
	case mean < goodMean:
		return "good (mean < 10 ms)"
	default:
		return "slow (mean >= 10 ms), check the link or the device"
	}
}

// Millis formats a duration as fractional milliseconds.
func Millis(d time.Duration) string {
	return fmt.Sprintf("%.2f ms", float64(d)/float64(time.Millisecond))
}

// WriteSummary renders parameters and statistics.
func WriteSummary(w io.Writer, r Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Parameters:\n")
	fmt.Fprintf(&b, "  test:          %s\n", r.Config.Test)
	fmt.Fprintf(&b, "  run id:        %s\n", r.RunID)
	fmt.Fprintf(&b, "  state:         %s\n", r.State)
	fmt.Fprintf(&b, "  samples:       %d/%d\n", len(r.Samples), r.Config.Count)
	fmt.Fprintf(&b, "  interval:      %d ms\n", r.Config.Interval.Milliseconds())
	fmt.Fprintf(&b, "  started:       %s\n", r.Started.Format("2006-01-02 15:04:05"))
	b.WriteString("\n")

	if !r.HasStats {
		b.WriteString("Statistics: no data\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	st := r.Stats
	fmt.Fprintf(&b, "Statistics:\n")
	fmt.Fprintf(&b, "  mean:          %s\n", Millis(st.Mean))
	fmt.Fprintf(&b, "  min:           %s\n", Millis(st.Min))
	fmt.Fprintf(&b, "  max:           %s\n", Millis(st.Max))
	fmt.Fprintf(&b, "  p95:           %s\n", Millis(st.P95))
	fmt.Fprintf(&b, "  std dev:       %s\n", Millis(st.StdDev))
	fmt.Fprintf(&b, "  success rate:  %.1f %%\n", st.SuccessRate)
	if st.Mismatches > 0 {
		fmt.Fprintf(&b, "  mismatches:    %d\n", st.Mismatches)
	}
	if r.Config.StressMode() {
		fmt.Fprintf(&b, "  stress mode:   %s\n", Verdict(st.Mean))
	}
	if r.Config.Test.Writes() {
		b.WriteString("  note:          test includes writes to the user define area\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteReport renders the summary followed by one row per sample.
func WriteReport(w io.Writer, r Report) error {
	if _, err := io.WriteString(w, "TM robot performance report\n"+strings.Repeat("=", 50)+"\n\n"); err != nil {
		return err
	}
	if err := WriteSummary(w, r); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("\nSamples:\n")
	b.WriteString("  #\telapsed(ms)\tresult\ttime\n")
	for i, s := range r.Samples {
		fmt.Fprintf(&b, "  %d\t%.2f\t%s\t%s\n",
			i+1, float64(s.Elapsed)/float64(time.Millisecond), s.Outcome, s.At.Format("15:04:05.000"))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
