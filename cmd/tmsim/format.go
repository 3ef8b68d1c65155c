// cmd/tmsim/format.go
package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tamzrod/tmrobot-sim/internal/codec"
	"github.com/tamzrod/tmrobot-sim/internal/poller"
)

func formatValue(kind codec.Kind, v any) string {
	switch x := v.(type) {
	case float32:
		return fmt.Sprintf("%.3f", x)
	case uint16:
		if kind == codec.Raw {
			return fmt.Sprintf("0x%04X", x)
		}
		return fmt.Sprintf("%d", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// writeBlock prints one decoded block.
func writeBlock(w io.Writer, b poller.BlockResult) {
	vals := make([]string, len(b.Values))
	for i, v := range b.Values {
		vals[i] = formatValue(b.Kind, v)
	}
	fmt.Fprintf(w, "%-18s %s@%d x%d %s: [%s]\n",
		b.Name, b.Region, b.Address, b.Quantity, b.Kind, strings.Join(vals, ", "))
}

func writeTimestamp(w io.Writer, at time.Time) {
	fmt.Fprintf(w, "\n--- %s ---\n", at.Format("2006-01-02 15:04:05.000"))
}
