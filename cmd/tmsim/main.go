// cmd/tmsim/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tamzrod/tmrobot-sim/internal/fault"
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "tmsim: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps typed failures onto distinct process exit codes.
// Errors that do not carry a kind exit with 1.
func exitCode(err error) int {
	if _, ok := fault.KindOf(err); !ok {
		return 1
	}
	return 10 + int(fault.Code(err))
}
