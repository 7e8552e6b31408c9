// Command stresspnl loads a Stress PnL workbook and prints summaries,
// aggregates and peer comparisons, or writes the xlsx and CSV exports.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
