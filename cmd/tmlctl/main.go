// Command tmlctl drives the recognizer, SPPF builder, and poset algebra
// from grammar and script files on disk, the "external interfaces" the
// core itself deliberately stays silent on.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("tmlctl failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tmlctl",
		Short: "Drive the Earley/SPPF/poset core from grammar and script files",
	}
	root.AddCommand(newRecognizeCmd())
	root.AddCommand(newChartCmd())
	root.AddCommand(newForestCmd())
	root.AddCommand(newPosetCmd())
	root.AddCommand(newBatchCmd())
	return root
}
