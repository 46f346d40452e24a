// Command ledstrip runs LED animation programs against a simulated WS2812
// strip and inspects the pulse trains the driver produces.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ledstrip",
		Short:        "WS2812 LED strip driver tools",
		SilenceUsage: true,
	}
	root.AddCommand(newPlayCmd(), newEncodeCmd())
	return root
}
