// Command pianorecd captures live MIDI performance data from an attached
// instrument and persists it as a Standard MIDI File, surviving the
// instrument's port disappearing and reappearing mid-session.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pianorecd",
	Short: "Record MIDI from a digital piano to a Standard MIDI File",
	Long: `pianorecd records a live MIDI performance into a .mid file.

It subscribes to a MIDI source on the host sequencer (auto-selecting real
hardware when no source is pinned), follows the source across hot-plug
events, and saves the file atomically every half second so the output is
playable even after an abrupt kill.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
