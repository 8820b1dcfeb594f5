package main

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/keysound/pianorecd/sdk/recorder"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List subscribable MIDI sources on this host",
	Long: `List every sequencer port that can act as a recording source, one per
line, with its address, client and port names, capability and type
bitsets in hex, kernel flag, and rank score. The highest-ranked source is
the one picked when recording without --port.`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	sources, err := recorder.ListSources()
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		log.Warn("no subscribable MIDI sources found")
		return nil
	}

	// Most-preferred first.
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].RankScore() > sources[j].RankScore()
	})
	for _, src := range sources {
		fmt.Println(src.String())
	}
	return nil
}
