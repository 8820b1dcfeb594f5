package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/keysound/pianorecd/sdk/contracts"
	"github.com/keysound/pianorecd/sdk/recorder"
)

var (
	portAddr   string
	outputPath string
	clientName string
	verbose    bool
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Capture MIDI events into a .mid file until interrupted",
	Long: `Capture MIDI events from a source port into a Standard MIDI File.

Without --port the highest-ranked source is selected automatically and
re-selected whenever the topology changes; with --port the given source is
pinned. Recording runs until SIGINT or SIGTERM, and the output file is
additionally saved every 500 ms while recording.`,
	RunE: runRecord,
}

func init() {
	addRecordFlags(recordCmd.Flags())
	rootCmd.AddCommand(recordCmd)
}

func addRecordFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&portAddr, "port", "p", "", `Source port as "client:port". Omit to auto-select the best source.`)
	fs.StringVarP(&outputPath, "output", "o", "recording.mid", "Destination .mid file. The parent directory must exist.")
	fs.StringVar(&clientName, "client-name", "piano-recorder", "Name registered with the host sequencer.")
	fs.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")
}

func runRecord(cmd *cobra.Command, args []string) error {
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	opts := []contracts.Option{
		contracts.WithOutputPath(outputPath),
		contracts.WithClientName(clientName),
	}
	if verbose {
		opts = append(opts, contracts.WithLogLevel(contracts.DebugLevel))
	}
	if portAddr != "" {
		src, err := contracts.PortHandleFromWireAddr(portAddr)
		if err != nil {
			return err
		}
		opts = append(opts, contracts.WithPreferredSource(src))
	}

	rec, err := recorder.NewRecorder(opts...)
	if err != nil {
		return fmt.Errorf("create recorder: %w", err)
	}
	defer rec.Close()

	if err := rec.Start(); err != nil {
		return fmt.Errorf("start recording: %w", err)
	}
	log.Info("recording", "output", outputPath)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	sig := <-sigs
	log.Info("stopping", "signal", sig.String())

	if err := rec.Stop(); err != nil {
		return fmt.Errorf("final save: %w", err)
	}
	log.Info("saved", "output", outputPath)
	return nil
}
