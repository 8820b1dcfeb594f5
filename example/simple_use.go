package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/keysound/pianorecd/internal/logger"
	"github.com/keysound/pianorecd/sdk/contracts"
	"github.com/keysound/pianorecd/sdk/recorder"
)

func main() {
	log := logger.NewLogger()

	sources, err := recorder.ListSources()
	if err != nil || len(sources) == 0 {
		log.Error("No MIDI sources found or error listing sources", log.Field().Error("error", err))
		return
	}
	for _, src := range sources {
		fmt.Println("Available MIDI source:", src.String())
	}

	rec, err := recorder.NewRecorder(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithOutputPath("example.mid"),
	)
	if err != nil {
		log.Error("Failed to initialize recorder", log.Field().Error("error", err))
		return
	}
	defer rec.Close()

	if err := rec.Start(); err != nil {
		log.Error("Failed to start capture", log.Field().Error("error", err))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	fmt.Println("Recording MIDI events to example.mid... Press Ctrl+C to exit.")
	select {
	case <-sigChan:
		log.Info("Received shutdown signal, stopping capture...")
	case <-time.After(30 * time.Second):
		log.Info("Timeout reached, stopping capture...")
	}

	if err := rec.Stop(); err != nil {
		log.Error("Final save failed", log.Field().Error("error", err))
		return
	}
	log.Info("Program terminated gracefully.")
}
