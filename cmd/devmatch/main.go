// Devmatch - Hybrid Developer/Project Matching
//
// An offline-first CLI engine that ranks developers against project
// requirements (and projects against developer profiles) by fusing
// semantic vector similarity, skill-graph compatibility, availability
// and reputation.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/asteroid-belt/devmatch/internal/cli"
	"github.com/asteroid-belt/devmatch/internal/telemetry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	telemetryClient := telemetry.New()
	defer telemetryClient.Close()

	if err := cli.Execute(ctx, telemetryClient); err != nil {
		os.Exit(1)
	}
}
