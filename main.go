// Package main is the entry point for the redmine CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/danielolaszy/redmine/cmd"
	"github.com/danielolaszy/redmine/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logFile, err := logging.SetupFromEnv(os.Stderr, "redmine")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logFile.Close()

	logging.Debug("starting redmine cli", "version", "1.0.0", "log_level", logging.LevelFromEnv())

	if err := cmd.Execute(ctx); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		logFile.Close()
		stop()
		os.Exit(1)
	}
}
