package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jtele2/csync/cmd/csync"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := csync.NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()

	os.Exit(csync.ExitCode(err, os.Stderr))
}
