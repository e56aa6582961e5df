package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"listbuilder/internal/cli"
	"listbuilder/internal/log"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Error("PANIC recovered", "error", r, "stack", string(debug.Stack()))
			fmt.Fprintf(os.Stderr, "listbuilder crashed: %v\n", r)
			os.Exit(cli.ExitError)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], cli.StdStreams())
	if ctx.Err() != nil {
		log.Warn("interrupted", "code", code)
	}
	stop()
	log.Debug("exiting", "code", code)
	log.Close()
	os.Exit(code)
}
