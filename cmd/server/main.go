package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bizflow/pkg/app"
)

// main acts as a thin adapter so existing process managers can keep using cmd/server.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "bizflow:", err)
		stop()
		os.Exit(1)
	}
}
