package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ericfisherdev/passkeep/internal/adapter/driven/backend"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	c := &cli{
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		openStore: backend.Open,
		clipboard: backend.Clipboard,
	}
	code := c.run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
