// Command aitask dispatches generative-AI tasks from the command line.
//
// Usage:
//
//	aitask [-config file] <command> [flags] [prompt...]
//
// Commands: chat, complete, speech, kinds, providers, history.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
