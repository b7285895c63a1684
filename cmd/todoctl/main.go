// Package main is the todoctl command line client for the todo service.
//
//	todoctl list
//	todoctl create --title "Buy milk" --description "2 liters"
//	todoctl update 1 --title "Buy oat milk" --description "1 liter"
//	todoctl delete 1
//
// The server address comes from --base-url or TODOCTL_BASE_URL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
