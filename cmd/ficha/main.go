// Package main is the entry point for the ficha command line tool
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/KirkDiggler/rpg-ficha/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describeError(err))
		stop()
		os.Exit(errors.GetCode(err).ExitCode())
	}
}

// describeError prefers the user facing message of a structured error
func describeError(err error) string {
	var e *errors.Error
	if errors.As(err, &e) && e.Code != errors.CodeInternal && e.Code != errors.CodeUnavailable {
		return errors.GetMessage(err)
	}
	return err.Error()
}
