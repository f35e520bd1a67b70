package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/tempomaze/internal/cli"
	apperrors "github.com/matzehuels/tempomaze/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := cli.New(os.Stderr, cli.LogInfo)
	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, cli.StyleError.Render("✗")+" "+apperrors.UserMessage(err))
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeFileNotFound:
		return 3
	case "", apperrors.ErrCodeInternal:
		return 1
	default:
		return 2
	}
}
