package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

const (
	exitSuccess = 0
	exitFailure = 1
	exitConfig  = 3
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "taskctl: load .env:", err)
		os.Exit(exitConfig)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, err := newRootCmd(os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "taskctl:", err)
		os.Exit(exitConfig)
	}
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "taskctl:", err)
		os.Exit(exitFailure)
	}
	os.Exit(exitSuccess)
}
