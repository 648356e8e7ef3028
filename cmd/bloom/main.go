package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/terraincognita07/bloom/internal/cli"
	"github.com/terraincognita07/bloom/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	time.Local = cfg.Location

	logger := cfg.NewLogger(os.Stderr)
	return cli.NewRootCmd(cfg, logger).ExecuteContext(context.Background())
}
