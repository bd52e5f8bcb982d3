package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/germanamz/playground/cmd/playground/internal/starter"
)

func main() {
	// Handle subcommands before flag parsing.
	if len(os.Args) > 1 && os.Args[1] == "init" {
		initCmd := flag.NewFlagSet("init", flag.ExitOnError)
		initCmd.Usage = func() {
			fmt.Fprintf(os.Stderr, "Usage: playground init [flags]\n\nWrite a starter configuration file.\n\nFlags:\n")
			initCmd.PrintDefaults()
		}
		path := initCmd.String("config", "playground.yaml", "path of the configuration file to write")
		force := initCmd.Bool("force", false, "overwrite an existing file")
		_ = initCmd.Parse(os.Args[2:])

		if err := starter.Write(*path, *force); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", *path)

		return
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: playground [flags]\n       playground init [flags]\n\nFlags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nCommands:\n  init    Write a starter configuration file\n")
	}

	var opts runOptions
	flag.StringVar(&opts.configPath, "config", "", "path to configuration file (default: built-in defaults)")
	envFile := flag.String("env", ".env", "path to .env file (ignored if missing)")
	flag.StringVar(&opts.addr, "addr", "", "listen address (overrides server.addr)")
	flag.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.BoolVar(&opts.dev, "dev", false, "human-readable development logging")
	flag.Parse()

	if err := loadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
