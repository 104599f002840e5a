// Package main provides the entry point for the navfep-gopher CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felipeandrian/navfep-gopher/internal/log"
)

// NewRootCmd creates the root command for navfep-gopher.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "navfep-gopher",
		Short: "Gopher client, crawler, and privacy auditor",
		Long: `navfep-gopher is a client for the gopher protocol (RFC 1436).
It fetches and renders gopherspace content, crawls whole gopher holes,
and audits what it finds for privacy exposures: email addresses, EXIF
metadata in images, and links that tie a hole to the outside web.

Tor is supported for gopher holes published as onion services.
Use --tor to start an embedded Tor daemon, or --external-tor to use
an already running proxy.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the redacting structured logger used by every
// command. Verbose selects Debug level, otherwise only warnings and
// errors reach the terminal.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewLogger(os.Stderr, verbose)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM so
// in-flight crawls stop at the next politeness gap and partial results
// survive.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}
