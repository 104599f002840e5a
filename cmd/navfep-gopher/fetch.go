package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/felipeandrian/navfep-gopher/internal/browser"
	"github.com/felipeandrian/navfep-gopher/internal/config"
	"github.com/felipeandrian/navfep-gopher/internal/model"
	"github.com/felipeandrian/navfep-gopher/internal/render"
)

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <gopher-url>",
		Short: "Fetch and render a single gopher item",
		Long: `Fetch performs one gopher exchange: connect, send the selector, read
the response, and render it.

Menus and text files render as a hypertext page on stdout. Use --raw
to write the response bytes untouched instead, which is the right mode
for downloading binary items.

The item type is normally taken from the gopher_type query parameter
of the URL; --type overrides it.

Examples:
  # Fetch the root menu of a gopher hole
  navfep-gopher fetch gopher://gopher.floodgap.com

  # Download a binary item to a file
  navfep-gopher fetch --raw -o file.zip "gopher://example.org/9/files/file.zip"

  # Fetch a text file from a latin-1 hole
  navfep-gopher fetch --charset latin-1 "gopher://example.org/0/about.txt"

  # Fetch from an onion hole through an external Tor proxy
  navfep-gopher fetch --external-tor 127.0.0.1:9050 gopher://example3bnif4vmg.onion`,
		Args: cobra.ExactArgs(1),
		RunE: runFetchCmd,
	}

	cmd.Flags().BoolP("raw", "r", false,
		"Write the raw response bytes instead of rendering")
	cmd.Flags().StringP("output", "o", "",
		"Write output to the specified file instead of stdout")
	cmd.Flags().String("type", "",
		"Override the gopher item type (single character, e.g. 0, 1, 9, I)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Abort when the server sends nothing for this long")
	cmd.Flags().Int64("max-size", config.DefaultMaxResponseSize,
		"Maximum response size in bytes (0 = unlimited)")
	cmd.Flags().String("charset", config.DefaultCharset,
		"Charset to decode menus and text with (utf-8, latin-1, cp437)")

	addTransportFlags(cmd)

	return cmd
}

// runFetchCmd executes the fetch command.
func runFetchCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()
	cfg.Targets = args

	var err error
	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}
	cfg.MaxResponseSize, err = cmd.Flags().GetInt64("max-size")
	if err != nil {
		return err
	}
	cfg.Charset, err = cmd.Flags().GetString("charset")
	if err != nil {
		return err
	}

	raw, err := cmd.Flags().GetBool("raw")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	typeOverride, err := cmd.Flags().GetString("type")
	if err != nil {
		return err
	}

	socks5, err := transportFromFlags(cmd, cfg)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	verbose := getVerboseFlag(cmd)
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	// Resolve the target before any network setup so bad URLs fail fast.
	addr, err := model.ParseAddress(cfg.Targets[0])
	if err != nil {
		return fmt.Errorf("invalid gopher URL %q: %w", cfg.Targets[0], err)
	}
	if typeOverride != "" {
		itemType, err := model.ParseItemType(typeOverride)
		if err != nil {
			return fmt.Errorf("invalid item type %q: %w", typeOverride, err)
		}
		addr = addr.WithItemType(itemType)
	}

	enc, err := render.LookupCharset(cfg.Charset)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	enableTorForOnionTargets(cfg, socks5, logger)

	dialer, cleanup, err := setupDialer(ctx, cfg, socks5, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	fetcher := newFetcher(dialer, cfg)

	output, owned, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	if owned {
		defer output.Close() //nolint:errcheck
	}

	// Raw mode bypasses rendering entirely; transport failures are the
	// caller's to see.
	if raw {
		body, err := fetcher.Fetch(ctx, addr)
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}
		if _, err := output.Write(body); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	renderer := render.NewRenderer(render.WithEncoding(enc))
	navigator := browser.NewNavigator(fetcher, renderer, browser.WithLogger(logger))

	doc := navigator.Navigate(ctx, addr.String())
	if _, err := fmt.Fprintln(output, doc.Markup); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

// openOutput returns the destination for command output: the named file
// or stdout when path is empty. Reports may contain findings about third
// parties, so files are created owner-readable only. The boolean reports
// whether the caller owns the handle and must close it.
func openOutput(path string) (*os.File, bool, error) {
	if path == "" {
		return os.Stdout, false, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, false, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, true, nil
}
