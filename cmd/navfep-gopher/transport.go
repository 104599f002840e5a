package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/net/proxy"

	"github.com/felipeandrian/navfep-gopher/internal/config"
	"github.com/felipeandrian/navfep-gopher/internal/model"
	"github.com/felipeandrian/navfep-gopher/internal/protocol"
	"github.com/felipeandrian/navfep-gopher/internal/tor"
)

// hostOf extracts the host from a gopher URL.
func hostOf(target string) (string, error) {
	addr, err := model.ParseAddress(target)
	if err != nil {
		return "", err
	}
	return addr.Host(), nil
}

// canonicalOnionHost returns the canonical spelling of an onion host, so
// that crawl storage and history lookups agree on one form regardless of
// how the user typed the address. Non-onion hosts come back unchanged;
// onions that fail validation still fold to lowercase, which is all the
// store keys on.
func canonicalOnionHost(host string) string {
	if !tor.IsOnionHost(host) {
		return host
	}
	canonical, err := tor.NormalizeAddress(host)
	if err != nil {
		return strings.ToLower(host)
	}
	return canonical
}

// addTransportFlags registers the flags that select how gopher
// connections are dialed. Every command that touches the network
// carries the same set.
func addTransportFlags(cmd *cobra.Command) {
	cmd.Flags().String("socks5", "",
		"Route fetches through a generic SOCKS5 proxy at the given host:port")
	cmd.Flags().Bool("tor", false,
		"Route fetches through Tor (starts an embedded daemon unless --external-tor is given)")
	cmd.Flags().StringP("external-tor", "e", "",
		"Use an external Tor SOCKS5 proxy at the given host:port (e.g., 127.0.0.1:9050)")
	cmd.Flags().DurationP("tor-timeout", "T", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")
}

// transportFromFlags copies the transport flag values into cfg.
// A generic SOCKS5 proxy is returned separately; it is a per-invocation
// choice, not part of the persistent configuration.
func transportFromFlags(cmd *cobra.Command, cfg *config.Config) (socks5 string, err error) {
	socks5, err = cmd.Flags().GetString("socks5")
	if err != nil {
		return "", err
	}

	useTor, err := cmd.Flags().GetBool("tor")
	if err != nil {
		return "", err
	}
	cfg.UseTor = useTor

	externalTor, err := cmd.Flags().GetString("external-tor")
	if err != nil {
		return "", err
	}
	if externalTor != "" {
		cfg.UseTor = true
		cfg.UseExternalTor = true
		cfg.TorProxyAddress = externalTor
	}

	cfg.TorStartupTimeout, err = cmd.Flags().GetDuration("tor-timeout")
	if err != nil {
		return "", err
	}

	return socks5, nil
}

// enableTorForOnionTargets turns Tor routing on when any target is an
// onion address and no transport was chosen explicitly. Onion holes are
// unreachable without a Tor circuit, so silently failing on a direct
// dial would only confuse.
func enableTorForOnionTargets(cfg *config.Config, socks5 string, logger *slog.Logger) {
	if cfg.UseTor || socks5 != "" {
		return
	}

	for _, target := range cfg.Targets {
		host, err := hostOf(target)
		if err != nil {
			continue
		}
		if tor.IsOnionHost(host) {
			logger.Info("onion target detected, enabling embedded Tor", "target", target)
			cfg.UseTor = true
			return
		}
	}
}

// setupDialer resolves the transport selection into a dialer for the
// gopher fetcher. The returned cleanup stops the embedded Tor daemon
// when one was started and is a no-op otherwise; callers must always
// invoke it.
func setupDialer(ctx context.Context, cfg *config.Config, socks5 string, logger *slog.Logger) (proxy.Dialer, func(), error) {
	noop := func() {}

	// Generic SOCKS5 proxy takes precedence; it covers non-Tor setups
	// like SSH tunnels and corporate egress proxies.
	if socks5 != "" {
		dialer, err := proxy.SOCKS5("tcp", socks5, nil, proxy.Direct)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		logger.Info("using SOCKS5 proxy", "address", socks5)
		return dialer, noop, nil
	}

	if !cfg.UseTor {
		// Direct TCP connections.
		return nil, noop, nil
	}

	if cfg.UseExternalTor {
		client, err := tor.NewClient(cfg.TorProxyAddress, cfg.Timeout)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create Tor client: %w", err)
		}

		status := client.CheckConnection(ctx)
		if status != tor.ProxyStatusOK {
			return nil, noop, fmt.Errorf("tor proxy check failed: %s (make sure Tor is running at %s)",
				status, cfg.TorProxyAddress)
		}

		logger.Info("Tor proxy connection verified", "address", cfg.TorProxyAddress)
		return client.Dialer(), noop, nil
	}

	// Start embedded Tor daemon (default when --tor is given).
	client, embeddedTor, err := startEmbeddedTor(ctx, cfg, logger)
	if err != nil {
		return nil, noop, err
	}

	cleanup := func() {
		logger.Info("stopping embedded Tor daemon...")
		if err := embeddedTor.Stop(); err != nil {
			logger.Error("failed to stop embedded Tor", "error", err)
		}
	}

	return client.Dialer(), cleanup, nil
}

// newFetcher builds the gopher fetcher for the resolved dialer and the
// configured exchange limits.
func newFetcher(dialer proxy.Dialer, cfg *config.Config) *protocol.GopherFetcher {
	return protocol.NewGopherFetcher(dialer,
		protocol.WithTimeout(cfg.Timeout),
		protocol.WithMaxResponseSize(cfg.MaxResponseSize),
	)
}

// startEmbeddedTor starts an embedded Tor daemon using tornago.
// Returns the Tor client and embedded Tor manager on success.
func startEmbeddedTor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*tor.Client, *tor.EmbeddedTor, error) {
	fmt.Println("Starting embedded Tor daemon...")
	fmt.Printf("This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

	embeddedTor := tor.NewEmbeddedTor(
		tor.WithStartupTimeout(cfg.TorStartupTimeout),
	)

	// Start the embedded Tor daemon
	if err := embeddedTor.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to start embedded Tor: %w", err)
	}

	logger.Info("embedded Tor daemon started",
		"socksAddr", embeddedTor.SocksAddr(),
		"controlAddr", embeddedTor.ControlAddr(),
	)

	fmt.Printf("Embedded Tor daemon started successfully!\n")
	fmt.Printf("SOCKS proxy: %s\n\n", embeddedTor.SocksAddr())

	// Create a client using the embedded Tor's SOCKS proxy
	client, err := embeddedTor.NewClient(cfg.Timeout)
	if err != nil {
		_ = embeddedTor.Stop() //nolint:errcheck // Best effort cleanup
		return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
	}

	// Verify the connection
	status := client.CheckConnection(ctx)
	if status != tor.ProxyStatusOK {
		_ = embeddedTor.Stop() //nolint:errcheck // Best effort cleanup
		return nil, nil, fmt.Errorf("embedded Tor proxy check failed: %s", status)
	}

	return client, embeddedTor, nil
}
