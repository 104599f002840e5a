package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/felipeandrian/navfep-gopher/internal/browser"
	"github.com/felipeandrian/navfep-gopher/internal/config"
	"github.com/felipeandrian/navfep-gopher/internal/model"
	"github.com/felipeandrian/navfep-gopher/internal/render"
)

// shutdownTimeout bounds how long in-flight gateway requests may run
// after a shutdown signal before the listener is torn down.
const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve gopherspace to web browsers through a local HTTP gateway",
		Long: `Serve starts a local HTTP gateway that renders gopher pages as HTML
for any web browser. Menu links are rewritten to point back at the
gateway, so clicking through gopherspace works without gopher support
in the browser.

Routes:
  GET /gopher?url=<gopher-url>  Navigate to the URL and render the page
  GET /                         Redirect to the configured home hole
  GET /healthz                  Liveness probe

The gateway binds to loopback by default. It renders remote content
verbatim apart from HTML escaping and is not meant to be exposed to
untrusted networks.

Examples:
  # Serve on the default address and browse http://127.0.0.1:7070/
  navfep-gopher serve

  # Different listen address and home hole
  navfep-gopher serve --addr 127.0.0.1:8080 --home gopher://gopher.example.org

  # Gateway into an onion hole through an external Tor proxy
  navfep-gopher serve --external-tor 127.0.0.1:9050 --home gopher://example3bnif4vmg.onion`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().String("addr", config.DefaultGatewayAddress,
		"Listen address in host:port format")
	cmd.Flags().String("home", "gopher://gopher.floodgap.com",
		"Gopher URL the root path redirects to")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Idle timeout for each fetch")
	cmd.Flags().Int64("max-size", config.DefaultMaxResponseSize,
		"Maximum response size in bytes (0 = unlimited)")
	cmd.Flags().String("charset", config.DefaultCharset,
		"Charset for decoding menus and text (utf-8, latin-1, cp437, koi8-r, ...)")

	addTransportFlags(cmd)

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()

	var err error

	cfg.GatewayAddress, err = cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}

	home, err := cmd.Flags().GetString("home")
	if err != nil {
		return err
	}

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

	socks5, err := transportFromFlags(cmd, cfg)
	if err != nil {
		return err
	}

	// The home hole stands in as the target: it satisfies validation and
	// lets an onion home enable Tor the same way crawl targets do.
	cfg.Targets = []string{home}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if _, err := model.ParseAddress(home); err != nil {
		return fmt.Errorf("invalid home URL %q: %w", home, err)
	}

	enc, err := render.LookupCharset(cfg.Charset)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	verbose := getVerboseFlag(cmd)
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	enableTorForOnionTargets(cfg, socks5, logger)

	dialer, cleanup, err := setupDialer(ctx, cfg, socks5, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	renderer := render.NewRenderer(
		render.WithLinkWriter(gatewayLink),
		render.WithEncoding(enc),
	)
	navigator := browser.NewNavigator(newFetcher(dialer, cfg), renderer,
		browser.WithLogger(logger))

	gw := &gateway{
		navigator: navigator,
		home:      home,
		logger:    logger,
	}

	return runGateway(ctx, cfg.GatewayAddress, gw, verbose, logger)
}

// runGateway serves the gateway routes until ctx is cancelled, then shuts
// the listener down gracefully.
func runGateway(ctx context.Context, addr string, gw *gateway, verbose bool, logger *slog.Logger) error {
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           gw.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	fmt.Printf("Gateway listening on http://%s (home: %s)\n", addr, gw.home)
	logger.Info("gateway started", "addr", addr, "home", gw.home)

	select {
	case err := <-errCh:
		return fmt.Errorf("gateway listener failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down gateway")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("gateway shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// gateway holds the shared navigation state behind the HTTP routes. The
// navigator is safe for concurrent requests; identical in-flight URLs are
// deduplicated into one fetch.
type gateway struct {
	navigator *browser.Navigator
	home      string
	logger    *slog.Logger
}

// routes builds the gin engine serving the gateway endpoints.
func (g *gateway) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(g.logger))

	router.GET("/", g.handleHome)
	router.GET("/gopher", g.handleGopher)
	router.GET("/healthz", g.handleHealthz)

	return router
}

// handleHome redirects the root path to the configured home hole.
func (g *gateway) handleHome(c *gin.Context) {
	c.Redirect(http.StatusFound, "/gopher?url="+url.QueryEscape(g.home))
}

// handleGopher navigates to the URL from the query string and renders the
// resulting document. Navigation failures arrive as error pages, so the
// route answers 200 for everything except a missing url parameter.
func (g *gateway) handleGopher(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.String(http.StatusBadRequest, "missing url query parameter")
		return
	}

	doc := g.navigator.Navigate(c.Request.Context(), rawURL)

	var sink browser.Sink = httpSink{c}
	sink.Display(doc.Markup, doc.BaseURL)
}

// handleHealthz reports liveness.
func (g *gateway) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// httpSink displays a document as one HTTP response. The page base URL
// travels in a header; the markup itself is self-contained.
type httpSink struct {
	c *gin.Context
}

// Display writes the document to the response.
func (s httpSink) Display(markup, baseURL string) {
	if baseURL != "" {
		s.c.Header("X-Gopher-Base-URL", baseURL)
	}
	s.c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(markup))
}

// gatewayLink rewrites a menu entry's href to point back at the gateway's
// /gopher route. Web links ('h' items carrying URL: selectors) never pass
// through the link writer and keep their direct destination.
func gatewayLink(entry model.MenuEntry) string {
	return "/gopher?url=" + url.QueryEscape(render.GopherLink(entry))
}

// requestLogger logs each request at debug level once the response is
// written.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start).Round(time.Microsecond),
		)
	}
}
