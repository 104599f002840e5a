package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/felipeandrian/navfep-gopher/internal/browser"
	"github.com/felipeandrian/navfep-gopher/internal/config"
	"github.com/felipeandrian/navfep-gopher/internal/model"
	"github.com/felipeandrian/navfep-gopher/internal/render"
)

// gatewayFetcher serves canned gopher responses keyed by selector.
type gatewayFetcher struct {
	responses map[string][]byte
}

func (f *gatewayFetcher) Fetch(_ context.Context, addr model.GopherAddress) ([]byte, error) {
	if body, ok := f.responses[addr.Selector()]; ok {
		return body, nil
	}
	return nil, errors.New("no such selector")
}

func (f *gatewayFetcher) Protocol() string { return "gopher" }

func (f *gatewayFetcher) DefaultPort() int { return 70 }

// newTestGateway builds a gateway backed by a canned fetcher.
func newTestGateway() *gateway {
	gin.SetMode(gin.ReleaseMode)

	fetcher := &gatewayFetcher{
		responses: map[string][]byte{
			"": []byte("iWelcome to the hole\t\thole.example.org\t70\r\n" +
				"0About this hole\t/about.txt\thole.example.org\t70\r\n" +
				"1Phlog\t/phlog\thole.example.org\t70\r\n" +
				".\r\n"),
			"/about.txt": []byte("A small gopher hole.\r\n"),
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	renderer := render.NewRenderer(render.WithLinkWriter(gatewayLink))
	navigator := browser.NewNavigator(fetcher, renderer, browser.WithLogger(logger))

	return &gateway{
		navigator: navigator,
		home:      "gopher://hole.example.org",
		logger:    logger,
	}
}

// TestNewServeCmd tests the serve command creation.
func TestNewServeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewServeCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "serve" {
			t.Errorf("expected use 'serve', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has addr flag with gateway default", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("addr")
		if flag == nil {
			t.Fatal("expected addr flag")
		}
		if flag.DefValue != config.DefaultGatewayAddress {
			t.Errorf("expected default %q, got %q", config.DefaultGatewayAddress, flag.DefValue)
		}
	})

	t.Run("has home flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("home")
		if flag == nil {
			t.Fatal("expected home flag")
		}
		if !strings.HasPrefix(flag.DefValue, "gopher://") {
			t.Errorf("expected gopher URL default, got %q", flag.DefValue)
		}
	})

	t.Run("has timeout flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("timeout") == nil {
			t.Fatal("expected timeout flag")
		}
	})

	t.Run("has charset flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("charset")
		if flag == nil {
			t.Fatal("expected charset flag")
		}
		if flag.DefValue != config.DefaultCharset {
			t.Errorf("expected default %q, got %q", config.DefaultCharset, flag.DefValue)
		}
	})

	t.Run("has transport flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"socks5", "tor", "external-tor", "tor-timeout"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})
}

// TestGatewayLink tests the gateway link writer.
func TestGatewayLink(t *testing.T) {
	t.Parallel()

	entry := model.MenuEntry{
		Type:     model.ItemMenu,
		Display:  "Docs",
		Selector: "/docs",
		Host:     "hole.example.org",
		Port:     70,
	}

	got := gatewayLink(entry)
	want := "/gopher?url=gopher%3A%2F%2Fhole.example.org%3A70%2Fdocs%3Fgopher_type%3D1"
	if got != want {
		t.Errorf("gatewayLink() = %q, want %q", got, want)
	}
}

// TestGatewayRoutes tests the gateway HTTP endpoints.
func TestGatewayRoutes(t *testing.T) {
	t.Parallel()

	router := newTestGateway().routes()

	t.Run("healthz reports ok", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		if !strings.Contains(w.Body.String(), "ok") {
			t.Errorf("expected body to contain 'ok', got %q", w.Body.String())
		}
	})

	t.Run("root redirects to home hole", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusFound {
			t.Errorf("expected status %d, got %d", http.StatusFound, w.Code)
		}
		location := w.Header().Get("Location")
		if location != "/gopher?url=gopher%3A%2F%2Fhole.example.org" {
			t.Errorf("unexpected redirect location %q", location)
		}
	})

	t.Run("missing url parameter is rejected", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/gopher", nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("renders menu with links rewritten through the gateway", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet,
			"/gopher?url=gopher%3A%2F%2Fhole.example.org", nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}

		body := w.Body.String()
		if !strings.Contains(body, "About this hole") {
			t.Error("expected rendered menu to contain the entry display text")
		}
		if !strings.Contains(body, `href="/gopher?url=`) {
			t.Error("expected menu links to point back at the gateway")
		}
		if strings.Contains(body, `href="gopher://`) {
			t.Error("expected no direct gopher:// links in gateway output")
		}

		if got := w.Header().Get("X-Gopher-Base-URL"); got != "gopher://hole.example.org:70" {
			t.Errorf("expected base URL header 'gopher://hole.example.org:70', got %q", got)
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("expected text/html content type, got %q", ct)
		}
	})

	t.Run("failed fetch still renders a page", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet,
			"/gopher?url=gopher%3A%2F%2Fhole.example.org%2Fmissing", nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		if !strings.Contains(w.Body.String(), "Error accessing Gopher") {
			t.Error("expected error page markup in response")
		}
	})

	t.Run("invalid gopher url renders error page", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet,
			"/gopher?url=http%3A%2F%2Fweb.example.org", nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		if !strings.Contains(w.Body.String(), "Error accessing Gopher") {
			t.Error("expected error page markup in response")
		}
	})
}

// TestRunServeCmdInvalidHome tests serve with an unparseable home URL.
func TestRunServeCmdInvalidHome(t *testing.T) {
	t.Parallel()

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"serve", "--home", "http://not-gopher.example.org"})

	err := rootCmd.Execute()
	if err == nil {
		t.Error("expected error for non-gopher home URL")
	}
	if !strings.Contains(err.Error(), "invalid home URL") {
		t.Errorf("expected 'invalid home URL' error, got: %v", err)
	}
}

// TestRunServeCmdUnknownCharset tests serve with an unknown charset name.
func TestRunServeCmdUnknownCharset(t *testing.T) {
	t.Parallel()

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"serve", "--charset", "ebcdic"})

	err := rootCmd.Execute()
	if err == nil {
		t.Error("expected error for unknown charset")
	}
	if !strings.Contains(err.Error(), "unknown charset") {
		t.Errorf("expected 'unknown charset' error, got: %v", err)
	}
}
