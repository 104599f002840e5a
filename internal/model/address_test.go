package model

import (
	"errors"
	"testing"
)

func TestParseAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		url          string
		wantHost     string
		wantPort     int
		wantSelector string
		wantType     ItemType
		wantErr      error
	}{
		{
			name:         "root menu with default port",
			url:          "gopher://gopher.floodgap.com/1/",
			wantHost:     "gopher.floodgap.com",
			wantPort:     70,
			wantSelector: "/1/",
			wantType:     ItemNone,
		},
		{
			name:         "explicit port",
			url:          "gopher://gopher.floodgap.com:7070/1/",
			wantHost:     "gopher.floodgap.com",
			wantPort:     7070,
			wantSelector: "/1/",
			wantType:     ItemNone,
		},
		{
			name:         "no selector",
			url:          "gopher://gopher.floodgap.com",
			wantHost:     "gopher.floodgap.com",
			wantPort:     70,
			wantSelector: "",
			wantType:     ItemNone,
		},
		{
			name:         "bare trailing slash",
			url:          "gopher://gopher.floodgap.com/",
			wantHost:     "gopher.floodgap.com",
			wantPort:     70,
			wantSelector: "/",
			wantType:     ItemNone,
		},
		{
			name:         "item type carried in query",
			url:          "gopher://gopher.floodgap.com:70/0/gopher/proxy?gopher_type=0",
			wantHost:     "gopher.floodgap.com",
			wantPort:     70,
			wantSelector: "/0/gopher/proxy",
			wantType:     ItemText,
		},
		{
			name:         "image type in query",
			url:          "gopher://example.org/images/cat.jpg?gopher_type=I",
			wantHost:     "example.org",
			wantPort:     70,
			wantSelector: "/images/cat.jpg",
			wantType:     ItemJPEG,
		},
		{
			name:         "uppercase scheme accepted",
			url:          "GOPHER://example.org/1/",
			wantHost:     "example.org",
			wantPort:     70,
			wantSelector: "/1/",
			wantType:     ItemNone,
		},
		{
			name:         "selector keeps embedded query-like text",
			url:          "gopher://example.org/7/search%20docs",
			wantHost:     "example.org",
			wantPort:     70,
			wantSelector: "/7/search%20docs",
			wantType:     ItemNone,
		},
		{
			name:    "empty URL",
			url:     "",
			wantErr: ErrEmptyAddress,
		},
		{
			name:    "missing scheme separator",
			url:     "gopher.floodgap.com/1/",
			wantErr: ErrInvalidAddress,
		},
		{
			name:    "wrong scheme",
			url:     "https://example.com/",
			wantErr: ErrInvalidAddress,
		},
		{
			name:    "empty host",
			url:     "gopher:///1/",
			wantErr: ErrInvalidAddress,
		},
		{
			name:    "non-numeric port",
			url:     "gopher://example.org:banana/",
			wantErr: ErrInvalidPort,
		},
		{
			name:    "port zero",
			url:     "gopher://example.org:0/",
			wantErr: ErrInvalidPort,
		},
		{
			name:    "port out of range",
			url:     "gopher://example.org:70000/",
			wantErr: ErrInvalidPort,
		},
		{
			name:    "multi-character item type",
			url:     "gopher://example.org/1/?gopher_type=10",
			wantErr: ErrInvalidItemType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			addr, err := ParseAddress(tt.url)

			if tt.wantErr != nil {
				if err == nil {
					t.Errorf("expected error %v, got nil", tt.wantErr)
				} else if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if addr.Host() != tt.wantHost {
				t.Errorf("host = %q, want %q", addr.Host(), tt.wantHost)
			}
			if addr.Port() != tt.wantPort {
				t.Errorf("port = %d, want %d", addr.Port(), tt.wantPort)
			}
			if addr.Selector() != tt.wantSelector {
				t.Errorf("selector = %q, want %q", addr.Selector(), tt.wantSelector)
			}
			if addr.ItemType() != tt.wantType {
				t.Errorf("item type = %q, want %q", addr.ItemType(), tt.wantType)
			}
		})
	}
}

func TestGopherAddress_Methods(t *testing.T) {
	t.Parallel()

	addr := MustParseAddress("gopher://gopher.floodgap.com/1/?gopher_type=1")

	t.Run("String reconstructs canonical URL", func(t *testing.T) {
		t.Parallel()
		want := "gopher://gopher.floodgap.com:70/1/?gopher_type=1"
		if got := addr.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	})

	t.Run("String omits absent item type", func(t *testing.T) {
		t.Parallel()
		plain := MustParseAddress("gopher://gopher.floodgap.com/1/")
		want := "gopher://gopher.floodgap.com:70/1/"
		if got := plain.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	})

	t.Run("HostPort joins host and port", func(t *testing.T) {
		t.Parallel()
		if got := addr.HostPort(); got != "gopher.floodgap.com:70" {
			t.Errorf("HostPort() = %q", got)
		}
	})

	t.Run("WithItemType returns modified copy", func(t *testing.T) {
		t.Parallel()
		img := addr.WithItemType(ItemPNG)
		if img.ItemType() != ItemPNG {
			t.Errorf("copy item type = %q, want p", img.ItemType())
		}
		if addr.ItemType() != ItemMenu {
			t.Errorf("original mutated: item type = %q", addr.ItemType())
		}
	})

	t.Run("Equals ignores item type", func(t *testing.T) {
		t.Parallel()
		other := MustParseAddress("gopher://gopher.floodgap.com:70/1/?gopher_type=0")
		if !addr.Equals(other) {
			t.Error("expected addresses to be equal regardless of item type")
		}
		different := MustParseAddress("gopher://gopher.floodgap.com/0/")
		if addr.Equals(different) {
			t.Error("expected addresses with different selectors to differ")
		}
	})

	t.Run("IsZero returns true for zero value", func(t *testing.T) {
		t.Parallel()
		var zero GopherAddress
		if !zero.IsZero() {
			t.Error("expected zero value to be zero")
		}
		if addr.IsZero() {
			t.Error("expected parsed address to not be zero")
		}
	})
}

func TestNewGopherAddress(t *testing.T) {
	t.Parallel()

	t.Run("valid components", func(t *testing.T) {
		t.Parallel()
		addr, err := NewGopherAddress("example.org", 70, "/1/docs", ItemMenu)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := addr.String(); got != "gopher://example.org:70/1/docs?gopher_type=1" {
			t.Errorf("String() = %q", got)
		}
	})

	t.Run("empty host rejected", func(t *testing.T) {
		t.Parallel()
		if _, err := NewGopherAddress("", 70, "", ItemNone); !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("expected ErrInvalidAddress, got %v", err)
		}
	})

	t.Run("out of range port rejected", func(t *testing.T) {
		t.Parallel()
		if _, err := NewGopherAddress("example.org", 0, "", ItemNone); !errors.Is(err, ErrInvalidPort) {
			t.Errorf("expected ErrInvalidPort, got %v", err)
		}
	})
}

func TestMustParseAddress(t *testing.T) {
	t.Parallel()

	t.Run("valid URL does not panic", func(t *testing.T) {
		t.Parallel()
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("unexpected panic: %v", r)
			}
		}()
		_ = MustParseAddress("gopher://gopher.floodgap.com/1/")
	})

	t.Run("invalid URL panics", func(t *testing.T) {
		t.Parallel()
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected panic for invalid URL")
			}
		}()
		_ = MustParseAddress("not-a-gopher-url")
	})
}
