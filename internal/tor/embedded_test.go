package tor

import (
	"strings"
	"testing"
	"time"
)

// TestNewEmbeddedTor tests construction of the embedded daemon manager.
// Nothing here launches a real Tor process; bootstrap is covered by the
// guarded integration test in cmd.
func TestNewEmbeddedTor(t *testing.T) {
	t.Parallel()

	t.Run("default startup timeout is three minutes", func(t *testing.T) {
		t.Parallel()

		embedded := NewEmbeddedTor()
		if embedded == nil {
			t.Fatal("expected non-nil EmbeddedTor")
		}
		if embedded.startupTimeout != 3*time.Minute {
			t.Errorf("got startup timeout %v, want 3m", embedded.startupTimeout)
		}
	})

	t.Run("WithStartupTimeout overrides the default", func(t *testing.T) {
		t.Parallel()

		embedded := NewEmbeddedTor(WithStartupTimeout(45 * time.Second))
		if embedded.startupTimeout != 45*time.Second {
			t.Errorf("got startup timeout %v, want 45s", embedded.startupTimeout)
		}
	})
}

// TestEmbeddedTorBeforeStart tests the manager's surface while no daemon
// is running, which is the state every command starts from.
func TestEmbeddedTorBeforeStart(t *testing.T) {
	t.Parallel()

	t.Run("addresses are empty", func(t *testing.T) {
		t.Parallel()

		embedded := NewEmbeddedTor()
		if got := embedded.SocksAddr(); got != "" {
			t.Errorf("got SocksAddr %q, want empty", got)
		}
		if got := embedded.ControlAddr(); got != "" {
			t.Errorf("got ControlAddr %q, want empty", got)
		}
	})

	t.Run("IsRunning reports false", func(t *testing.T) {
		t.Parallel()

		embedded := NewEmbeddedTor()
		if embedded.IsRunning() {
			t.Error("expected IsRunning to be false before start")
		}
	})

	t.Run("Stop is idempotent on an unstarted manager", func(t *testing.T) {
		t.Parallel()

		embedded := NewEmbeddedTor()
		for i := 0; i < 2; i++ {
			if err := embedded.Stop(); err != nil {
				t.Errorf("Stop call %d: unexpected error: %v", i+1, err)
			}
		}
	})

	t.Run("NewClient refuses to dial without a daemon", func(t *testing.T) {
		t.Parallel()

		embedded := NewEmbeddedTor()
		_, err := embedded.NewClient(30 * time.Second)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "not running") {
			t.Errorf("got error %q, expected it to say the daemon is not running", err)
		}
	})
}
