package tui

import (
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-forage/internal/forage"
)

func TestNewSSHServerRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultSSHServerConfig()
	cfg.Engine = forage.Config{}

	if _, err := NewSSHServer(cfg, log.New(io.Discard)); err == nil {
		t.Error("NewSSHServer() should fail for an invalid experiment config")
	}
}

func TestSSHServerReturnsListenError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() failed: %v", err)
	}
	defer busy.Close()

	dir := t.TempDir()
	cfg := DefaultSSHServerConfig()
	cfg.Address = busy.Addr().String()
	cfg.HostKeyPath = filepath.Join(dir, "host_key")
	cfg.DBPath = filepath.Join(dir, "sessions.db")
	cfg.ExportDir = filepath.Join(dir, "logs")
	cfg.Engine = testEngineConfig()

	srv, err := NewSSHServer(cfg, log.New(io.Discard))
	if err != nil {
		t.Fatalf("NewSSHServer() failed: %v", err)
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.serve(make(chan os.Signal))
	}()

	select {
	case err := <-errc:
		if err == nil {
			t.Error("serve() = nil, expected the listen error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve() kept blocking after the listener failed")
	}
}
