// ABOUTME: Tests for mDNS discovery
// ABOUTME: Tests manager defaults, entry conversion and lifecycle
package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/hashicorp/mdns"
)

func TestNewManagerDefaults(t *testing.T) {
	mgr := NewManager(Config{ServiceName: "Test Editor", Port: 8928})
	if mgr == nil {
		t.Fatal("expected manager to be created")
	}

	if mgr.config.Path != "/melonix" {
		t.Errorf("expected default path /melonix, got %s", mgr.config.Path)
	}
	if mgr.config.BrowseTimeout != 3*time.Second {
		t.Errorf("expected default browse timeout 3s, got %v", mgr.config.BrowseTimeout)
	}
	if mgr.Servers() == nil {
		t.Error("servers channel should not be nil")
	}
}

func TestToServerInfo(t *testing.T) {
	tests := []struct {
		name     string
		entry    *mdns.ServiceEntry
		expected string
	}{
		{"nil entry", nil, ""},
		{"no ipv4", &mdns.ServiceEntry{Name: "x", Port: 1}, ""},
		{"ipv4", &mdns.ServiceEntry{Name: "studio", AddrV4: net.IPv4(192, 168, 1, 20), Port: 8928}, "192.168.1.20:8928"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := toServerInfo(tt.entry)
			if tt.expected == "" {
				if info != nil {
					t.Errorf("expected nil, got %+v", info)
				}
				return
			}
			if info == nil || info.Addr() != tt.expected {
				t.Errorf("expected %s, got %+v", tt.expected, info)
			}
		})
	}
}

func TestStopCancelsContext(t *testing.T) {
	mgr := NewManager(Config{ServiceName: "Test Editor", Port: 8928})
	mgr.Stop()

	select {
	case <-mgr.ctx.Done():
	case <-time.After(time.Second):
		t.Error("expected context to be cancelled")
	}
}
