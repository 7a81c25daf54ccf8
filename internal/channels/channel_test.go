package channels

import (
	"testing"

	"github.com/nextlevelbuilder/tgvault/internal/bus"
)

func TestIsAllowed(t *testing.T) {
	tests := []struct {
		name      string
		allowList []string
		senderID  string
		want      bool
	}{
		{"empty allowlist accepts all", nil, "123", true},
		{"exact id match", []string{"123"}, "123", true},
		{"id mismatch", []string{"123"}, "456", false},
		{"compound sender, id in list", []string{"123"}, "123|alice", true},
		{"compound sender, username in list", []string{"alice"}, "123|alice", true},
		{"username with at prefix", []string{"@alice"}, "123|alice", true},
		{"compound allowlist entry id side", []string{"123|alice"}, "123", true},
		{"compound allowlist entry username side", []string{"123|alice"}, "alice", true},
		{"compound both sides", []string{"123|alice"}, "123|alice", true},
		{"wrong username", []string{"@bob"}, "123|alice", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewBaseChannel("telegram", bus.New(1), tt.allowList)
			if got := c.IsAllowed(tt.senderID); got != tt.want {
				t.Errorf("IsAllowed(%q) with %v = %v, want %v", tt.senderID, tt.allowList, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("Truncate short = %q", got)
	}
	if got := Truncate("hello world", 5); got != "hello..." {
		t.Errorf("Truncate long = %q", got)
	}
}

func TestFloodLimiter(t *testing.T) {
	r := NewFloodLimiter()
	for i := 0; i < floodMaxHits; i++ {
		if !r.Allow("sender") {
			t.Fatalf("request %d denied inside window budget", i)
		}
	}
	if r.Allow("sender") {
		t.Fatalf("request over budget allowed")
	}
	if !r.Allow("other") {
		t.Fatalf("independent sender denied")
	}
}
