package assetid_test

import (
	"strings"
	"testing"

	"github.com/heavybid/auction-media/utils/assetid"
)

func TestNewGroup(t *testing.T) {
	id := assetid.NewGroup()
	if !strings.HasPrefix(id, assetid.GroupPrefix) {
		t.Errorf("NewGroup() = %q, want %q prefix", id, assetid.GroupPrefix)
	}
	if !assetid.IsGroup(id) {
		t.Errorf("IsGroup(%q) = false, want true", id)
	}
	if assetid.IsFile(id) {
		t.Errorf("IsFile(%q) = true for a group id", id)
	}
}

func TestNewFile(t *testing.T) {
	id := assetid.NewFile()
	if !strings.HasPrefix(id, assetid.FilePrefix) {
		t.Errorf("NewFile() = %q, want %q prefix", id, assetid.FilePrefix)
	}
	if !assetid.IsFile(id) {
		t.Errorf("IsFile(%q) = false, want true", id)
	}
}

func TestUniqueness(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := assetid.NewFile()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestIsGroup_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"empty", ""},
		{"wrong prefix", "mf_01h2xcejqtf2nbrexx3vqjhp41"},
		{"no prefix", "01h2xcejqtf2nbrexx3vqjhp41"},
		{"garbage after prefix", "ag_not-a-ulid"},
		{"prefix only", "ag_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if assetid.IsGroup(tt.value) {
				t.Errorf("IsGroup(%q) = true, want false", tt.value)
			}
		})
	}
}
