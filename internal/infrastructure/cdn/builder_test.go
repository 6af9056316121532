package cdn_test

import (
	"testing"

	"github.com/heavybid/auction-media/internal/config"
	"github.com/heavybid/auction-media/internal/infrastructure/cdn"
)

func TestBuilder_PublicURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		key  string
		want string
	}{
		{"plain join", "https://cdn.example.com", "abc/photo.jpg", "https://cdn.example.com/abc/photo.jpg"},
		{"trailing slash on base", "https://cdn.example.com/", "photo.jpg", "https://cdn.example.com/photo.jpg"},
		{"leading slash on key", "https://cdn.example.com", "/photo.jpg", "https://cdn.example.com/photo.jpg"},
		{"both slashes", "https://cdn.example.com/", "/photo.jpg", "https://cdn.example.com/photo.jpg"},
		{"no base configured", "", "photo.jpg", ""},
		{"empty key", "https://cdn.example.com", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := cdn.NewBuilder(&config.Config{CDNBaseURL: tt.base})
			if got := b.PublicURL(tt.key); got != tt.want {
				t.Errorf("PublicURL(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
