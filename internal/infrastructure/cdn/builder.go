package cdn

import (
	"strings"

	"github.com/heavybid/auction-media/internal/config"
)

// Builder derives public delivery URLs from processed object keys.
type Builder struct {
	baseURL string
}

func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{baseURL: strings.TrimRight(cfg.CDNBaseURL, "/")}
}

// PublicURL returns the CDN URL for a processed object key, or an empty
// string when no CDN base is configured or the key is empty.
func (b *Builder) PublicURL(key string) string {
	if b.baseURL == "" || key == "" {
		return ""
	}
	return b.baseURL + "/" + strings.TrimLeft(key, "/")
}
