// Package media turns provider video URLs into embeddable player URLs.
package media

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Provider tags the video host a URL belongs to.
type Provider string

const (
	ProviderYouTube  Provider = "youtube"
	ProviderFacebook Provider = "facebook"
	ProviderVimeo    Provider = "vimeo"
	ProviderTikTok   Provider = "tiktok"
	ProviderGeneric  Provider = "generic"
)

const (
	youTubeEmbed   = "https://www.youtube.com/embed/%s?autoplay=1"
	facebookPlugin = "https://www.facebook.com/plugins/video.php"
	vimeoPlayer    = "https://player.vimeo.com/video/"
)

var (
	youTubeID = regexp.MustCompile(`(?:[?&]v=|youtu\.be/|/embed/|/shorts/)([A-Za-z0-9_-]+)`)
	vimeoID   = regexp.MustCompile(`vimeo\.com/(?:[^?#]*/)?(\d+)`)
)

// Reference is the derived, never persisted, embeddable form of a raw URL.
// An empty EmbedURL means the URL is not embeddable.
type Reference struct {
	Provider Provider `json:"provider"`
	EmbedURL string   `json:"embed_url"`
}

// Resolve classifies raw and computes its canonical embed URL. Providers are
// tried in a fixed order because host markers can overlap. Resolve is
// idempotent: resolving an EmbedURL yields the same EmbedURL.
func Resolve(raw string) Reference {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Reference{Provider: ProviderGeneric}
	}
	lower := strings.ToLower(raw)

	switch {
	case strings.Contains(lower, "youtube.com") || strings.Contains(lower, "youtu.be"):
		ref := Reference{Provider: ProviderYouTube}
		if m := youTubeID.FindStringSubmatch(raw); m != nil {
			ref.EmbedURL = fmt.Sprintf(youTubeEmbed, m[1])
		}
		return ref

	case strings.Contains(lower, "facebook.com") || strings.Contains(lower, "fb.watch"):
		if strings.HasPrefix(lower, facebookPlugin) {
			return Reference{Provider: ProviderFacebook, EmbedURL: raw}
		}
		return Reference{
			Provider: ProviderFacebook,
			EmbedURL: facebookPlugin + "?href=" + url.QueryEscape(raw) + "&show_text=false&width=500",
		}

	case strings.Contains(lower, "vimeo.com"):
		ref := Reference{Provider: ProviderVimeo}
		if m := vimeoID.FindStringSubmatch(raw); m != nil {
			ref.EmbedURL = vimeoPlayer + m[1]
		}
		return ref

	case strings.Contains(lower, "tiktok.com"):
		return Reference{Provider: ProviderTikTok, EmbedURL: raw}
	}

	return Reference{Provider: ProviderGeneric, EmbedURL: raw}
}

// ResolveEmbed returns the canonical embed URL for raw, or "" when raw is not
// embeddable. It never fails.
func ResolveEmbed(raw string) string {
	return Resolve(raw).EmbedURL
}
