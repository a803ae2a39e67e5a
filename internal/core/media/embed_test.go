package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveEmbed(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     string
		provider Provider
	}{
		{"youtube watch", "https://www.youtube.com/watch?v=abc123", "https://www.youtube.com/embed/abc123?autoplay=1", ProviderYouTube},
		{"youtube watch with extra params", "https://youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=42", "https://www.youtube.com/embed/dQw4w9WgXcQ?autoplay=1", ProviderYouTube},
		{"youtube short link", "https://youtu.be/abc123", "https://www.youtube.com/embed/abc123?autoplay=1", ProviderYouTube},
		{"youtube short link with query", "https://youtu.be/abc123?si=xyz", "https://www.youtube.com/embed/abc123?autoplay=1", ProviderYouTube},
		{"youtube without id", "https://www.youtube.com/channel/", "", ProviderYouTube},
		{"facebook video", "https://www.facebook.com/church/videos/123/",
			"https://www.facebook.com/plugins/video.php?href=https%3A%2F%2Fwww.facebook.com%2Fchurch%2Fvideos%2F123%2F&show_text=false&width=500", ProviderFacebook},
		{"vimeo", "https://vimeo.com/76979871", "https://player.vimeo.com/video/76979871", ProviderVimeo},
		{"vimeo channel", "https://vimeo.com/channels/staffpicks/76979871", "https://player.vimeo.com/video/76979871", ProviderVimeo},
		{"vimeo without id", "https://vimeo.com/about", "", ProviderVimeo},
		{"tiktok", "https://www.tiktok.com/@church/video/7", "https://www.tiktok.com/@church/video/7", ProviderTikTok},
		{"generic", "https://cdn.example.org/live.m3u8", "https://cdn.example.org/live.m3u8", ProviderGeneric},
		{"not a url", "not a url", "not a url", ProviderGeneric},
		{"empty", "", "", ProviderGeneric},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ref := Resolve(tc.raw)
			assert.Equal(t, tc.want, ref.EmbedURL)
			assert.Equal(t, tc.provider, ref.Provider)
			assert.Equal(t, tc.want, ResolveEmbed(tc.raw))
		})
	}
}

func TestResolveEmbed_Idempotent(t *testing.T) {
	urls := []string{
		"https://www.youtube.com/watch?v=abc123",
		"https://youtu.be/abc123",
		"https://www.facebook.com/church/videos/123/",
		"https://fb.watch/abcDEF/",
		"https://vimeo.com/76979871",
		"https://www.tiktok.com/@church/video/7",
		"https://cdn.example.org/live.m3u8",
		"not a url",
	}
	for _, u := range urls {
		once := ResolveEmbed(u)
		assert.Equal(t, once, ResolveEmbed(once), u)
	}
}
