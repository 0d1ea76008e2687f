package marketing

import (
	"net/url"
	"strings"
)

var videoHosts = []string{"youtube.com", "youtu.be", "vimeo.com"}

// IsVideoURL reports whether the link points at a known video host.
func IsVideoURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	for _, known := range videoHosts {
		if host == known || strings.HasSuffix(host, "."+known) {
			return true
		}
	}
	return false
}

// EmbedURL rewrites a YouTube watch link into its embed form for iframe
// playback. Other video hosts pass through unchanged.
func EmbedURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return raw
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")

	switch {
	case host == "youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return "https://www.youtube.com/embed/" + id
		}
	case host == "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return "https://www.youtube.com/embed/" + id
		}
	}
	return raw
}

// PrimaryVideoURL returns the first link matching a video host, or "".
func PrimaryVideoURL(urls []string) string {
	for _, raw := range urls {
		if IsVideoURL(raw) {
			return raw
		}
	}
	return ""
}
