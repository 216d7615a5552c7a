package media

import (
	"fmt"
	"strings"
)

// ImageSizes are the rendition widths the image pipeline produces for every
// uploaded photo. Display code picks one; DefaultImageSize fits list views.
var ImageSizes = []int{150, 300, 720, 900, 1080, 1296}

// DefaultImageSize is used when no explicit rendition size is requested.
const DefaultImageSize = 300

// URLResolver turns storage keys into public URLs. It is pure and stateless:
// base URL + key + optional size suffix. Keys are stored bare on records and
// resolved only for display.
type URLResolver struct {
	base string
}

// NewURLResolver creates a resolver rooted at baseURL (the public bucket or
// CDN origin, e.g. "https://files.example.com").
func NewURLResolver(baseURL string) *URLResolver {
	return &URLResolver{base: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

// Image returns the URL of the sized webp rendition for an image key,
// e.g. "<base>/images/<uuid>_300.webp". An empty key resolves to "".
func (r *URLResolver) Image(key Key, size int) string {
	if key.IsZero() {
		return ""
	}
	if !validImageSize(size) {
		size = DefaultImageSize
	}
	return fmt.Sprintf("%s/%s_%d.webp", r.base, key, size)
}

// ImageSet returns every rendition URL for an image key, keyed by width.
func (r *URLResolver) ImageSet(key Key) map[int]string {
	set := make(map[int]string, len(ImageSizes))
	for _, size := range ImageSizes {
		set[size] = r.Image(key, size)
	}
	return set
}

// Audio returns the URL for an audio key. Audio keys carry their extension.
func (r *URLResolver) Audio(key Key) string {
	if key.IsZero() {
		return ""
	}
	return r.base + "/" + string(key)
}

// Video returns the URL for a video key.
func (r *URLResolver) Video(key Key) string {
	if key.IsZero() {
		return ""
	}
	return r.base + "/" + string(key)
}

func validImageSize(size int) bool {
	for _, s := range ImageSizes {
		if s == size {
			return true
		}
	}
	return false
}
