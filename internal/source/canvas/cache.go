package canvas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

// cachedResponse is a stored GET response.
type cachedResponse struct {
	Body json.RawMessage `json:"body"`
	Next string          `json:"next,omitempty"`
}

// responseCache keeps GET responses on disk keyed by request URL. Entries
// are grouped by course so a mutation can drop every page of that course.
// A nil cache stores nothing.
type responseCache struct {
	d *diskv.Diskv
}

func newResponseCache(dir string, maxBytes uint64) *responseCache {
	if dir == "" {
		return nil
	}
	return &responseCache{d: diskv.New(diskv.Options{
		BasePath:          dir,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      maxBytes,
	})}
}

func (c *responseCache) get(url string) (cachedResponse, bool) {
	if c == nil {
		return cachedResponse{}, false
	}
	raw, err := c.d.Read(cacheKey(url))
	if err != nil {
		return cachedResponse{}, false
	}
	var r cachedResponse
	if err := json.Unmarshal(raw, &r); err != nil {
		return cachedResponse{}, false
	}
	return r, true
}

func (c *responseCache) put(url string, r cachedResponse) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.d.Write(cacheKey(url), raw)
}

func (c *responseCache) erase(url string) {
	if c == nil {
		return
	}
	// Erasing an absent key is not an error worth reporting.
	_ = c.d.Erase(cacheKey(url))
}

// eraseScope drops every entry stored under the scope of url.
func (c *responseCache) eraseScope(url string) int {
	if c == nil {
		return 0
	}
	var keys []string
	for key := range c.d.KeysPrefix(cacheScope(url)+scopeSeparator, nil) {
		keys = append(keys, key)
	}
	for _, key := range keys {
		_ = c.d.Erase(key)
	}
	return len(keys)
}

const scopeSeparator = "-"

var courseScopePattern = regexp.MustCompile(`/courses/(\d+)(/|$|\?)`)

// cacheScope names the group a URL is cached under: the course it
// belongs to, or "global".
func cacheScope(url string) string {
	if m := courseScopePattern.FindStringSubmatch(url); m != nil {
		return "course" + m[1]
	}
	return "global"
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return cacheScope(url) + scopeSeparator + hex.EncodeToString(sum[:])
}

func keyToPathTransform(key string) *diskv.PathKey {
	scope, _, _ := strings.Cut(key, scopeSeparator)
	return &diskv.PathKey{
		Path:     []string{scope},
		FileName: key,
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return pathKey.FileName
}
