package canvas

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseNextLink returns the rel="next" target of an RFC 8288 Link header.
// An empty header, or one without a next entry, yields "" and no error.
// A header that is present but malformed is an error.
func ParseNextLink(header string) (string, error) {
	rest := strings.TrimSpace(header)

	for {
		rest = strings.TrimLeft(rest, " \t,")
		if rest == "" {
			return "", nil
		}
		if rest[0] != '<' {
			return "", fmt.Errorf("link entry %q does not start with '<'", rest)
		}

		end := strings.IndexByte(rest, '>')
		if end < 0 {
			return "", fmt.Errorf("unterminated link target in %q", rest)
		}
		target := rest[1:end]
		rest = rest[end+1:]

		params := rest
		if next := strings.IndexByte(rest, '<'); next >= 0 {
			params = rest[:next]
			rest = rest[next:]
		} else {
			rest = ""
		}

		if !hasNextRel(params) {
			continue
		}
		if _, err := url.Parse(target); err != nil || target == "" {
			return "", fmt.Errorf("invalid next link target %q", target)
		}
		return target, nil
	}
}

func hasNextRel(params string) bool {
	for _, param := range strings.Split(params, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "rel") {
			continue
		}
		value = strings.Trim(value, `", `)
		for _, rel := range strings.Fields(value) {
			if strings.EqualFold(rel, "next") {
				return true
			}
		}
	}
	return false
}
