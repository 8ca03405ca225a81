package codec

import (
	"regexp"
	"strings"

	"skill-ladder/internal/domain/level"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

type levelName struct {
	name string
	key  string
}

// knownNames lists label, key and short code for every level in OrderIndex order.
func knownNames(levels []level.Level) []levelName {
	sorted := level.Sorted(levels)
	out := make([]levelName, 0, len(sorted)*3)
	for _, l := range sorted {
		for _, n := range []string{l.Label, l.Key, level.ShortCode(l.Key)} {
			n = strings.ToLower(strings.TrimSpace(n))
			if n == "" {
				continue
			}
			out = append(out, levelName{name: n, key: l.Key})
		}
	}
	return out
}

// ResolveHeading maps a level heading to a level key: exact match on a known
// name, then a legacy level name, then a substring match in either direction,
// and finally an ad-hoc key built from the heading itself. A heading wrapped in
// backticks is taken as a literal key.
func ResolveHeading(text string, levels []level.Level) string {
	if key, ok := literalKey(strings.TrimSpace(text)); ok {
		return key
	}
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return ""
	}
	names := knownNames(levels)

	for _, n := range names {
		if n.name == needle {
			return n.key
		}
	}

	if key, ok := level.LegacyToNew(needle); ok {
		return key
	}

	for _, n := range names {
		if strings.Contains(needle, n.name) || strings.Contains(n.name, needle) {
			return n.key
		}
	}

	return whitespaceRun.ReplaceAllString(needle, "_")
}

func literalKey(text string) (string, bool) {
	if len(text) < 3 || text[0] != '`' || text[len(text)-1] != '`' {
		return "", false
	}
	inner := text[1 : len(text)-1]
	if strings.Contains(inner, "`") {
		return "", false
	}
	return inner, true
}
