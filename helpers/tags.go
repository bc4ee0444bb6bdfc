package helpers

import (
	"fmt"
	"strings"
	"unicode"
)

// NormalizeTag slugifies a raw tag name: trimmed, lowercased, runs of
// non-alphanumeric characters collapsed to single hyphens. "Live Music "
// becomes "live-music".
func NormalizeTag(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// TagSet is the creation form's tag collection: capped, deduplicated after
// normalization, insertion-ordered.
type TagSet struct {
	tags []string
}

func NewTagSet() *TagSet {
	return &TagSet{}
}

// Add normalizes and inserts a tag. Empty results, duplicates and
// additions past the cap are rejected.
func (s *TagSet) Add(name string) (string, error) {
	normalized := NormalizeTag(name)
	if normalized == "" {
		return "", fmt.Errorf("tag name is empty")
	}
	for _, existing := range s.tags {
		if existing == normalized {
			return normalized, nil // already present, set unchanged
		}
	}
	if len(s.tags) >= MAX_TAGS {
		return "", fmt.Errorf("at most %d tags allowed", MAX_TAGS)
	}
	s.tags = append(s.tags, normalized)
	return normalized, nil
}

func (s *TagSet) Remove(name string) {
	normalized := NormalizeTag(name)
	for i, existing := range s.tags {
		if existing == normalized {
			s.tags = append(s.tags[:i], s.tags[i+1:]...)
			return
		}
	}
}

func (s *TagSet) Items() []string {
	out := make([]string, len(s.tags))
	copy(out, s.tags)
	return out
}

func (s *TagSet) Len() int {
	return len(s.tags)
}

func (s *TagSet) Clear() {
	s.tags = nil
}
