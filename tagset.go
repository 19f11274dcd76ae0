package sanpo

import "strings"

// TagSet is an immutable set of element names compared case-insensitively.
type TagSet struct {
	tags map[string]struct{}
}

// NewTagSet returns a set containing tags.
func NewTagSet(tags ...string) TagSet {
	s := TagSet{tags: make(map[string]struct{}, len(tags))}
	for _, t := range tags {
		s.tags[strings.ToLower(t)] = struct{}{}
	}
	return s
}

// DefaultIgnoredTags returns the elements whose content is never rendered.
func DefaultIgnoredTags() TagSet {
	return NewTagSet("script", "style", "noscript", "template")
}

// Contains reports whether tag is in the set, ignoring case.
func (s TagSet) Contains(tag string) bool {
	_, ok := s.tags[strings.ToLower(tag)]
	return ok
}

// Len returns the number of tags in the set.
func (s TagSet) Len() int {
	return len(s.tags)
}
