package filter

import (
	"fmt"
	"regexp"

	"golang.org/x/text/unicode/norm"
)

// DefaultRoomPatterns matches bridged rooms whose members are mirrored
// accounts of another network.
var DefaultRoomPatterns = []string{`#twitter_#.*`}

// PatternSet is a compiled list of ignore patterns.
// The zero value matches nothing.
type PatternSet struct {
	patterns []*regexp.Regexp
}

// Compile compiles every pattern, anchored at both ends.
// Empty patterns are skipped.
func Compile(patterns []string) (*PatternSet, error) {
	set := &PatternSet{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		re, err := regexp.Compile(`^(?:` + p + `)$`)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, p, err)
		}
		set.patterns = append(set.patterns, re)
	}
	return set, nil
}

// Len returns the number of compiled patterns.
func (s *PatternSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.patterns)
}

// Matches reports whether candidate is matched by any pattern in set.
// The candidate is NFC-normalized first so that visually identical
// identifiers match the same patterns.
func Matches(set *PatternSet, candidate string) bool {
	if set == nil {
		return false
	}
	candidate = norm.NFC.String(candidate)
	for _, re := range set.patterns {
		if re.MatchString(candidate) {
			return true
		}
	}
	return false
}

// Filter holds the member and room ignore sets of a run.
type Filter struct {
	Members *PatternSet
	Rooms   *PatternSet
}

// New compiles the member and room patterns. ownUserID, when not empty, is
// always ignored as a member so the operator account never enters the graph.
func New(memberPatterns, roomPatterns []string, ownUserID string) (*Filter, error) {
	members := append([]string(nil), memberPatterns...)
	if ownUserID != "" {
		members = append(members, regexp.QuoteMeta(norm.NFC.String(ownUserID)))
	}

	m, err := Compile(members)
	if err != nil {
		return nil, fmt.Errorf("member patterns: %w", err)
	}
	r, err := Compile(roomPatterns)
	if err != nil {
		return nil, fmt.Errorf("room patterns: %w", err)
	}
	return &Filter{Members: m, Rooms: r}, nil
}

// IgnoreMember reports whether userID must be left out of the graph.
func (f *Filter) IgnoreMember(userID string) bool {
	return Matches(f.Members, userID)
}

// IgnoreRoom reports whether the room alias must not be joined.
func (f *Filter) IgnoreRoom(alias string) bool {
	return Matches(f.Rooms, alias)
}
