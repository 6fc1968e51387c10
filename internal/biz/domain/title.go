package domain

import (
	"strings"
	"unicode"
)

// TitleRule matches a normalized notification title against a normalized group name
type TitleRule func(title, group string) bool

// TitleRules are the title formats the chat app uses for group messages, checked in order
var TitleRules = []TitleRule{
	TitleEquals,
	TitleHasColonPrefix,
	TitleHasCountPrefix,
	TitleHasInSuffix,
}

// TitleEquals matches a plain group name
func TitleEquals(title, group string) bool {
	return title == group
}

// TitleHasColonPrefix matches "Group: sender"
func TitleHasColonPrefix(title, group string) bool {
	return strings.HasPrefix(title, group+":")
}

// TitleHasCountPrefix matches "Group (3 messages)"
func TitleHasCountPrefix(title, group string) bool {
	return strings.HasPrefix(title, group+" (")
}

// TitleHasInSuffix matches "Sender in Group"
func TitleHasInSuffix(title, group string) bool {
	return strings.Contains(title, " in "+group)
}

// NormalizeTitle trims, lowercases and collapses ASCII whitespace runs to a single space.
// Non-ASCII spaces such as NBSP are trimmed at the ends but kept inside the title.
func NormalizeTitle(s string) string {
	s = strings.ToLower(strings.TrimFunc(s, unicode.IsSpace))
	return strings.Join(strings.FieldsFunc(s, isASCIISpace), " ")
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// TitleMatchesGroup checks if a notification title identifies the group
func TitleMatchesGroup(title, group string) bool {
	g := NormalizeTitle(group)
	if g == "" {
		return false
	}
	return matchNormalized(NormalizeTitle(title), g)
}

// MatchingGroup returns the first group the title identifies
func MatchingGroup(title string, groups []string) (string, bool) {
	t := NormalizeTitle(title)
	for _, group := range groups {
		g := NormalizeTitle(group)
		if g != "" && matchNormalized(t, g) {
			return group, true
		}
	}
	return "", false
}

func matchNormalized(title, group string) bool {
	for _, rule := range TitleRules {
		if rule(title, group) {
			return true
		}
	}
	return false
}
