// Package rooms normalizes free-text room labels and resolves them against a
// property's known rooms.
package rooms

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vbonduro/renovo/internal/domain"
)

const Unknown = "Unknown"

// NormalizeRoomName trims s, turns underscores into spaces and title-cases
// each word. Empty input yields "Unknown". Synonyms and plurals are left
// distinct.
func NormalizeRoomName(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	if len(words) == 0 {
		return Unknown
	}
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// MatchPolicy controls how loosely room names are compared.
type MatchPolicy string

const (
	// Loose accepts substring containment in either direction after an exact
	// match fails. "Bath" and "Bathroom 2" match each other.
	Loose MatchPolicy = "loose"
	// Exact only accepts case-insensitive equality.
	Exact MatchPolicy = "exact"
)

func ParsePolicy(s string) (MatchPolicy, error) {
	switch MatchPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", Loose:
		return Loose, nil
	case Exact:
		return Exact, nil
	default:
		return "", fmt.Errorf("unknown room match policy %q", s)
	}
}

// Matches reports whether two room names refer to the same room under p.
func (p MatchPolicy) Matches(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return true
	}
	if p == Exact || a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// BestMatch returns the room whose name equals name case-insensitively, or
// failing that the first room in list order whose name contains or is
// contained in name. Ties keep list order. Returns nil when nothing matches.
func (p MatchPolicy) BestMatch(name string, rooms []domain.Room) *domain.Room {
	target := strings.ToLower(strings.TrimSpace(name))
	if target == "" {
		return nil
	}
	for i := range rooms {
		if strings.ToLower(rooms[i].Name) == target {
			return &rooms[i]
		}
	}
	if p == Exact {
		return nil
	}
	for i := range rooms {
		candidate := strings.ToLower(rooms[i].Name)
		if candidate == "" {
			continue
		}
		if strings.Contains(candidate, target) || strings.Contains(target, candidate) {
			return &rooms[i]
		}
	}
	return nil
}

// FindBestMatch resolves name with the Loose policy.
func FindBestMatch(name string, rooms []domain.Room) *domain.Room {
	return Loose.BestMatch(name, rooms)
}

// Slug is the lower-cased normalized name with spaces replaced by hyphens.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(NormalizeRoomName(name)), " ", "-")
}
