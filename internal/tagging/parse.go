package tagging

import (
	"strings"
	"unicode"

	"github.com/vbonduro/renovo/internal/domain"
)

// ParseLine parses one "category | value | label" line. Lines without a pipe
// separator are treated as preamble and yield nil.
func ParseLine(line string) *domain.TagMetadata {
	line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•"))
	if line == "" || !strings.Contains(line, "|") {
		return nil
	}

	parts := strings.Split(line, "|")
	category := slug(parts[0])
	value := strings.TrimSpace(parts[1])
	if category == "" || slug(value) == "" {
		return nil
	}

	label := value
	if len(parts) >= 3 && strings.TrimSpace(parts[2]) != "" {
		label = strings.TrimSpace(parts[2])
	}

	return &domain.TagMetadata{
		ID:       category + ":" + slug(value),
		Label:    label,
		Category: category,
	}
}

// ParseResponse parses a model response, one tag per line. Repeated ids keep
// their first occurrence.
func ParseResponse(raw string) []domain.TagMetadata {
	out := make([]domain.TagMetadata, 0)
	seen := map[string]bool{}
	for _, line := range strings.Split(raw, "\n") {
		tag := ParseLine(line)
		if tag == nil || seen[tag.ID] {
			continue
		}
		seen[tag.ID] = true
		out = append(out, *tag)
	}
	return out
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
