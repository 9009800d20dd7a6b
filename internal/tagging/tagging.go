// Package tagging suggests tags for uploaded renovation photos using a
// vision model.
package tagging

import (
	"context"
	"io"

	"github.com/vbonduro/renovo/internal/domain"
)

// Prompt is the shared prompt used by all tagging adapters.
const Prompt = `This photo documents a room before a renovation.
List the tags that describe what is visible: the room type, fixtures,
materials and finishes, style, and condition.
Respond in plain text, one tag per line,
format: category | value | label
Use one of these categories: room, fixture, material, style, condition.`

type Suggester interface {
	Suggest(ctx context.Context, r io.Reader, mimeType string) (*Suggestion, error)
}

type Suggestion struct {
	Tags        []domain.TagMetadata
	RawResponse string
}

// IDs returns the suggested tag ids in order.
func (s *Suggestion) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.Tags))
	for _, t := range s.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}
