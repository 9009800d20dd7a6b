package claude

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/vbonduro/renovo/internal/tagging"
)

const maxTokens = 512

type ClaudeSuggester struct {
	client *anthropic.Client
	model  string
}

func NewClaudeSuggester(apiKey, model string, opts ...anthropic.ClientOption) *ClaudeSuggester {
	return &ClaudeSuggester{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

func (s *ClaudeSuggester) Suggest(ctx context.Context, r io.Reader, mimeType string) (*tagging.Suggestion, error) {
	imageData, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	resp, err := s.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(s.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{{
			Role: anthropic.RoleUser,
			Content: []anthropic.MessageContent{
				anthropic.NewImageMessageContent(anthropic.NewMessageContentSource(
					anthropic.MessagesContentSourceTypeBase64,
					normaliseMIME(mimeType),
					base64.StdEncoding.EncodeToString(imageData),
				)),
				anthropic.NewTextMessageContent(tagging.Prompt),
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call claude: %w", err)
	}

	var responseText string
	for _, c := range resp.Content {
		if c.Type == anthropic.MessagesContentTypeText {
			responseText = c.GetText()
			break
		}
	}

	return &tagging.Suggestion{
		Tags:        tagging.ParseResponse(responseText),
		RawResponse: responseText,
	}, nil
}

// normaliseMIME maps browser MIME types to the values the Anthropic API
// accepts. Unknown types are sent as jpeg.
func normaliseMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}
