package anthropic

import (
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"promptlab/internal/config"
	"promptlab/internal/domain/models/llm"
)

// buildParams maps the canonical request onto MessageNewParams.
// History turns become alternating user/assistant messages.
func buildParams(req *llm.CanonicalRequest) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		Messages:  buildMessages(req),
		MaxTokens: int64(req.GetMaxTokens(config.DefaultMaxOutputTokens)),
	}

	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}

	if req.System != nil && *req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{
				Type: "text",
				Text: *req.System,
			},
		}
	}

	return params
}

func buildMessages(req *llm.CanonicalRequest) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(req.History)*2+1)
	for _, turn := range req.History {
		messages = append(messages,
			anthropic.NewUserMessage(anthropic.NewTextBlock(turn.User)),
			anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.Assistant)),
		)
	}
	return append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)))
}

// responseText concatenates the text blocks of a reply; thinking and tool
// blocks are ignored
func responseText(msg *anthropic.Message) (string, bool) {
	var text strings.Builder
	found := false
	for _, block := range msg.Content {
		if block.Type != "text" {
			continue
		}
		found = true
		text.WriteString(block.Text)
	}
	return text.String(), found
}
