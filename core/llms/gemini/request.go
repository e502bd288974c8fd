package gemini

import (
	"fmt"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/vaanihq/vaani-core/core/llms"
)

type requestBody struct {
	Contents          []content `json:"contents"`
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts,omitempty"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type responseBody struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// message mirrors llms.Turn so copier can bridge the package boundary.
type message struct {
	Role llms.Role
	Text string
}

func toContents(history []llms.Turn, prompt string) []content {
	var messages []message
	copier.Copy(&messages, history)

	contents := make([]content, 0, len(messages)+1)
	for _, msg := range messages {
		contents = append(contents, content{
			Role:  string(msg.Role),
			Parts: []part{{Text: msg.Text}},
		})
	}

	return append(contents, content{
		Role:  string(llms.RoleUser),
		Parts: []part{{Text: prompt}},
	})
}

func replyText(body responseBody) (string, error) {
	if len(body.Candidates) == 0 {
		return "", fmt.Errorf("response contained no candidates")
	}

	var text strings.Builder
	for _, part := range body.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	return text.String(), nil
}
