package sanitize

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Markdown converts CommonMark with fenced code blocks and hard line breaks.
//
// Inline HTML is passed through unescaped: the policy that follows strips
// disallowed tags while keeping their text content.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown returns a ready Markdown converter.
func NewMarkdown() *Markdown {
	return &Markdown{
		md: goldmark.New(
			goldmark.WithRendererOptions(
				gmhtml.WithHardWraps(),
				gmhtml.WithUnsafe(),
			),
		),
	}
}

func (m *Markdown) Convert(raw string) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(raw), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}
