// Package sanitize turns untrusted chat text into markup that clients can
// render directly.
//
// Rendering runs in three stages: markdown conversion, an allow-list policy
// that strips everything it does not name, and linkification of bare URLs
// and email addresses in the already constrained markup. Tags, attributes and
// URL schemes outside the allow-list are removed, never escaped and kept.
package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// TextRenderer renders raw user text to safe markup. Implementations must be
// total: at worst they return empty output.
type TextRenderer interface {
	Render(raw string) string
}

// Converter is the markup producing stage, typically markdown.
type Converter interface {
	Convert(raw string) (string, error)
}

// AllowedTags is the complete set of elements that survive sanitization.
var AllowedTags = []string{
	"a", "b", "strong", "i", "em", "u", "s", "code", "pre", "kbd", "br",
	"p", "ul", "ol", "li", "blockquote",
}

// AllowedLinkAttrs are the only attributes kept, and only on anchors.
var AllowedLinkAttrs = []string{"href", "title", "target", "rel"}

// AllowedSchemes are the only URL schemes an href may carry.
var AllowedSchemes = []string{"http", "https", "mailto"}

// Policy returns the allow-list applied to converted markup.
func Policy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(AllowedTags...)
	p.AllowAttrs(AllowedLinkAttrs...).OnElements("a")
	p.AllowURLSchemes(AllowedSchemes...)
	p.RequireParseableURLs(true)
	return p
}

// Pipeline is the default TextRenderer.
type Pipeline struct {
	converter Converter
	policy    *bluemonday.Policy
}

// NewPipeline returns a Pipeline converting with c. A nil c means markdown.
func NewPipeline(c Converter) *Pipeline {
	if c == nil {
		c = NewMarkdown()
	}
	return &Pipeline{
		converter: c,
		policy:    Policy(),
	}
}

// Render converts raw, constrains it to the allow-list and links bare URLs.
func (p *Pipeline) Render(raw string) string {
	converted, err := p.converter.Convert(raw)
	if err != nil {
		// Fall back to the raw text as plain, escaped content.
		converted = html.EscapeString(raw)
	}
	return Linkify(p.policy.Sanitize(converted))
}
