package sanitize

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"mvdan.cc/xurls/v2"
)

var linkPattern = xurls.Relaxed()

// Elements whose text is never linkified.
var noLinkify = map[string]bool{
	"a":    true,
	"pre":  true,
	"code": true,
}

// Linkify wraps bare URLs and email addresses found in the text of markup
// with anchors. Existing anchors and code are left alone.
func Linkify(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))

	var b strings.Builder
	depth := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return b.String()
		}

		tok := z.Token()
		switch tt {
		case html.TextToken:
			if depth > 0 {
				b.WriteString(html.EscapeString(tok.Data))
				continue
			}
			linkifyText(&b, tok.Data)

		case html.StartTagToken:
			if noLinkify[tok.Data] {
				depth++
			}
			b.WriteString(tok.String())

		case html.EndTagToken:
			if noLinkify[tok.Data] && depth > 0 {
				depth--
			}
			b.WriteString(tok.String())

		default:
			b.WriteString(tok.String())
		}
	}
}

func linkifyText(b *strings.Builder, text string) {
	last := 0
	for _, loc := range linkPattern.FindAllStringIndex(text, -1) {
		match := text[loc[0]:loc[1]]
		href, ok := linkTarget(match)
		if !ok {
			continue
		}

		b.WriteString(html.EscapeString(text[last:loc[0]]))
		b.WriteString(`<a href="`)
		b.WriteString(html.EscapeString(href))
		b.WriteString(`" rel="nofollow">`)
		b.WriteString(html.EscapeString(match))
		b.WriteString(`</a>`)
		last = loc[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
}

// linkTarget returns the href for a detected link. Only the allowed schemes
// are linked; matches with any other scheme stay plain text.
func linkTarget(match string) (string, bool) {
	u, err := url.Parse(match)
	if err != nil {
		return "", false
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https", "mailto":
		return match, true
	case "":
		if strings.Contains(match, "@") && !strings.Contains(match, "/") {
			return "mailto:" + match, true
		}
		return "http://" + match, true
	default:
		return "", false
	}
}
