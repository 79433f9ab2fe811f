package chat

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RenderText converts an assistant answer to terminal text: <br> and block
// tags become line breaks, other tags are dropped and entities decoded.
func RenderText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimRight(s, "\n")
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return strings.TrimRight(b.String(), "\n")
			}
			return s
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Br:
				b.WriteString("\n")
			case atom.Li:
				b.WriteString("• ")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.P, atom.Div, atom.Li, atom.H1, atom.H2, atom.H3, atom.H4, atom.Ul, atom.Ol:
				b.WriteString("\n")
			}
		}
	}
}
