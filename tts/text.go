package tts

import (
	"bytes"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// MaxTextLength is the backend's per-request character limit.
const MaxTextLength = 50000

var markdownOnce = sync.OnceValue(func() goldmark.Markdown {
	return goldmark.New()
})

// PlainText strips markdown from text the same way the backend does before
// synthesis: link and emphasis markers are removed keeping their text, code
// blocks and raw HTML are dropped entirely, and whitespace is normalized.
// The client validates against this form so length errors surface before
// any network call.
func PlainText(text string) string {
	src := []byte(text)
	doc := markdownOnce().Parser().Parse(gmtext.NewReader(src))

	var buf bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			buf.WriteByte(' ')
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(buf.String()), " ")
}

// ValidateText checks that text is submittable: non-empty after stripping
// and within the backend's length limit.
func ValidateText(text string) error {
	plain := PlainText(text)
	if plain == "" {
		return ErrEmptyText
	}
	if len(plain) > MaxTextLength {
		return ErrTextTooLong
	}
	return nil
}
