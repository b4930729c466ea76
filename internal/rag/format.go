package rag

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// MaxResponseRunes caps the length of a formatted response.
const MaxResponseRunes = 1000

const truncationMarker = "..."

// Node attributes set by fenceParser.
const (
	fenceStartAttr = "fence-start"
	fenceStopAttr  = "fence-stop"
)

var (
	markdown = goldmark.New(goldmark.WithParserOptions(
		parser.WithBlockParsers(util.Prioritized(fenceParser{parser.NewFencedCodeBlockParser()}, 699)),
	))
	tagPattern = regexp.MustCompile(`<[^>]*>`)
	blankLines = regexp.MustCompile(`\n\s*\n`)
)

// fenceParser wraps goldmark's fenced code parser and records on each block
// the source offset of its opening fence and, once a closing fence is
// consumed, the offset just past it.
type fenceParser struct {
	parser.BlockParser
}

func (p fenceParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	_, seg := reader.PeekLine()
	node, state := p.BlockParser.Open(parent, reader, pc)
	if node != nil {
		node.SetAttributeString(fenceStartAttr, seg.Start)
	}
	return node, state
}

func (p fenceParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	_, seg := reader.PeekLine()
	state := p.BlockParser.Continue(node, reader, pc)
	if state == parser.Close {
		node.SetAttributeString(fenceStopAttr, seg.Stop)
	}
	return state
}

// FormatResponse cleans raw model output: closed fenced code blocks are
// removed, tags such as "<p>" or "<|assistant|>" are dropped while the text
// between them is kept, blank lines are collapsed and the result is trimmed
// and capped at MaxResponseRunes. Other markdown is left as written.
func FormatResponse(raw string) string {
	out := stripCodeFences([]byte(raw))
	out = tagPattern.ReplaceAllString(out, "")
	out = blankLines.ReplaceAllString(out, "\n")
	out = strings.TrimSpace(out)

	if utf8.RuneCountInString(out) > MaxResponseRunes {
		runes := []rune(out)
		out = strings.TrimSpace(string(runes[:MaxResponseRunes])) + truncationMarker
	}
	return out
}

type span struct{ start, stop int }

// stripCodeFences removes every closed fenced code block from src. A fence
// that is never closed loses only its opening line.
func stripCodeFences(src []byte) string {
	doc := markdown.Parser().Parse(text.NewReader(src))

	var cuts []span
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if _, ok := n.(*ast.FencedCodeBlock); !ok || !entering {
			return ast.WalkContinue, nil
		}
		startAttr, ok := n.AttributeString(fenceStartAttr)
		if !ok {
			return ast.WalkSkipChildren, nil
		}
		start := startAttr.(int)
		if stopAttr, closed := n.AttributeString(fenceStopAttr); closed {
			cuts = append(cuts, span{start, stopAttr.(int)})
		} else {
			stop := len(src)
			if i := bytes.IndexByte(src[start:], '\n'); i >= 0 {
				stop = start + i + 1
			}
			cuts = append(cuts, span{start, stop})
		}
		return ast.WalkSkipChildren, nil
	})
	if len(cuts) == 0 {
		return string(src)
	}

	var buf bytes.Buffer
	last := 0
	for _, c := range cuts {
		buf.Write(src[last:c.start])
		buf.WriteByte('\n')
		last = c.stop
	}
	buf.Write(src[last:])
	return buf.String()
}
