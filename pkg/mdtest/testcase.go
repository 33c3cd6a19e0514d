// Package mdtest extracts executable test cases from Markdown documents.
// A case starts at a heading of the form "Test: <name>", takes its source
// from a fenced `c` block, and states its expectation in exactly one
// `result`, `lex-error`, `parse-error`, or `runtime-error` block.
package mdtest

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// AssertionType names the fence language of an expectation block.
type AssertionType string

const (
	AssertResult       AssertionType = "result"
	AssertLexError     AssertionType = "lex-error"
	AssertParseError   AssertionType = "parse-error"
	AssertRuntimeError AssertionType = "runtime-error"
)

// Case is one extracted test: a source program and its expectation.
// For AssertResult, Expected is the formatted final value; for the error
// kinds it is a substring the diagnostic must contain.
type Case struct {
	Name      string
	Source    string
	Assertion AssertionType
	Expected  string
}

// Extract parses a Markdown document and collects all test cases.
func Extract(doc []byte) ([]Case, error) {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(doc))

	var cases []Case
	var cur *Case

	flush := func() error {
		if cur == nil {
			return nil
		}
		if err := validate(cur); err != nil {
			return err
		}
		cases = append(cases, *cur)
		cur = nil
		return nil
	}

	err := ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			title := headingText(n, doc)
			if strings.HasPrefix(title, "Test: ") {
				if err := flush(); err != nil {
					return ast.WalkStop, err
				}
				cur = &Case{Name: strings.TrimPrefix(title, "Test: ")}
			}

		case *ast.FencedCodeBlock:
			lang := string(n.Language(doc))
			if lang == "" {
				return ast.WalkContinue, nil
			}
			if cur == nil {
				return ast.WalkStop, fmt.Errorf("mdtest: %s fence outside of a test case", lang)
			}
			content := fenceContent(n, doc)

			switch AssertionType(lang) {
			case "c":
				if cur.Source != "" {
					return ast.WalkStop, fmt.Errorf("mdtest: multiple c fences in test %q", cur.Name)
				}
				cur.Source = content
			case AssertResult, AssertLexError, AssertParseError, AssertRuntimeError:
				if cur.Assertion != "" {
					return ast.WalkStop, fmt.Errorf("mdtest: multiple expectation fences in test %q", cur.Name)
				}
				cur.Assertion = AssertionType(lang)
				cur.Expected = strings.TrimRight(content, "\n")
			default:
				return ast.WalkStop, fmt.Errorf("mdtest: unknown fence language %q in test %q", lang, cur.Name)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cases, nil
}

func validate(c *Case) error {
	if c.Source == "" {
		return fmt.Errorf("mdtest: test %q has no c fence", c.Name)
	}
	if c.Assertion == "" {
		return fmt.Errorf("mdtest: test %q has no expectation fence", c.Name)
	}
	return nil
}

func headingText(n *ast.Heading, src []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			sb.Write(t.Segment.Value(src))
		}
	}
	return sb.String()
}

func fenceContent(n *ast.FencedCodeBlock, src []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(src))
	}
	return sb.String()
}
