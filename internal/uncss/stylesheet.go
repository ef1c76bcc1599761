package uncss

import (
	"fmt"
	"strings"

	"github.com/gorilla/css/scanner"
)

// tokenstream is a list of CSS tokens
type tokenstream []*scanner.Token

func (t tokenstream) String() string {
	var sb strings.Builder
	for _, tok := range t {
		sb.WriteString(tok.Value)
	}
	return sb.String()
}

// compact renders the tokens with every whitespace run folded into one space
// and no leading or trailing space.
func (t tokenstream) compact() string {
	var sb strings.Builder
	for _, tok := range trimSpace(t) {
		if tok.Type == scanner.TokenS {
			sb.WriteByte(' ')
			continue
		}
		sb.WriteString(tok.Value)
	}
	return sb.String()
}

// SyntaxError reports CSS that could not be tokenised or whose blocks do not
// balance.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("CSS syntax error at line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// nodeKind tells the serializer how to treat a parsed rule.
type nodeKind int

const (
	// styleRule is "selectors { declarations }".
	styleRule nodeKind = iota
	// groupRule is an at-rule whose block holds further rules (@media, @supports).
	groupRule
	// verbatimRule is any other at-rule, kept as written.
	verbatimRule
)

// node is one rule of a stylesheet.
type node struct {
	kind      nodeKind
	prelude   tokenstream // selector list, or at-keyword plus its params
	body      tokenstream // declarations of a style rule, or the block of a verbatim at-rule; no braces
	block     bool        // verbatim at-rule has a {} block (as opposed to ending in ';')
	children  []*node     // rules inside a group rule
	selectors []string    // selectors kept by filter
}

// groupAtRules hold nested rule lists and are filtered recursively.
var groupAtRules = map[string]bool{
	"@media":     true,
	"@supports":  true,
	"@document":  true,
	"@container": true,
	"@layer":     true,
	"@scope":     true,
}

// tokenize scans the whole stylesheet. Comments are dropped.
func tokenize(css string) (tokenstream, error) {
	s := scanner.New(css)
	var toks tokenstream
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			return toks, nil
		case scanner.TokenError:
			return nil, &SyntaxError{Line: tok.Line, Column: tok.Column, Msg: fmt.Sprintf("unexpected %q", tok.Value)}
		case scanner.TokenComment, scanner.TokenCDO, scanner.TokenCDC, scanner.TokenBOM:
			continue
		}
		toks = append(toks, tok)
	}
}

func isChar(tok *scanner.Token, c string) bool {
	return tok.Type == scanner.TokenChar && tok.Value == c
}

// trimSpace removes leading and trailing whitespace tokens.
func trimSpace(toks tokenstream) tokenstream {
	for len(toks) > 0 && toks[0].Type == scanner.TokenS {
		toks = toks[1:]
	}
	for len(toks) > 0 && toks[len(toks)-1].Type == scanner.TokenS {
		toks = toks[:len(toks)-1]
	}
	return toks
}

// findClosingBrace returns the index of the "}" matching an already consumed
// "{", or -1 when the block never closes.
func findClosingBrace(toks tokenstream) int {
	level := 1
	for i, t := range toks {
		if t.Type != scanner.TokenChar {
			continue
		}
		switch t.Value {
		case "{":
			level++
		case "}":
			level--
			if level == 0 {
				return i
			}
		}
	}
	return -1
}

// parseRules splits toks into rules.
func parseRules(toks tokenstream) ([]*node, error) {
	var nodes []*node
	start := 0
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		switch {
		case isChar(tok, ";"):
			prelude := trimSpace(toks[start:i])
			if len(prelude) > 0 {
				if prelude[0].Type != scanner.TokenAtKeyword {
					return nil, &SyntaxError{Line: tok.Line, Column: tok.Column, Msg: "declaration outside of a rule"}
				}
				nodes = append(nodes, &node{kind: verbatimRule, prelude: prelude})
			}
			start = i + 1

		case isChar(tok, "{"):
			end := findClosingBrace(toks[i+1:])
			if end < 0 {
				return nil, &SyntaxError{Line: tok.Line, Column: tok.Column, Msg: "unclosed block"}
			}
			inner := toks[i+1 : i+1+end]
			prelude := trimSpace(toks[start:i])

			n, err := newBlockNode(prelude, inner)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)

			i = i + 1 + end
			start = i + 1

		case isChar(tok, "}"):
			return nil, &SyntaxError{Line: tok.Line, Column: tok.Column, Msg: `unexpected "}"`}
		}
	}
	if rest := trimSpace(toks[start:]); len(rest) > 0 {
		return nil, &SyntaxError{Line: rest[0].Line, Column: rest[0].Column, Msg: "unexpected end of stylesheet"}
	}
	return nodes, nil
}

func newBlockNode(prelude, inner tokenstream) (*node, error) {
	if len(prelude) > 0 && prelude[0].Type == scanner.TokenAtKeyword {
		name := strings.ToLower(prelude[0].Value)
		if groupAtRules[name] {
			children, err := parseRules(inner)
			if err != nil {
				return nil, err
			}
			return &node{kind: groupRule, prelude: prelude, children: children}, nil
		}
		return &node{kind: verbatimRule, prelude: prelude, body: trimSpace(inner), block: true}, nil
	}
	return &node{kind: styleRule, prelude: prelude, body: trimSpace(inner)}, nil
}

// splitSelectors splits a selector list on top-level commas.
func splitSelectors(prelude tokenstream) []string {
	var (
		out   []string
		cur   tokenstream
		depth int
	)
	flush := func() {
		if sel := cur.compact(); sel != "" {
			out = append(out, sel)
		}
		cur = nil
	}
	for _, tok := range prelude {
		switch {
		case tok.Type == scanner.TokenFunction:
			depth++
		case isChar(tok, "("), isChar(tok, "["):
			depth++
		case isChar(tok, ")"), isChar(tok, "]"):
			if depth > 0 {
				depth--
			}
		case isChar(tok, ",") && depth == 0:
			flush()
			continue
		}
		cur = append(cur, tok)
	}
	flush()
	return out
}

// collapseSpace trims s and folds whitespace runs into single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
