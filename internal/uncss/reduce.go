package uncss

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/gorilla/css/scanner"
	"golang.org/x/net/html"
)

// Options tune a reduction.
type Options struct {
	// Ignore lists selectors that are always kept. An entry wrapped in
	// slashes ("/^\.js-/") is a regular expression matched against each
	// selector; any other entry must equal the selector exactly.
	Ignore []string
}

// Stats counts what a reduction kept and removed.
type Stats struct {
	RulesKept        int
	RulesRemoved     int
	SelectorsKept    int
	SelectorsRemoved int
}

// ignorePseudos are stripped from a selector before it is matched: they
// depend on user interaction, document state or generated content, none of
// which exists in a static parse of the HTML. Vendor-prefixed pseudos are
// always stripped.
var ignorePseudos = map[string]bool{
	"before": true, "after": true, "first-line": true, "first-letter": true,
	"selection": true, "placeholder": true, "placeholder-shown": true,
	"marker": true, "backdrop": true, "file-selector-button": true, "cue": true,

	"hover": true, "active": true, "focus": true, "focus-within": true,
	"focus-visible": true, "visited": true, "link": true, "any-link": true,
	"target": true,

	"valid": true, "invalid": true, "user-invalid": true, "in-range": true,
	"out-of-range": true, "indeterminate": true, "default": true,
	"autofill": true, "fullscreen": true, "playing": true, "paused": true,
}

var vendorPrefixes = []string{"-webkit-", "-moz-", "-ms-", "-o-"}

func isIgnoredPseudo(name string) bool {
	name = strings.ToLower(name)
	if ignorePseudos[name] {
		return true
	}
	for _, p := range vendorPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// Reducer reduces stylesheets against one parsed HTML document.
type Reducer struct {
	doc    *goquery.Document
	ignore []*regexp.Regexp
	exact  map[string]bool
	stats  Stats
}

// NewReducer parses markup and compiles the ignore list.
func NewReducer(markup string, opts Options) (*Reducer, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	exact, patterns, err := compileIgnore(opts.Ignore)
	if err != nil {
		return nil, err
	}
	return &Reducer{doc: goquery.NewDocumentFromNode(root), ignore: patterns, exact: exact}, nil
}

// ValidateIgnore reports the first ignore entry that is not a valid pattern.
func ValidateIgnore(entries []string) error {
	_, _, err := compileIgnore(entries)
	return err
}

func compileIgnore(entries []string) (map[string]bool, []*regexp.Regexp, error) {
	exact := make(map[string]bool)
	var patterns []*regexp.Regexp
	for _, entry := range entries {
		if len(entry) > 2 && strings.HasPrefix(entry, "/") && strings.HasSuffix(entry, "/") {
			re, err := regexp.Compile(entry[1 : len(entry)-1])
			if err != nil {
				return nil, nil, fmt.Errorf("invalid ignore pattern %q: %w", entry, err)
			}
			patterns = append(patterns, re)
			continue
		}
		exact[collapseSpace(entry)] = true
	}
	return exact, patterns, nil
}

// Reduce removes the rules of css that match nothing in markup.
func Reduce(markup, css string, opts Options) (string, error) {
	out, _, err := ReduceWithStats(markup, css, opts)
	return out, err
}

// ReduceWithStats is Reduce that also reports what was removed.
func ReduceWithStats(markup, css string, opts Options) (string, Stats, error) {
	r, err := NewReducer(markup, opts)
	if err != nil {
		return "", Stats{}, err
	}
	out, err := r.Reduce(css)
	return out, r.stats, err
}

// Reduce filters css against the parsed document.
func (r *Reducer) Reduce(css string) (string, error) {
	toks, err := tokenize(css)
	if err != nil {
		return "", err
	}
	nodes, err := parseRules(toks)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, n := range r.filter(nodes) {
		write(&sb, n, 0)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// filter returns the nodes that survive, with style rule selector lists
// narrowed to the selectors in use.
func (r *Reducer) filter(nodes []*node) []*node {
	var kept []*node
	for _, n := range nodes {
		switch n.kind {
		case verbatimRule:
			kept = append(kept, n)

		case groupRule:
			children := r.filter(n.children)
			if len(children) == 0 {
				continue
			}
			kept = append(kept, &node{kind: groupRule, prelude: n.prelude, children: children})

		case styleRule:
			var used []string
			for _, sel := range splitSelectors(n.prelude) {
				if r.used(sel) {
					used = append(used, sel)
					r.stats.SelectorsKept++
				} else {
					r.stats.SelectorsRemoved++
				}
			}
			if len(used) == 0 {
				r.stats.RulesRemoved++
				continue
			}
			r.stats.RulesKept++
			kept = append(kept, &node{kind: styleRule, body: n.body, selectors: used})
		}
	}
	return kept
}

// used reports whether sel should be kept.
func (r *Reducer) used(sel string) bool {
	if r.exact[sel] {
		return true
	}
	for _, re := range r.ignore {
		if re.MatchString(sel) {
			return true
		}
	}

	matcher, err := cascadia.Compile(dePseudify(sel))
	if err != nil {
		// Selectors the matcher does not understand are kept rather than
		// risk dropping styles in use.
		return true
	}
	return r.doc.FindMatcher(matcher).Length() > 0
}

// dePseudify strips ignored pseudo-classes and pseudo-elements. Pseudos
// inside attribute selectors, strings and functional pseudos are left alone.
// A pseudo that stood for a whole compound ("ul > :focus", "div :visited")
// is replaced by "*".
func dePseudify(sel string) string {
	toks, err := tokenize(sel)
	if err != nil {
		return sel
	}

	var sb strings.Builder
	depth := 0
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		switch {
		case tok.Type == scanner.TokenFunction, isChar(tok, "("), isChar(tok, "["):
			depth++
		case isChar(tok, ")"), isChar(tok, "]"):
			if depth > 0 {
				depth--
			}
		case isChar(tok, ":") && depth == 0:
			j := i + 1
			if j < len(toks) && isChar(toks[j], ":") {
				j++
			}
			if j < len(toks) && toks[j].Type == scanner.TokenIdent && isIgnoredPseudo(toks[j].Value) {
				if startsCompound(sb.String()) {
					sb.WriteByte('*')
				}
				i = j
				continue
			}
		}
		if tok.Type == scanner.TokenS {
			sb.WriteByte(' ')
			continue
		}
		sb.WriteString(tok.Value)
	}

	s := strings.TrimSpace(sb.String())
	if s == "" {
		return "*"
	}
	return s
}

// startsCompound reports whether the next simple selector written after s
// begins a new compound selector.
func startsCompound(s string) bool {
	if s == "" {
		return true
	}
	switch s[len(s)-1] {
	case ' ', '>', '+', '~':
		return true
	}
	return false
}

func write(sb *strings.Builder, n *node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n.kind {
	case styleRule:
		sb.WriteString(indent)
		sb.WriteString(strings.Join(n.selectors, ", "))
		writeBody(sb, n.body.String())

	case verbatimRule:
		sb.WriteString(indent)
		sb.WriteString(n.prelude.compact())
		if !n.block {
			sb.WriteString(";\n")
			return
		}
		writeBody(sb, n.body.String())

	case groupRule:
		sb.WriteString(indent)
		sb.WriteString(n.prelude.compact())
		sb.WriteString(" {\n")
		for _, c := range n.children {
			write(sb, c, depth+1)
		}
		sb.WriteString(indent)
		sb.WriteString("}\n")
	}
}

func writeBody(sb *strings.Builder, body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		sb.WriteString(" {}\n")
		return
	}
	sb.WriteString(" { ")
	sb.WriteString(body)
	sb.WriteString(" }\n")
}
