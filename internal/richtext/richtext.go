// Package richtext converts the rendered HTML fragments of the content API
// into plain terminal text.
//
// Input is untrusted. Only text is extracted: scripts, styles, embeds and
// attributes other than an image's alt text are discarded.
package richtext

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Kind classifies a block of body text.
type Kind int

const (
	Paragraph Kind = iota
	Heading
	ListItem
	Quote
	Preformatted
)

// Block is one paragraph-level unit of a rendered body.
type Block struct {
	Kind Kind
	Text string
}

// skipped elements contribute nothing.
var skipped = map[string]bool{
	"script": true, "style": true, "iframe": true, "noscript": true,
	"object": true, "embed": true, "svg": true, "form": true, "#comment": true,
}

var blockLevel = map[string]Kind{
	"p": Paragraph, "div": Paragraph, "section": Paragraph, "article": Paragraph,
	"figure": Paragraph, "figcaption": Paragraph, "table": Paragraph, "tr": Paragraph,
	"h1": Heading, "h2": Heading, "h3": Heading, "h4": Heading, "h5": Heading, "h6": Heading,
	"blockquote": Quote,
}

// Text returns fragment as a single line with entities decoded and
// whitespace collapsed. Suitable for titles, names and excerpts.
func Text(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapse(fragment)
	}
	doc.Find(strings.Join(keys(skipped), ",")).Remove()
	return collapse(doc.Text())
}

// Blocks splits a rendered body into paragraph-level blocks.
func Blocks(fragment string) []Block {
	if strings.TrimSpace(fragment) == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return []Block{{Kind: Paragraph, Text: collapse(fragment)}}
	}
	r := &renderer{}
	r.walk(doc.Find("body"), Paragraph)
	r.flush()
	return r.blocks
}

// Render returns the body as text with blank lines between blocks.
func Render(fragment string) string {
	blocks := Blocks(fragment)
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		switch b.Kind {
		case ListItem:
			parts[i] = "• " + b.Text
		case Quote:
			parts[i] = "│ " + strings.ReplaceAll(b.Text, "\n", "\n│ ")
		default:
			parts[i] = b.Text
		}
	}
	return strings.Join(parts, "\n\n")
}

// Truncate shortens s to at most n runes, ending with an ellipsis when cut.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	if n == 1 {
		return "…"
	}
	return strings.TrimRight(string(runes[:n-1]), " ") + "…"
}

type renderer struct {
	blocks []Block
	lines  []string
	cur    strings.Builder
	kind   Kind
}

// walk renders the children of sel. ctx is the kind of the enclosing block;
// blocks nested in a list item or quote keep that kind.
func (r *renderer) walk(sel *goquery.Selection, ctx Kind) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		switch {
		case name == "#text":
			r.cur.WriteString(s.Text())
		case skipped[name]:
		case name == "br":
			r.breakLine()
		case name == "img":
			if alt := collapse(s.AttrOr("alt", "")); alt != "" {
				r.cur.WriteString("[" + alt + "]")
			}
		case name == "pre":
			r.flush()
			if text := strings.TrimRight(s.Text(), "\n "); text != "" {
				r.blocks = append(r.blocks, Block{Kind: Preformatted, Text: text})
			}
		case name == "li":
			r.block(s, ListItem, ctx)
		default:
			kind, ok := blockLevel[name]
			if !ok {
				r.walk(s, ctx)
				return
			}
			if ctx != Paragraph {
				kind = ctx
			}
			r.block(s, kind, ctx)
		}
	})
}

func (r *renderer) block(s *goquery.Selection, kind, ctx Kind) {
	r.flush()
	r.kind = kind
	r.walk(s, kind)
	r.flush()
	r.kind = ctx
}

func (r *renderer) breakLine() {
	if line := collapse(r.cur.String()); line != "" {
		r.lines = append(r.lines, line)
	}
	r.cur.Reset()
}

func (r *renderer) flush() {
	r.breakLine()
	if len(r.lines) > 0 {
		r.blocks = append(r.blocks, Block{Kind: r.kind, Text: strings.Join(r.lines, "\n")})
	}
	r.lines = nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		if !strings.HasPrefix(k, "#") {
			out = append(out, k)
		}
	}
	return out
}
