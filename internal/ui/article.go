package ui

import (
	"strings"

	"github.com/abelbrown/pressroom/internal/richtext"
)

// articleContent renders a post or page for the body viewport. The body is
// untrusted HTML and is reduced to text blocks.
func articleContent(title, meta, image, body string, width int) string {
	textWidth := width - 2
	if textWidth < 20 {
		textWidth = 20
	}

	var b strings.Builder
	b.WriteString(ArticleTitle.Width(textWidth).Render(richtext.Text(title)))
	b.WriteString("\n")
	if meta != "" {
		b.WriteString(MetaItem.Render(" " + meta))
		b.WriteString("\n")
	}
	if image != "" {
		b.WriteString(MetaItem.Render(" ▣ " + image))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	blocks := richtext.Blocks(body)
	if len(blocks) == 0 {
		b.WriteString(HelpStyle.Render("No content"))
		return b.String()
	}
	for i, blk := range blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		text := blk.Text
		switch blk.Kind {
		case richtext.Heading:
			text = ArticleHeading.Render(text)
		case richtext.ListItem:
			text = "• " + text
		case richtext.Quote:
			text = "│ " + strings.ReplaceAll(text, "\n", "\n│ ")
		}
		b.WriteString(ArticleBody.Width(textWidth).Render(text))
	}
	return b.String()
}
