// Package html renders document models as standalone HTML pages. The model
// is first written as Markdown and then converted with gomarkdown.
package html

import (
	"encoding/base64"
	stdhtml "html"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/angelmondragon/quotecatalog/internal/document"
	pkgerrors "github.com/angelmondragon/quotecatalog/pkg/errors"
)

type Renderer struct{}

func New() *Renderer { return &Renderer{} }

func (r *Renderer) ContentType() string { return "text/html; charset=utf-8" }

func (r *Renderer) Extension() string { return ".html" }

func (r *Renderer) Render(m document.Model) ([]byte, error) {
	md, err := Markdown(m)
	if err != nil {
		return nil, err
	}
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.CompletePage | mdhtml.HrefTargetBlank,
		Title: m.Title,
	})
	return markdown.ToHTML([]byte(md), p, renderer), nil
}

// Markdown writes the model as a Markdown document.
func Markdown(m document.Model) (string, error) {
	var sb strings.Builder
	for _, b := range m.Blocks {
		switch block := b.(type) {
		case document.HeaderBlock:
			writeHeader(&sb, block)
		case document.KeyValueBlock:
			writeKeyValue(&sb, block)
		case document.TableBlock:
			writeTable(&sb, block)
		case document.TotalsBlock:
			writeTotals(&sb, block)
		case document.TextListBlock:
			writeTextList(&sb, block)
		case document.SignatureBlock:
			writeSignatures(&sb, block)
		default:
			return "", pkgerrors.New(pkgerrors.CodeInternal, "html: unsupported block "+string(b.Kind()))
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"|", `\|`, "#", `\#`, "!", `\!`,
)

// escape neutralizes HTML and Markdown syntax in free text.
func escape(s string) string {
	return mdEscaper.Replace(stdhtml.EscapeString(s))
}

func writeHeader(sb *strings.Builder, h document.HeaderBlock) {
	for _, line := range h.Company {
		if line.Emphasis {
			sb.WriteString("## " + escape(line.Text) + "\n\n")
			continue
		}
		sb.WriteString(escape(line.Text) + "  \n")
	}
	sb.WriteString("\n")
	switch b := h.Badge.(type) {
	case document.TextBadge:
		lines := b.Lines()
		sb.WriteString("**" + escape(lines[0]) + "**  \n")
		for _, l := range lines[1:] {
			sb.WriteString(escape(l) + "  \n")
		}
	case document.ImageBadge:
		format := strings.ToLower(strings.TrimPrefix(b.Image.Format, "."))
		if format == "jpg" {
			format = "jpeg"
		}
		sb.WriteString("![" + escape(b.Image.Name) + "](data:image/" + format + ";base64," +
			base64.StdEncoding.EncodeToString(b.Image.Data) + ")\n")
	}
	sb.WriteString("\n---\n")
}

func writeKeyValue(sb *strings.Builder, kv document.KeyValueBlock) {
	for _, group := range kv.Groups {
		for _, f := range group {
			sb.WriteString("- **" + escape(f.Label) + "** " + escape(f.Value) + "\n")
		}
		sb.WriteString("\n")
	}
}

func writeTable(sb *strings.Builder, t document.TableBlock) {
	if len(t.Columns) == 0 {
		return
	}
	head := make([]string, len(t.Columns))
	rule := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		head[i] = escape(c.Header)
		switch c.Align {
		case document.AlignCenter:
			rule[i] = ":---:"
		case document.AlignRight:
			rule[i] = "---:"
		default:
			rule[i] = ":---"
		}
	}
	sb.WriteString("| " + strings.Join(head, " | ") + " |\n")
	sb.WriteString("|" + strings.Join(rule, "|") + "|\n")
	for _, values := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i := range t.Columns {
			if i < len(values) {
				cells[i] = escape(values[i])
			}
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}

func writeTotals(sb *strings.Builder, t document.TotalsBlock) {
	for _, r := range t.Rows {
		line := escape(r.Label) + " " + escape(r.Value)
		if r.Emphasis {
			line = "**" + line + "**"
		}
		sb.WriteString(line + "  \n")
	}
}

func writeTextList(sb *strings.Builder, l document.TextListBlock) {
	if l.Title != "" {
		sb.WriteString("### " + escape(l.Title) + "\n\n")
	}
	for _, item := range l.Items {
		sb.WriteString("- " + escape(item) + "\n")
	}
}

func writeSignatures(sb *strings.Builder, s document.SignatureBlock) {
	for _, p := range s.Parties {
		sb.WriteString("\\_\\_\\_\\_\\_\\_\\_\\_\\_\\_\\_\\_\\_\\_\\_\\_  \n" + escape(p) + "\n\n")
	}
}
