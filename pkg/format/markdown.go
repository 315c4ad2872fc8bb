package format

import (
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/vanderheijden86/linktree/pkg/linktree"
	"github.com/vanderheijden86/linktree/pkg/model"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"#", `\#`,
)

// MarkdownFormatter renders one nested bullet per record.
type MarkdownFormatter struct{}

// Format implements linktree.Formatter.
func (MarkdownFormatter) Format(issue *model.Issue, linkName string, depth int) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString("- ")
	if linkName != "" {
		sb.WriteString("_" + markdownEscaper.Replace(linkName) + "_ ")
	}
	sb.WriteString("**" + markdownEscaper.Replace(issue.Key) + "**")
	if issue.Summary != "" {
		sb.WriteString(" " + markdownEscaper.Replace(issue.Summary))
	}
	if status := issue.StatusName(); status != "" {
		sb.WriteString(" `" + strings.ReplaceAll(status, "`", "'") + "`")
	}
	sb.WriteByte('\n')
	return sb.String()
}

// WriteMarkdown writes the tree and a facet section.
func WriteMarkdown(w io.Writer, res *linktree.Result) error {
	var sb strings.Builder
	sb.WriteString("## Link tree\n\n")
	if tree := res.Tree.Assemble(nil); tree != "" {
		sb.WriteString(tree)
	} else {
		sb.WriteString("_No visible issues._\n")
	}
	sb.WriteString("\n## Facets\n\n")
	for _, f := range res.Facets.Facets() {
		keys := make([]string, len(f.Values))
		for i, v := range f.Values {
			keys[i] = markdownEscaper.Replace(v.Key)
		}
		sb.WriteString("- **" + f.Name + "**: " + strings.Join(keys, ", ") + "\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// RenderMarkdown renders markdown for a terminal of the given width.
func RenderMarkdown(md string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
