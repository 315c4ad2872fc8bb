package format

import (
	"html"
	"io"
	"strings"

	"github.com/vanderheijden86/linktree/pkg/linktree"
	"github.com/vanderheijden86/linktree/pkg/model"
)

// Label is the plain "[link ]KEY summary [status]" text of a record.
func Label(issue *model.Issue, linkName string) string {
	parts := make([]string, 0, 4)
	if linkName != "" {
		parts = append(parts, linkName)
	}
	parts = append(parts, issue.Key)
	if issue.Summary != "" {
		parts = append(parts, issue.Summary)
	}
	parts = append(parts, "["+issue.StatusName()+"]")
	return strings.Join(parts, " ")
}

// HTMLFormatter renders Label as an escaped <li>.
type HTMLFormatter struct{}

// Format implements linktree.Formatter.
func (HTMLFormatter) Format(issue *model.Issue, linkName string, _ int) string {
	return "<li>" + html.EscapeString(Label(issue, linkName)) + "</li>"
}

// WrapList is the container used to nest HTML records.
func WrapList(content string) string {
	return "<ul>" + content + "</ul>"
}

// HTMLTree assembles the nested list; empty when nothing is visible.
func HTMLTree(res *linktree.Result) string {
	return res.Tree.Assemble(WrapList)
}

// HTMLFacets renders the facet report as a definition list.
func HTMLFacets(facets *linktree.FacetSet) string {
	var sb strings.Builder
	sb.WriteString("<dl class=\"facets\">")
	for _, f := range facets.Facets() {
		sb.WriteString("<dt>")
		sb.WriteString(html.EscapeString(f.Name))
		sb.WriteString("</dt><dd>")
		for i, v := range f.Values {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("<span title=\"")
			sb.WriteString(html.EscapeString(v.Label))
			sb.WriteString("\">")
			sb.WriteString(html.EscapeString(v.Key))
			sb.WriteString("</span>")
		}
		sb.WriteString("</dd>")
	}
	sb.WriteString("</dl>")
	return sb.String()
}

// WriteHTML writes the facet report followed by the nested list.
func WriteHTML(w io.Writer, res *linktree.Result) error {
	_, err := io.WriteString(w, HTMLFacets(res.Facets)+"\n"+HTMLTree(res)+"\n")
	return err
}
