package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/vanderheijden86/linktree/pkg/linktree"
	"github.com/vanderheijden86/linktree/pkg/model"
)

// Delimiter separates the tree from the facet summary in text output.
const Delimiter = "======"

// Kind selects an output format.
type Kind string

const (
	KindText     Kind = "text"
	KindHTML     Kind = "html"
	KindMarkdown Kind = "markdown"
	KindJSON     Kind = "json"
	KindSVG      Kind = "svg"
)

// Kinds lists the supported formats.
var Kinds = []Kind{KindText, KindHTML, KindMarkdown, KindJSON, KindSVG}

// ParseKind parses a format name; "" means text and "md" is accepted.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindText, nil
	case "md":
		return KindMarkdown, nil
	case KindText, KindHTML, KindMarkdown, KindJSON, KindSVG:
		return k, nil
	default:
		return "", fmt.Errorf("unknown format %q (want one of %v)", s, Kinds)
	}
}

// Formatter returns the record formatter a kind renders with. Text, JSON and
// SVG records are template lines.
func Formatter(kind Kind, tmpl *Template) linktree.Formatter {
	switch kind {
	case KindHTML:
		return HTMLFormatter{}
	case KindMarkdown:
		return MarkdownFormatter{}
	default:
		return tmpl
	}
}

// Meta describes the run a report belongs to.
type Meta struct {
	Root     *model.Issue
	MaxDepth int
}

// Write renders res in the given kind. Markdown is written raw; terminals
// pass it through RenderMarkdown.
func Write(w io.Writer, kind Kind, res *linktree.Result, meta Meta) error {
	switch kind {
	case KindText:
		return WriteText(w, res)
	case KindHTML:
		return WriteHTML(w, res)
	case KindMarkdown:
		return WriteMarkdown(w, res)
	case KindJSON:
		return WriteJSON(w, res, meta)
	case KindSVG:
		return WriteSVG(w, res)
	default:
		return fmt.Errorf("unknown format %q", kind)
	}
}

// WriteText writes the tree, the delimiter line and one "Name: k1, k2" line
// per facet.
func WriteText(w io.Writer, res *linktree.Result) error {
	var sb strings.Builder
	sb.WriteString(res.Tree.Assemble(nil))
	sb.WriteString(Delimiter)
	sb.WriteByte('\n')
	for _, name := range res.Facets.Names() {
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(strings.Join(res.Facets.Keys(name), ", "))
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
