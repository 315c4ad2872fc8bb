package format

import (
	"io"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/linktree/pkg/linktree"
	"github.com/vanderheijden86/linktree/pkg/version"
)

// Node is the JSON shape of one rendered record.
type Node struct {
	Key      string  `json:"key"`
	LinkName string  `json:"link_name,omitempty"`
	Depth    int     `json:"depth"`
	Summary  string  `json:"summary,omitempty"`
	Project  string  `json:"project,omitempty"`
	Status   string  `json:"status,omitempty"`
	Repeat   bool    `json:"repeat,omitempty"`
	Line     string  `json:"line"`
	Children []*Node `json:"children,omitempty"`
}

// Document is the JSON report.
type Document struct {
	Version  string           `json:"version"`
	Root     string           `json:"root"`
	MaxDepth int              `json:"max_depth"`
	Tree     *Node            `json:"tree"`
	Facets   []linktree.Facet `json:"facets"`
	Stats    linktree.Stats   `json:"stats"`
}

// NewDocument converts a result into its JSON shape.
func NewDocument(res *linktree.Result, meta Meta) Document {
	doc := Document{
		Version:  version.Version,
		MaxDepth: meta.MaxDepth,
		Tree:     toNode(res.Tree),
		Facets:   res.Facets.Facets(),
		Stats:    res.Stats,
	}
	if meta.Root != nil {
		doc.Root = meta.Root.Key
	}
	return doc
}

func toNode(b *linktree.Branch) *Node {
	if b == nil {
		return nil
	}
	n := &Node{
		Key:      b.Key,
		LinkName: b.LinkName,
		Depth:    b.Depth,
		Repeat:   b.Repeat,
		Line:     b.Record,
	}
	if b.Issue != nil {
		n.Summary = b.Issue.Summary
		n.Project = b.Issue.ProjectKey()
		n.Status = b.Issue.StatusName()
	}
	for _, c := range b.Children {
		n.Children = append(n.Children, toNode(c))
	}
	return n
}

// WriteJSON writes the indented JSON document.
func WriteJSON(w io.Writer, res *linktree.Result, meta Meta) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(res, meta))
}
