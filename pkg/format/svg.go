package format

import (
	"fmt"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/linktree/pkg/linktree"
)

const (
	svgMargin     = 16
	svgRowHeight  = 22
	svgIndent     = 24
	svgCharWidth  = 8
	svgMinWidth   = 320
	svgFontFamily = "font-family:monospace"
)

type svgRow struct {
	depth  int
	text   string
	status string
	repeat bool
}

// WriteSVG draws one text row per record, indented by depth, with the facet
// summary below the tree.
func WriteSVG(w io.Writer, res *linktree.Result) error {
	var rows []svgRow
	res.Tree.Visit(func(b *linktree.Branch) bool {
		row := svgRow{depth: b.Depth, repeat: b.Repeat, text: b.Key}
		if b.Issue != nil {
			row.status = b.Issue.StatusName()
			row.text = Label(b.Issue, b.LinkName)
		}
		rows = append(rows, row)
		return true
	})

	var facetLines []string
	for _, name := range res.Facets.Names() {
		facetLines = append(facetLines, name+": "+strings.Join(res.Facets.Keys(name), ", "))
	}

	width := svgMinWidth
	for _, r := range rows {
		width = max(width, svgMargin*2+r.depth*svgIndent+runewidth.StringWidth(r.text)*svgCharWidth)
	}
	for _, l := range facetLines {
		width = max(width, svgMargin*2+runewidth.StringWidth(l)*svgCharWidth)
	}
	height := svgMargin*2 + (len(rows)+len(facetLines)+1)*svgRowHeight

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:#1E1E2E")

	y := svgMargin + svgRowHeight - 6
	for _, r := range rows {
		x := svgMargin + r.depth*svgIndent
		if r.depth > 0 {
			canvas.Line(x-svgIndent/2, y-svgRowHeight+6, x-svgIndent/2, y-4, "stroke:#45475A;stroke-width:1")
			canvas.Line(x-svgIndent/2, y-4, x-4, y-4, "stroke:#45475A;stroke-width:1")
		}
		style := fmt.Sprintf("fill:%s;font-size:13px;%s", StatusColor(r.status).Dark, svgFontFamily)
		if r.repeat {
			style += ";font-style:italic;opacity:0.7"
		}
		canvas.Text(x, y, r.text, style)
		y += svgRowHeight
	}

	canvas.Line(svgMargin, y-svgRowHeight/2, width-svgMargin, y-svgRowHeight/2, "stroke:#45475A;stroke-width:1")
	y += svgRowHeight / 2
	for _, l := range facetLines {
		canvas.Text(svgMargin, y, l, "fill:#A6ADC8;font-size:12px;"+svgFontFamily)
		y += svgRowHeight
	}

	canvas.End()
	return nil
}
