package linktree

import (
	"github.com/vanderheijden86/linktree/pkg/debug"
	"github.com/vanderheijden86/linktree/pkg/metrics"
	"github.com/vanderheijden86/linktree/pkg/model"
)

// Options configures a run. MaxDepth is exclusive: issues at depth MaxDepth
// are never expanded or rendered. Callers validate it.
type Options struct {
	MaxDepth  int
	Filter    Filter
	Formatter Formatter
	Presenter Presenter
}

// Result is the output of a run. Tree is nil when nothing is visible.
type Result struct {
	Facets *FacetSet
	Tree   *Branch
	Stats  Stats
}

// Run walks the graph from root, then renders it.
func Run(root *model.Issue, resolver Resolver, opts Options) *Result {
	t := New(resolver, opts)

	stopWalk := metrics.Timer(metrics.TreeWalk)
	t.Walk(root, "", 0)
	stopWalk()

	stopRender := metrics.Timer(metrics.TreeRender)
	tree := t.Render(root, "", 0)
	stopRender()

	debug.Log("linktree: root=%s depth=%d walked=%d revisited=%d records=%d repeats=%d",
		root.Key, opts.MaxDepth, t.stats.Walked, t.stats.Revisited, t.stats.Records, t.stats.Repeats)

	return &Result{
		Facets: t.facets,
		Tree:   tree,
		Stats:  t.stats,
	}
}
