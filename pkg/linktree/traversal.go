// Package linktree walks the link graph of an issue from a root, decides which
// issues are visible under a depth bound and attribute filters, and renders
// the visible subset as a nested tree.
//
// A run has two passes over the same graph. Walk records facet values and
// memoizes per-issue visibility. Render emits one record per issue per
// branch, pruned by NeedsOutput, which reads the memo Walk produced.
package linktree

import (
	"github.com/vanderheijden86/linktree/pkg/model"
)

// Resolver looks up issues by key. An unknown key is not an error.
type Resolver interface {
	Resolve(key string) (*model.Issue, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(key string) (*model.Issue, bool)

// Resolve calls f(key).
func (f ResolverFunc) Resolve(key string) (*model.Issue, bool) {
	return f(key)
}

// Stats counts what a traversal did.
type Stats struct {
	Walked    int `json:"walked"`
	Revisited int `json:"revisited"`
	Records   int `json:"records"`
	Repeats   int `json:"repeats"`
}

// Traversal owns the state of one run. It is not safe for concurrent use;
// create one per root.
type Traversal struct {
	resolver  Resolver
	filter    Filter
	maxDepth  int
	presenter Presenter

	// visibility is shared by Walk and NeedsOutput.
	visibility map[string]bool
	// visited holds the link names an issue was entered with; "" marks entry
	// without a link name.
	visited map[string]map[string]bool
	facets  *FacetSet
	emitted map[string]bool
	branch  map[string]bool

	stats Stats
}

// New creates a traversal. A nil Presenter means the traversal's own
// lookahead combined with opts.Formatter.
func New(resolver Resolver, opts Options) *Traversal {
	t := &Traversal{
		resolver:   resolver,
		filter:     opts.Filter,
		maxDepth:   opts.MaxDepth,
		visibility: make(map[string]bool),
		visited:    make(map[string]map[string]bool),
		facets:     NewFacetSet(),
		emitted:    make(map[string]bool),
		branch:     make(map[string]bool),
	}
	t.presenter = opts.Presenter
	if t.presenter == nil {
		formatter := opts.Formatter
		if formatter == nil {
			formatter = keyFormatter{}
		}
		t.presenter = &defaultPresenter{t: t, formatter: formatter}
	}
	return t
}

// Facets returns the facet values recorded so far.
func (t *Traversal) Facets() *FacetSet {
	return t.facets
}

// Stats returns the counters recorded so far.
func (t *Traversal) Stats() Stats {
	return t.stats
}

// Visibility returns the memoized decision for key.
func (t *Traversal) Visibility(key string) (visible, ok bool) {
	visible, ok = t.visibility[key]
	return visible, ok
}

// IsVisible applies the traversal's filter.
func (t *Traversal) IsVisible(issue *model.Issue, linkName string, depth int) bool {
	return t.filter.IsVisible(issue, linkName, depth)
}

// child resolves the target of link from issue. Self-links and unknown
// targets resolve to nothing.
func (t *Traversal) child(issue *model.Issue, link model.Link) (*model.Issue, bool) {
	if link.TargetKey == "" || link.IsSelf(issue.Key) {
		return nil, false
	}
	return t.resolver.Resolve(link.TargetKey)
}

func (t *Traversal) recordIssueFacets(issue *model.Issue) {
	if p := issue.Project; p != nil && p.Key != "" {
		t.facets.Add(FacetProjects, p.Key, p.Name)
	}
	if s := issue.Status; s != nil && s.Name != "" {
		t.facets.Add(FacetStatuses, s.Name, s.Description)
	}
}

// Walk is the discovery pass. Facets are recorded for every issue reached,
// including ones at the depth bound and ones the filter rejects. Children are
// expanded only on the first visit; a later visit under a new link name may
// turn a false visibility into true but does not expand again.
func (t *Traversal) Walk(issue *model.Issue, linkName string, depth int) {
	t.recordIssueFacets(issue)

	if depth >= t.maxDepth {
		return
	}

	seen, visited := t.visited[issue.Key]
	if !visited {
		t.visited[issue.Key] = map[string]bool{linkName: true}
		t.visibility[issue.Key] = t.filter.IsVisible(issue, linkName, depth)
		t.stats.Walked++

		for _, link := range issue.Links {
			if link.Name != "" {
				t.facets.Add(FacetLinkTypes, link.Name, link.Name)
			}
			if next, ok := t.child(issue, link); ok {
				t.Walk(next, link.Name, depth+1)
			}
		}
		return
	}

	if linkName != "" && !seen[linkName] {
		seen[linkName] = true
		t.stats.Revisited++
		if !t.visibility[issue.Key] {
			t.visibility[issue.Key] = t.filter.IsVisible(issue, linkName, depth)
		}
	}
}

// NeedsOutput reports whether issue or anything below it within the depth
// budget is visible. The first answer for a key is kept for the rest of the
// run; after Walk this is a memo read for every walked issue.
//
// Each child is checked with the name of the link that reaches it, not with
// the parent's incoming link name, so the link filter sees the same name here
// as in Walk and Render.
func (t *Traversal) NeedsOutput(issue *model.Issue, linkName string, depth int) bool {
	if depth >= t.maxDepth {
		return false
	}
	if needed, ok := t.visibility[issue.Key]; ok {
		return needed
	}

	needed := t.filter.IsVisible(issue, linkName, depth)
	if !needed {
		for _, link := range issue.Links {
			next, ok := t.child(issue, link)
			if !ok {
				continue
			}
			if t.NeedsOutput(next, link.Name, depth+1) {
				needed = true
				break
			}
		}
	}

	t.visibility[issue.Key] = needed
	return needed
}
