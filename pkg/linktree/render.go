package linktree

import (
	"maps"
	"strings"

	"github.com/vanderheijden86/linktree/pkg/model"
)

// Formatter turns one issue into a record.
type Formatter interface {
	Format(issue *model.Issue, linkName string, depth int) string
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(issue *model.Issue, linkName string, depth int) string

// Format calls f.
func (f FormatterFunc) Format(issue *model.Issue, linkName string, depth int) string {
	return f(issue, linkName, depth)
}

// Presenter decides whether a subtree is rendered and renders one record.
// Shells may supply their own; the default uses NeedsOutput and a Formatter.
type Presenter interface {
	IsNeeded(issue *model.Issue, linkName string, depth int) bool
	Render(issue *model.Issue, linkName string, depth int) string
}

type defaultPresenter struct {
	t         *Traversal
	formatter Formatter
}

func (p *defaultPresenter) IsNeeded(issue *model.Issue, linkName string, depth int) bool {
	return p.t.NeedsOutput(issue, linkName, depth)
}

func (p *defaultPresenter) Render(issue *model.Issue, linkName string, depth int) string {
	return p.formatter.Format(issue, linkName, depth)
}

type keyFormatter struct{}

func (keyFormatter) Format(issue *model.Issue, _ string, _ int) string {
	return issue.Key + "\n"
}

// Branch is one rendered occurrence of an issue. A Repeat branch is a later
// appearance of an issue already expanded elsewhere and has no children.
type Branch struct {
	Key      string    `json:"key"`
	LinkName string    `json:"link_name,omitempty"`
	Depth    int       `json:"depth"`
	Record   string    `json:"record"`
	Repeat   bool      `json:"repeat,omitempty"`
	Children []*Branch `json:"children,omitempty"`

	Issue *model.Issue `json:"-"`
}

// Assemble concatenates the record with the assembled children and hands the
// result to wrap. A nil wrap leaves it as is.
func (b *Branch) Assemble(wrap func(content string) string) string {
	if b == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(b.Record)
	for _, c := range b.Children {
		sb.WriteString(c.Assemble(wrap))
	}
	if wrap == nil {
		return sb.String()
	}
	return wrap(sb.String())
}

// Visit calls fn for b and its descendants in pre-order until fn returns
// false.
func (b *Branch) Visit(fn func(*Branch) bool) bool {
	if b == nil {
		return true
	}
	if !fn(b) {
		return false
	}
	for _, c := range b.Children {
		if !c.Visit(fn) {
			return false
		}
	}
	return true
}

// Count returns the number of records in the tree.
func (b *Branch) Count() int {
	n := 0
	b.Visit(func(*Branch) bool {
		n++
		return true
	})
	return n
}

// Height returns the number of levels in the tree.
func (b *Branch) Height() int {
	if b == nil {
		return 0
	}
	h := 0
	for _, c := range b.Children {
		h = max(h, c.Height())
	}
	return h + 1
}

// Render is the emission pass. An issue is expanded only at its first
// appearance in the whole output. Later appearances in other branches are
// emitted alone, at most once per branch.
func (t *Traversal) Render(issue *model.Issue, linkName string, depth int) *Branch {
	if depth >= t.maxDepth || !t.presenter.IsNeeded(issue, linkName, depth) {
		return nil
	}

	if !t.emitted[issue.Key] {
		b := &Branch{
			Key:      issue.Key,
			LinkName: linkName,
			Depth:    depth,
			Record:   t.presenter.Render(issue, linkName, depth),
			Issue:    issue,
		}
		t.stats.Records++
		t.emitted[issue.Key] = true
		t.branch[issue.Key] = true
		snapshot := maps.Clone(t.branch)

		for _, link := range issue.Links {
			next, ok := t.child(issue, link)
			if !ok {
				continue
			}
			if c := t.Render(next, link.Name, depth+1); c != nil {
				b.Children = append(b.Children, c)
			}
		}

		t.branch = snapshot
		return b
	}

	if !t.branch[issue.Key] {
		t.branch[issue.Key] = true
		t.stats.Records++
		t.stats.Repeats++
		return &Branch{
			Key:      issue.Key,
			LinkName: linkName,
			Depth:    depth,
			Record:   t.presenter.Render(issue, linkName, depth),
			Repeat:   true,
			Issue:    issue,
		}
	}

	return nil
}
