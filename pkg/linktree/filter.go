package linktree

import (
	"sort"
	"strings"

	"github.com/vanderheijden86/linktree/pkg/model"
)

// Set is a set of allowed values. A nil Set means the filter is not configured.
type Set map[string]struct{}

// NewSet builds a configured set from values.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// ParseSet splits a comma separated list. Blanks around items are trimmed
// and empty items dropped; a list with no items left yields nil (not
// configured).
func ParseSet(list string) Set {
	var s Set
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			if s == nil {
				s = Set{}
			}
			s[item] = struct{}{}
		}
	}
	return s
}

// Has reports whether v is in the set.
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Values returns the sorted members.
func (s Set) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Filter holds the attribute filters. Each nil set is ignored.
type Filter struct {
	LinkTypes Set
	Projects  Set
	Statuses  Set
}

// ParseFilter builds a Filter from comma separated lists as typed on a
// command line or query string.
func ParseFilter(links, projects, statuses string) Filter {
	return Filter{
		LinkTypes: ParseSet(links),
		Projects:  ParseSet(projects),
		Statuses:  ParseSet(statuses),
	}
}

// IsZero reports whether no filter is configured.
func (f Filter) IsZero() bool {
	return f.LinkTypes == nil && f.Projects == nil && f.Statuses == nil
}

// IsVisible reports whether issue, reached via linkName, passes every
// configured filter. An empty linkName (the root) passes the link filter. An
// issue without a project or status fails a configured project or status
// filter. depth is accepted for presenters that filter by level.
func (f Filter) IsVisible(issue *model.Issue, linkName string, depth int) bool {
	if f.LinkTypes != nil && linkName != "" && !f.LinkTypes.Has(linkName) {
		return false
	}
	if f.Projects != nil && (issue.Project == nil || !f.Projects.Has(issue.Project.Key)) {
		return false
	}
	if f.Statuses != nil && (issue.Status == nil || !f.Statuses.Has(issue.Status.Name)) {
		return false
	}
	return true
}
