package linktree

// Facet names recorded during a walk.
const (
	FacetProjects  = "Projects"
	FacetStatuses  = "Statuses"
	FacetLinkTypes = "Link types"
)

// FacetValue is one observed value of a facet.
type FacetValue struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Facet is a reporting dimension with its values in first-seen order.
type Facet struct {
	Name   string       `json:"name"`
	Values []FacetValue `json:"values"`
}

type facetValues struct {
	keys   []string
	labels map[string]string
}

// FacetSet accumulates facet values across a walk. Names and keys keep
// first-seen order; re-adding a key updates its label in place.
type FacetSet struct {
	names  []string
	facets map[string]*facetValues
}

// NewFacetSet returns an empty set.
func NewFacetSet() *FacetSet {
	return &FacetSet{facets: make(map[string]*facetValues)}
}

// Add records key with label under name.
func (s *FacetSet) Add(name, key, label string) {
	f, ok := s.facets[name]
	if !ok {
		f = &facetValues{labels: make(map[string]string)}
		s.facets[name] = f
		s.names = append(s.names, name)
	}
	if _, seen := f.labels[key]; !seen {
		f.keys = append(f.keys, key)
	}
	f.labels[key] = label
}

// Names returns facet names in first-seen order.
func (s *FacetSet) Names() []string {
	return append([]string(nil), s.names...)
}

// Keys returns the value keys of name in first-seen order.
func (s *FacetSet) Keys(name string) []string {
	f, ok := s.facets[name]
	if !ok {
		return nil
	}
	return append([]string(nil), f.keys...)
}

// Label returns the label recorded for key under name.
func (s *FacetSet) Label(name, key string) (string, bool) {
	f, ok := s.facets[name]
	if !ok {
		return "", false
	}
	label, ok := f.labels[key]
	return label, ok
}

// Facets returns a snapshot of every facet.
func (s *FacetSet) Facets() []Facet {
	out := make([]Facet, 0, len(s.names))
	for _, name := range s.names {
		f := s.facets[name]
		facet := Facet{Name: name, Values: make([]FacetValue, len(f.keys))}
		for i, key := range f.keys {
			facet.Values[i] = FacetValue{Key: key, Label: f.labels[key]}
		}
		out = append(out, facet)
	}
	return out
}

// Len returns the number of facets.
func (s *FacetSet) Len() int {
	return len(s.names)
}
