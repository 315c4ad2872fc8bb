// Package store holds an in-memory, read-only issue cache and builds the
// bounded prefetch window a traversal runs against.
package store

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/vanderheijden86/linktree/pkg/debug"
	"github.com/vanderheijden86/linktree/pkg/metrics"
	"github.com/vanderheijden86/linktree/pkg/model"
)

// ErrNotFound is returned when a key is not present in the store.
var ErrNotFound = errors.New("issue not found")

// Default window bounds, matching the tracker's batch fetch.
const (
	DefaultStartAt    = 0
	DefaultMaxResults = 1000
)

// Window bounds a prefetch: the first StartAt issues in breadth-first order
// are skipped and at most MaxResults are kept.
type Window struct {
	StartAt    int
	MaxResults int
}

// DefaultWindow returns the 0/1000 window.
func DefaultWindow() Window {
	return Window{StartAt: DefaultStartAt, MaxResults: DefaultMaxResults}
}

// Store is an immutable key -> issue cache. Safe for concurrent reads.
type Store struct {
	issues []model.Issue
	index  map[string]int
}

// New builds a store from issues. Later duplicates of a key replace earlier
// ones in place.
func New(issues []model.Issue) *Store {
	s := &Store{
		issues: make([]model.Issue, 0, len(issues)),
		index:  make(map[string]int, len(issues)),
	}
	for _, issue := range issues {
		if i, ok := s.index[issue.Key]; ok {
			s.issues[i] = issue
			continue
		}
		s.index[issue.Key] = len(s.issues)
		s.issues = append(s.issues, issue)
	}
	return s
}

// Resolve returns the issue for key, or false when it is unknown.
func (s *Store) Resolve(key string) (*model.Issue, bool) {
	i, ok := s.index[key]
	if !ok {
		return nil, false
	}
	return &s.issues[i], true
}

// Get is Resolve with an error for shells that report unknown keys.
func (s *Store) Get(key string) (*model.Issue, error) {
	issue, ok := s.Resolve(key)
	if !ok {
		return nil, fmt.Errorf("%q: %w", key, ErrNotFound)
	}
	return issue, nil
}

// Len returns the number of cached issues.
func (s *Store) Len() int {
	return len(s.issues)
}

// Keys returns the cached keys in insertion order.
func (s *Store) Keys() []string {
	keys := make([]string, len(s.issues))
	for i := range s.issues {
		keys[i] = s.issues[i].Key
	}
	return keys
}

// linkGraph is the gonum view of the store's links. Self-links and links to
// unknown keys are not represented.
type linkGraph struct {
	g        *simple.DirectedGraph
	keyToID  map[string]int64
	idToKey  map[int64]string
	position map[string]int
}

func (s *Store) buildGraph() *linkGraph {
	lg := &linkGraph{
		g:        simple.NewDirectedGraph(),
		keyToID:  make(map[string]int64, len(s.issues)),
		idToKey:  make(map[int64]string, len(s.issues)),
		position: make(map[string]int, len(s.issues)),
	}

	for i := range s.issues {
		n := lg.g.NewNode()
		lg.g.AddNode(n)
		lg.keyToID[s.issues[i].Key] = n.ID()
		lg.idToKey[n.ID()] = s.issues[i].Key
		lg.position[s.issues[i].Key] = i
	}

	for i := range s.issues {
		issue := &s.issues[i]
		u := lg.keyToID[issue.Key]
		for _, link := range issue.Links {
			if link.IsSelf(issue.Key) {
				continue
			}
			v, ok := lg.keyToID[link.TargetKey]
			if !ok {
				continue
			}
			// simple.DirectedGraph keeps one edge per ordered pair
			lg.g.SetEdge(lg.g.NewEdge(lg.g.Node(u), lg.g.Node(v)))
		}
	}
	return lg
}

// Window returns a new store holding the issues within maxDepth links of
// rootKey, in breadth-first order (ties broken by insertion order), limited
// by w. The root itself is at distance 0.
func (s *Store) Window(rootKey string, maxDepth int, w Window) (*Store, error) {
	defer metrics.Timer(metrics.WindowBuild)()

	if _, ok := s.index[rootKey]; !ok {
		return nil, fmt.Errorf("window root %q: %w", rootKey, ErrNotFound)
	}
	if w.StartAt < 0 || w.MaxResults <= 0 {
		return nil, fmt.Errorf("invalid window start_at=%d max_results=%d", w.StartAt, w.MaxResults)
	}

	lg := s.buildGraph()
	distance := make(map[string]int)

	bf := traverse.BreadthFirst{}
	bf.Walk(lg.g, lg.g.Node(lg.keyToID[rootKey]), func(n graph.Node, d int) bool {
		if d > maxDepth {
			return true
		}
		distance[lg.idToKey[n.ID()]] = d
		return false
	})

	ordered := make([]string, 0, len(distance))
	for key := range distance {
		ordered = append(ordered, key)
	}
	sort.Slice(ordered, func(i, j int) bool {
		di, dj := distance[ordered[i]], distance[ordered[j]]
		if di != dj {
			return di < dj
		}
		return lg.position[ordered[i]] < lg.position[ordered[j]]
	})

	start := min(w.StartAt, len(ordered))
	end := min(start+w.MaxResults, len(ordered))
	ordered = ordered[start:end]

	windowed := make([]model.Issue, len(ordered))
	for i, key := range ordered {
		windowed[i] = s.issues[s.index[key]]
	}

	debug.Log("store: window root=%s depth=%d reachable=%d kept=%d", rootKey, maxDepth, len(distance), len(windowed))
	return New(windowed), nil
}

// Cycles returns the strongly connected components with more than one issue,
// each sorted by key. Self-links are not cycles here.
func (s *Store) Cycles() [][]string {
	lg := s.buildGraph()

	var cycles [][]string
	for _, scc := range topo.TarjanSCC(lg.g) {
		if len(scc) < 2 {
			continue
		}
		keys := make([]string, len(scc))
		for i, n := range scc {
			keys[i] = lg.idToKey[n.ID()]
		}
		sort.Strings(keys)
		cycles = append(cycles, keys)
	}
	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i][0] < cycles[j][0]
	})

	debug.LogIf(len(cycles) > 0, "store: %d link cycles", len(cycles))
	return cycles
}
