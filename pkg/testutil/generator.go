// Package testutil provides link-graph fixture generators and assertions.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/linktree/pkg/model"
)

// GraphFixture is an abstract link graph. Node 0 is the traversal root.
type GraphFixture struct {
	Description string     `json:"description"`
	Nodes       []string   `json:"nodes"`
	Edges       [][2]int   `json:"edges"` // [from_idx, to_idx]
	Properties  Properties `json:"properties,omitempty"`
}

// Properties holds optional metadata about the fixture.
type Properties struct {
	HasCycles     bool `json:"has_cycles,omitempty"`
	ExpectedDepth int  `json:"expected_depth,omitempty"`
}

// GeneratorConfig controls issue generation.
type GeneratorConfig struct {
	Seed      int64    // Random seed for determinism (0 = 42)
	KeyPrefix string   // Prefix for issue keys (default: "TEST")
	Projects  []string // Project key distribution (nil = all "P1")
	Statuses  []string // Status name distribution (nil = all "Open")
	LinkNames []string // Link name distribution (nil = all "blocks")
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:      42,
		KeyPrefix: "TEST",
		Projects:  []string{"P1"},
		Statuses:  []string{"Open"},
		LinkNames: []string{"blocks"},
	}
}

// Generator creates fixtures with various topologies.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "TEST"
	}
	if len(cfg.Projects) == 0 {
		cfg.Projects = []string{"P1"}
	}
	if len(cfg.Statuses) == 0 {
		cfg.Statuses = []string{"Open"}
	}
	if len(cfg.LinkNames) == 0 {
		cfg.LinkNames = []string{"blocks"}
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// ============================================================================
// Graph Topology Generators
// ============================================================================

// Chain creates n0 -> n1 -> ... -> n{size-1}.
func (g *Generator) Chain(size int) GraphFixture {
	nodes := make([]string, size)
	edges := make([][2]int, 0, size)
	for i := 0; i < size; i++ {
		nodes[i] = fmt.Sprintf("n%d", i)
		if i > 0 {
			edges = append(edges, [2]int{i - 1, i})
		}
	}
	return GraphFixture{
		Description: fmt.Sprintf("Linear chain of %d nodes", size),
		Nodes:       nodes,
		Edges:       edges,
		Properties:  Properties{ExpectedDepth: size - 1},
	}
}

// Star creates a hub linking to every spoke.
func (g *Generator) Star(spokes int) GraphFixture {
	nodes := make([]string, spokes+1)
	edges := make([][2]int, spokes)
	nodes[0] = "hub"
	for i := 1; i <= spokes; i++ {
		nodes[i] = fmt.Sprintf("spoke%d", i)
		edges[i-1] = [2]int{0, i}
	}
	return GraphFixture{
		Description: fmt.Sprintf("Star with hub and %d spokes", spokes),
		Nodes:       nodes,
		Edges:       edges,
		Properties:  Properties{ExpectedDepth: 1},
	}
}

// Diamond links top to `width` middle nodes, each linking to bottom.
func (g *Generator) Diamond(width int) GraphFixture {
	if width < 1 {
		width = 1
	}
	size := width + 2
	nodes := make([]string, size)
	edges := make([][2]int, 0, width*2)
	nodes[0] = "top"
	nodes[size-1] = "bottom"
	for i := 1; i <= width; i++ {
		nodes[i] = fmt.Sprintf("mid%d", i)
		edges = append(edges, [2]int{0, i}, [2]int{i, size - 1})
	}
	return GraphFixture{
		Description: fmt.Sprintf("Diamond with %d middle nodes", width),
		Nodes:       nodes,
		Edges:       edges,
		Properties:  Properties{ExpectedDepth: 2},
	}
}

// Cycle creates n0 -> n1 -> ... -> n{size-1} -> n0.
func (g *Generator) Cycle(size int) GraphFixture {
	nodes := make([]string, size)
	edges := make([][2]int, size)
	for i := 0; i < size; i++ {
		nodes[i] = fmt.Sprintf("n%d", i)
		edges[i] = [2]int{i, (i + 1) % size}
	}
	return GraphFixture{
		Description: fmt.Sprintf("Cycle of %d nodes", size),
		Nodes:       nodes,
		Edges:       edges,
		Properties:  Properties{HasCycles: true},
	}
}

// BackAndForth creates a chain where every link has a reverse link, the way
// trackers store "blocks"/"is blocked by" pairs.
func (g *Generator) BackAndForth(size int) GraphFixture {
	gf := g.Chain(size)
	for i := 1; i < size; i++ {
		gf.Edges = append(gf.Edges, [2]int{i, i - 1})
	}
	gf.Description = fmt.Sprintf("Bidirectional chain of %d nodes", size)
	gf.Properties.HasCycles = size > 1
	return gf
}

// SelfLoop creates a single node linking to itself.
func (g *Generator) SelfLoop() GraphFixture {
	return GraphFixture{
		Description: "Single node with self-loop",
		Nodes:       []string{"n0"},
		Edges:       [][2]int{{0, 0}},
		Properties:  Properties{HasCycles: true},
	}
}

// Tree creates a tree with given depth and branching factor.
func (g *Generator) Tree(depth, breadth int) GraphFixture {
	if depth < 1 {
		depth = 1
	}
	if breadth < 1 {
		breadth = 1
	}

	nodes := []string{"n0"}
	var edges [][2]int
	current := []int{0}
	for d := 0; d < depth; d++ {
		var next []int
		for _, parent := range current {
			for b := 0; b < breadth; b++ {
				child := len(nodes)
				nodes = append(nodes, fmt.Sprintf("n%d", child))
				edges = append(edges, [2]int{parent, child})
				next = append(next, child)
			}
		}
		current = next
	}

	return GraphFixture{
		Description: fmt.Sprintf("Tree with depth=%d, breadth=%d (%d nodes)", depth, breadth, len(nodes)),
		Nodes:       nodes,
		Edges:       edges,
		Properties:  Properties{ExpectedDepth: depth},
	}
}

// Random creates a random directed graph, cycles and self-links included.
// density is the probability of each ordered pair being linked.
func (g *Generator) Random(size int, density float64) GraphFixture {
	density = max(0, min(1, density))
	nodes := make([]string, size)
	var edges [][2]int
	for i := 0; i < size; i++ {
		nodes[i] = fmt.Sprintf("n%d", i)
	}
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			if g.rng.Float64() < density {
				edges = append(edges, [2]int{i, j})
			}
		}
	}
	return GraphFixture{
		Description: fmt.Sprintf("Random graph with %d nodes, density=%.2f (%d edges)", size, density, len(edges)),
		Nodes:       nodes,
		Edges:       edges,
	}
}

// ============================================================================
// Issue Generators
// ============================================================================

// Key returns the issue key for a fixture node name.
func (g *Generator) Key(node string) string {
	return fmt.Sprintf("%s-%s", g.cfg.KeyPrefix, node)
}

// ToIssues converts a GraphFixture to issues, preserving edge order as link
// order.
func (g *Generator) ToIssues(gf GraphFixture) []model.Issue {
	issues := make([]model.Issue, len(gf.Nodes))
	for i, node := range gf.Nodes {
		project := pick(g, g.cfg.Projects)
		status := pick(g, g.cfg.Statuses)
		issues[i] = model.Issue{
			Key:     g.Key(node),
			Summary: fmt.Sprintf("Issue %s", node),
			Project: &model.Project{Key: project, Name: "Project " + project},
			Status:  &model.Status{Name: status, Description: status + " status"},
		}
	}
	for _, e := range gf.Edges {
		issues[e[0]].Links = append(issues[e[0]].Links, model.Link{
			Name:      pick(g, g.cfg.LinkNames),
			TargetKey: issues[e[1]].Key,
		})
	}
	return issues
}

// ToJSONL converts issues to JSONL format (one JSON object per line).
func ToJSONL(issues []model.Issue) string {
	var sb strings.Builder
	for _, issue := range issues {
		data, err := json.Marshal(issue)
		if err != nil {
			continue
		}
		sb.Write(data)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func pick(g *Generator, from []string) string {
	return from[g.rng.Intn(len(from))]
}

// ============================================================================
// Convenience Functions
// ============================================================================

// QuickChain creates a chain fixture with default settings.
func QuickChain(size int) []model.Issue {
	gen := NewDefault()
	return gen.ToIssues(gen.Chain(size))
}

// QuickStar creates a star fixture with default settings.
func QuickStar(spokes int) []model.Issue {
	gen := NewDefault()
	return gen.ToIssues(gen.Star(spokes))
}

// QuickDiamond creates a diamond fixture with default settings.
func QuickDiamond(width int) []model.Issue {
	gen := NewDefault()
	return gen.ToIssues(gen.Diamond(width))
}

// QuickCycle creates a cycle fixture with default settings.
func QuickCycle(size int) []model.Issue {
	gen := NewDefault()
	return gen.ToIssues(gen.Cycle(size))
}

// QuickTree creates a tree fixture with default settings.
func QuickTree(depth, breadth int) []model.Issue {
	gen := NewDefault()
	return gen.ToIssues(gen.Tree(depth, breadth))
}
