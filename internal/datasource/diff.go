package datasource

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/linktree/pkg/debug"
	"github.com/vanderheijden86/linktree/pkg/model"
)

// SourceDiff represents differences between two snapshots
type SourceDiff struct {
	SourceA string `json:"source_a"`
	SourceB string `json:"source_b"`
	// MissingInA contains keys present in B but not in A
	MissingInA []string `json:"missing_in_a,omitempty"`
	// MissingInB contains keys present in A but not in B
	MissingInB     []string             `json:"missing_in_b,omitempty"`
	StatusMismatch []StatusDifference   `json:"status_mismatch,omitempty"`
	LinkMismatch   []string             `json:"link_mismatch,omitempty"`
	CountA         int                  `json:"count_a"`
	CountB         int                  `json:"count_b"`
}

// StatusDifference represents a status mismatch for a single issue
type StatusDifference struct {
	Key     string `json:"key"`
	StatusA string `json:"status_a"`
	StatusB string `json:"status_b"`
}

// HasInconsistencies returns true if there are any differences between sources
func (d SourceDiff) HasInconsistencies() bool {
	return len(d.MissingInA) > 0 || len(d.MissingInB) > 0 ||
		len(d.StatusMismatch) > 0 || len(d.LinkMismatch) > 0
}

// Summary returns a human-readable summary of the differences
func (d SourceDiff) Summary() string {
	if !d.HasInconsistencies() {
		return fmt.Sprintf("Sources match (%d issues each)", d.CountA)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Inconsistencies found between %s and %s:\n", d.SourceA, d.SourceB)
	if d.CountA != d.CountB {
		fmt.Fprintf(&sb, "  - Count mismatch: %d vs %d\n", d.CountA, d.CountB)
	}
	writeKeys := func(label string, keys []string) {
		if len(keys) == 0 {
			return
		}
		fmt.Fprintf(&sb, "  - %d %s\n", len(keys), label)
		if len(keys) <= 5 {
			for _, k := range keys {
				fmt.Fprintf(&sb, "    - %s\n", k)
			}
		}
	}
	writeKeys("issues in "+d.SourceB+" but not "+d.SourceA, d.MissingInA)
	writeKeys("issues in "+d.SourceA+" but not "+d.SourceB, d.MissingInB)
	if len(d.StatusMismatch) > 0 {
		fmt.Fprintf(&sb, "  - %d issues with different status\n", len(d.StatusMismatch))
		if len(d.StatusMismatch) <= 5 {
			for _, m := range d.StatusMismatch {
				fmt.Fprintf(&sb, "    - %s: %s vs %s\n", m.Key, m.StatusA, m.StatusB)
			}
		}
	}
	writeKeys("issues with different links", d.LinkMismatch)
	return sb.String()
}

// DiffOptions configures the diff operation
type DiffOptions struct {
	// CompareLinks also reports issues whose link lists differ
	CompareLinks bool
	// MaxDifferences limits the number of differences tracked per kind (0 = unlimited)
	MaxDifferences int
}

// DefaultDiffOptions returns sensible default diff options
func DefaultDiffOptions() DiffOptions {
	return DiffOptions{
		CompareLinks:   true,
		MaxDifferences: 100,
	}
}

func linkSignature(issue model.Issue) string {
	parts := make([]string, len(issue.Links))
	for i, l := range issue.Links {
		parts[i] = l.Name + "\x00" + l.TargetKey
	}
	return strings.Join(parts, "\x01")
}

// DetectInconsistencies compares two sets of issues and returns differences.
// Keys in every list are sorted.
func DetectInconsistencies(issuesA, issuesB []model.Issue, sourceA, sourceB string, opts DiffOptions) SourceDiff {
	diff := SourceDiff{SourceA: sourceA, SourceB: sourceB}

	mapA := make(map[string]model.Issue, len(issuesA))
	for _, issue := range issuesA {
		mapA[issue.Key] = issue
	}
	mapB := make(map[string]model.Issue, len(issuesB))
	for _, issue := range issuesB {
		mapB[issue.Key] = issue
	}
	diff.CountA = len(mapA)
	diff.CountB = len(mapB)

	for key := range mapA {
		if _, exists := mapB[key]; !exists {
			diff.MissingInB = append(diff.MissingInB, key)
		}
	}
	for key, issueB := range mapB {
		issueA, exists := mapA[key]
		if !exists {
			diff.MissingInA = append(diff.MissingInA, key)
			continue
		}
		if a, b := issueA.StatusName(), issueB.StatusName(); a != b {
			diff.StatusMismatch = append(diff.StatusMismatch, StatusDifference{Key: key, StatusA: a, StatusB: b})
		}
		if opts.CompareLinks && linkSignature(issueA) != linkSignature(issueB) {
			diff.LinkMismatch = append(diff.LinkMismatch, key)
		}
	}

	sort.Strings(diff.MissingInA)
	sort.Strings(diff.MissingInB)
	sort.Strings(diff.LinkMismatch)
	sort.Slice(diff.StatusMismatch, func(i, j int) bool { return diff.StatusMismatch[i].Key < diff.StatusMismatch[j].Key })

	if n := opts.MaxDifferences; n > 0 {
		diff.MissingInA = diff.MissingInA[:min(n, len(diff.MissingInA))]
		diff.MissingInB = diff.MissingInB[:min(n, len(diff.MissingInB))]
		diff.LinkMismatch = diff.LinkMismatch[:min(n, len(diff.LinkMismatch))]
		diff.StatusMismatch = diff.StatusMismatch[:min(n, len(diff.StatusMismatch))]
	}
	return diff
}

// CompareSources loads and compares two data sources
func CompareSources(sourceA, sourceB DataSource, opts DiffOptions) (*SourceDiff, error) {
	issuesA, err := LoadFromSource(sourceA)
	if err != nil {
		return nil, fmt.Errorf("failed to load source A (%s): %w", sourceA.Path, err)
	}
	issuesB, err := LoadFromSource(sourceB)
	if err != nil {
		return nil, fmt.Errorf("failed to load source B (%s): %w", sourceB.Path, err)
	}

	diff := DetectInconsistencies(issuesA, issuesB, sourceA.Path, sourceB.Path, opts)
	return &diff, nil
}

// InconsistencyReport lists every discovered source and the differences
// between each pair of valid ones.
type InconsistencyReport struct {
	Sources              []DataSource `json:"sources"`
	Diffs                []SourceDiff `json:"diffs,omitempty"`
	TotalInconsistencies int          `json:"total_inconsistencies"`
}

// GenerateInconsistencyReport compares each valid source with every other
// valid source. Sources that fail to load are skipped.
func GenerateInconsistencyReport(sources []DataSource, opts DiffOptions) *InconsistencyReport {
	report := &InconsistencyReport{Sources: sources}
	for i := 0; i < len(sources); i++ {
		if !sources[i].Valid {
			continue
		}
		for j := i + 1; j < len(sources); j++ {
			if !sources[j].Valid {
				continue
			}
			diff, err := CompareSources(sources[i], sources[j], opts)
			if err != nil {
				debug.Log("datasource: compare %s with %s: %v", sources[i].Path, sources[j].Path, err)
				continue
			}
			if diff.HasInconsistencies() {
				report.Diffs = append(report.Diffs, *diff)
				report.TotalInconsistencies += len(diff.MissingInA) + len(diff.MissingInB) +
					len(diff.StatusMismatch) + len(diff.LinkMismatch)
			}
		}
	}
	return report
}
