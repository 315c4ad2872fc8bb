// Package datasource discovers, validates and selects the freshest issue
// snapshot in a data directory: a SQLite database (issues.db) or JSONL files.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/vanderheijden86/linktree/pkg/debug"
	"github.com/vanderheijden86/linktree/pkg/loader"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeSQLite is a SQLite snapshot (issues.db)
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeJSONL is a JSONL export
	SourceTypeJSONL SourceType = "jsonl"
)

// SQLiteFileName is the name of the SQLite snapshot inside the data directory.
const SQLiteFileName = "issues.db"

// IsSnapshotFile reports whether a data directory entry is a snapshot
// DiscoverSources would consider.
func IsSnapshotFile(name string) bool {
	return name == SQLiteFileName || loader.IsJSONLCandidate(name)
}

// Priority values for source types (higher = more authoritative)
const (
	PrioritySQLite = 100
	PriorityJSONL  = 50
)

// DataSource represents a potential source of issue data
type DataSource struct {
	Type            SourceType `json:"type"`
	Path            string     `json:"path"`
	Priority        int        `json:"priority"`
	ModTime         time.Time  `json:"mod_time"`
	Valid           bool       `json:"valid"`
	ValidationError string     `json:"validation_error,omitempty"`
	IssueCount      int        `json:"issue_count"`
	Size            int64      `json:"size"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s (%s, priority=%d, mod=%s, issues=%d, %s)",
		s.Path, s.Type, s.Priority, s.ModTime.Format(time.RFC3339), s.IssueCount, status)
}

// DiscoveryOptions configures source discovery behavior
type DiscoveryOptions struct {
	// DataDir is the data directory (auto-detected from RepoPath if empty)
	DataDir string
	// RepoPath is the repository root path (optional, uses cwd if empty)
	RepoPath string
	// ValidateAfterDiscovery runs validation on each discovered source
	ValidateAfterDiscovery bool
	// IncludeInvalid includes sources that failed validation in results
	IncludeInvalid bool
}

// DiscoverSources finds all potential data sources in the data directory,
// freshest first; equal modification times are ordered by priority.
func DiscoverSources(opts DiscoveryOptions) ([]DataSource, error) {
	dataDir := opts.DataDir
	if dataDir == "" {
		var err error
		dataDir, err = loader.GetDataDir(opts.RepoPath)
		if err != nil {
			return nil, err
		}
	}

	debug.Log("datasource: discovering sources in %s", dataDir)

	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var sources []DataSource
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()

		var source DataSource
		switch {
		case name == SQLiteFileName:
			source = DataSource{Type: SourceTypeSQLite, Priority: PrioritySQLite}
		case loader.IsJSONLCandidate(name):
			source = DataSource{Type: SourceTypeJSONL, Priority: PriorityJSONL}
		default:
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}
		source.Path = filepath.Join(dataDir, name)
		source.ModTime = info.ModTime()
		source.Size = info.Size()
		sources = append(sources, source)

		debug.Log("datasource: found %s %s (mod=%s)", source.Type, source.Path, source.ModTime.Format(time.RFC3339))
	}

	if opts.ValidateAfterDiscovery {
		for i := range sources {
			if err := ValidateSource(&sources[i]); err != nil {
				debug.Log("datasource: validation failed for %s: %v", sources[i].Path, err)
			}
		}
		if !opts.IncludeInvalid {
			var valid []DataSource
			for _, s := range sources {
				if s.Valid {
					valid = append(valid, s)
				}
			}
			sources = valid
		}
	}

	sort.SliceStable(sources, func(i, j int) bool {
		if sources[i].ModTime.Equal(sources[j].ModTime) {
			return sources[i].Priority > sources[j].Priority
		}
		return sources[i].ModTime.After(sources[j].ModTime)
	})

	debug.Log("datasource: discovered %d sources", len(sources))
	return sources, nil
}
