package datasource

import (
	"fmt"

	"github.com/vanderheijden86/linktree/pkg/loader"
	"github.com/vanderheijden86/linktree/pkg/model"
)

// LoadIssues performs multi-source detection and loading for a repository.
// It discovers all snapshots in the data directory, validates them, and loads
// the freshest valid one (SQLite wins ties). Falls back to plain JSONL loading
// when detection finds nothing usable.
func LoadIssues(repoPath string) ([]model.Issue, DataSource, error) {
	dataDir, err := loader.GetDataDir(repoPath)
	if err != nil {
		return nil, DataSource{}, err
	}
	return LoadIssuesFromDir(dataDir)
}

// LoadIssuesFromDir performs source detection within a known data directory.
// The returned DataSource names what was actually loaded.
func LoadIssuesFromDir(dataDir string) ([]model.Issue, DataSource, error) {
	sources, err := DiscoverSources(DiscoveryOptions{
		DataDir:                dataDir,
		ValidateAfterDiscovery: true,
	})
	if err == nil {
		if best, selErr := SelectBestSource(sources); selErr == nil {
			issues, loadErr := LoadFromSource(best)
			if loadErr == nil {
				return issues, best, nil
			}
		}
	}

	jsonlPath, err := loader.FindJSONLPath(dataDir)
	if err != nil {
		return nil, DataSource{}, err
	}
	issues, err := loader.LoadIssuesFromFile(jsonlPath)
	if err != nil {
		return nil, DataSource{}, err
	}
	return issues, DataSource{Type: SourceTypeJSONL, Path: jsonlPath, Priority: PriorityJSONL, IssueCount: len(issues)}, nil
}

// LoadFromSource loads issues from a specific DataSource, dispatching to the
// appropriate reader based on source type.
func LoadFromSource(source DataSource) ([]model.Issue, error) {
	switch source.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		defer reader.Close()
		return reader.LoadIssues()

	case SourceTypeJSONL:
		return loader.LoadIssuesFromFile(source.Path)

	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
}
