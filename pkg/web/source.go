package web

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/linktree/internal/datasource"
	"github.com/vanderheijden86/linktree/pkg/model"
)

// Source supplies issue snapshots to the server.
type Source interface {
	// Version identifies the current snapshot. The server reloads when it changes.
	Version() (string, error)
	Load() ([]model.Issue, error)
}

// DirSource serves the freshest snapshot found in a data directory.
type DirSource struct {
	Dir string
}

// Version fingerprints every candidate file by path, size and modification time.
func (d DirSource) Version() (string, error) {
	sources, err := datasource.DiscoverSources(datasource.DiscoveryOptions{DataDir: d.Dir})
	if err != nil {
		return "", err
	}
	if len(sources) == 0 {
		return "", fmt.Errorf("no issue snapshot in %s", d.Dir)
	}
	parts := make([]string, len(sources))
	for i, s := range sources {
		parts[i] = fmt.Sprintf("%s:%d:%d", s.Path, s.Size, s.ModTime.UnixNano())
	}
	return strings.Join(parts, ";"), nil
}

// Load reads the freshest valid snapshot.
func (d DirSource) Load() ([]model.Issue, error) {
	issues, _, err := datasource.LoadIssuesFromDir(d.Dir)
	return issues, err
}

// StaticSource serves a fixed set of issues.
type StaticSource []model.Issue

// Version never changes.
func (StaticSource) Version() (string, error) { return "static", nil }

// Load returns the issues.
func (s StaticSource) Load() ([]model.Issue, error) { return s, nil }
