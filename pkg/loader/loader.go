package loader

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/linktree/pkg/debug"
	"github.com/vanderheijden86/linktree/pkg/metrics"
	"github.com/vanderheijden86/linktree/pkg/model"
)

// DataDirEnvVar is the name of the environment variable for a custom data directory
const DataDirEnvVar = "LT_DATA_DIR"

// DataDirName is the per-repository directory holding issue snapshots.
const DataDirName = ".linktree"

// PreferredJSONLNames defines the priority order for looking up issue files.
var PreferredJSONLNames = []string{"issues.jsonl", "export.jsonl"}

// GetDataDir returns the data directory path, respecting LT_DATA_DIR.
// Otherwise falls back to .linktree in the given repoPath (or cwd if empty).
func GetDataDir(repoPath string) (string, error) {
	if envDir := os.Getenv(DataDirEnvVar); envDir != "" {
		return envDir, nil
	}

	if repoPath == "" {
		var err error
		repoPath, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current working directory: %w", err)
		}
	}

	return filepath.Join(repoPath, DataDirName), nil
}

// FindJSONLPath locates the issue JSONL file in the given directory.
// Skips backup files.
func FindJSONLPath(dataDir string) (string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return "", fmt.Errorf("failed to read data directory: %w", err)
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !IsJSONLCandidate(name) {
			continue
		}
		candidates = append(candidates, name)
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("no issue JSONL file found in %s", dataDir)
	}

	for _, preferred := range PreferredJSONLNames {
		for _, name := range candidates {
			if name == preferred {
				path := filepath.Join(dataDir, name)
				if info, err := os.Stat(path); err == nil && info.Size() > 0 {
					return path, nil
				}
			}
		}
	}

	// Fall back to first non-empty candidate
	for _, name := range candidates {
		path := filepath.Join(dataDir, name)
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			return path, nil
		}
	}

	return filepath.Join(dataDir, candidates[0]), nil
}

// IsJSONLCandidate reports whether a file name looks like an issue snapshot.
func IsJSONLCandidate(name string) bool {
	if !strings.HasSuffix(name, ".jsonl") {
		return false
	}
	return !strings.Contains(name, ".backup") && !strings.Contains(name, ".orig")
}

// LoadIssues reads issues from the data directory of repoPath.
func LoadIssues(repoPath string) ([]model.Issue, error) {
	dataDir, err := GetDataDir(repoPath)
	if err != nil {
		return nil, err
	}

	jsonlPath, err := FindJSONLPath(dataDir)
	if err != nil {
		return nil, err
	}

	return LoadIssuesFromFile(jsonlPath)
}

// DefaultMaxBufferSize is the default buffer size for the reader (10MB).
const DefaultMaxBufferSize = 1024 * 1024 * 10

// ParseOptions configures the behavior of ParseIssues.
type ParseOptions struct {
	// WarningHandler is called with warning messages (e.g., malformed JSON).
	// If nil, warnings go to the debug log.
	WarningHandler func(string)

	// BufferSize sets the maximum line size (in bytes) to read at once.
	// Lines longer than this are skipped with a warning.
	// If 0, uses DefaultMaxBufferSize (10MB).
	BufferSize int
}

// LoadIssuesFromFile reads issues directly from a specific JSONL file path.
func LoadIssuesFromFile(path string) ([]model.Issue, error) {
	return LoadIssuesFromFileWithOptions(path, ParseOptions{})
}

// LoadIssuesFromFileWithOptions reads issues from a file with custom options.
func LoadIssuesFromFileWithOptions(path string, opts ParseOptions) ([]model.Issue, error) {
	defer metrics.Timer(metrics.IssueLoad)()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("no issues found at %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open issues file: %w", err)
	}
	defer file.Close()

	return ParseIssuesWithOptions(file, opts)
}

// ParseIssues parses JSONL content from a reader into issues.
func ParseIssues(r io.Reader) ([]model.Issue, error) {
	return ParseIssuesWithOptions(r, ParseOptions{})
}

// ParseIssuesWithOptions parses JSONL content with custom options.
// Each line is either a native issue record or a Jira REST issue
// ({"key": ..., "fields": {...}}). Malformed and invalid lines are skipped.
func ParseIssuesWithOptions(r io.Reader, opts ParseOptions) ([]model.Issue, error) {
	maxCapacity := opts.BufferSize
	if maxCapacity <= 0 {
		maxCapacity = DefaultMaxBufferSize
	}

	reader := bufio.NewReaderSize(r, maxCapacity)

	warn := opts.WarningHandler
	if warn == nil {
		warn = func(msg string) {
			debug.Log("loader: %s", msg)
		}
	}

	var issues []model.Issue
	lineNum := 0
	for {
		lineNum++
		line, isPrefix, err := reader.ReadLine()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error reading issues stream at line %d: %w", lineNum, err)
		}

		if isPrefix {
			warn(fmt.Sprintf("skipping line %d: line too long (exceeds %d bytes)", lineNum, maxCapacity))
			for isPrefix {
				_, isPrefix, err = reader.ReadLine()
				if err == io.EOF {
					break
				}
				if err != nil {
					return nil, fmt.Errorf("error skipping long line at line %d: %w", lineNum, err)
				}
			}
			continue
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		if lineNum == 1 {
			line = stripBOM(line)
		}

		issue, err := decodeIssue(line)
		if err != nil {
			warn(fmt.Sprintf("skipping malformed JSON on line %d: %v", lineNum, err))
			continue
		}

		if err := issue.Validate(); err != nil {
			warn(fmt.Sprintf("skipping invalid issue on line %d: %v", lineNum, err))
			continue
		}

		issues = append(issues, issue)
	}

	return issues, nil
}

// stripBOM removes the UTF-8 Byte Order Mark if present
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}
