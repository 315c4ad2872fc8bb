package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/linktree/pkg/model"
)

// AssertIssueCount verifies the expected number of issues.
func AssertIssueCount(t *testing.T, issues []model.Issue, expected int) {
	t.Helper()
	if len(issues) != expected {
		t.Errorf("expected %d issues, got %d", expected, len(issues))
	}
}

// AssertNoDuplicateKeys verifies all issue keys are unique.
func AssertNoDuplicateKeys(t *testing.T, issues []model.Issue) {
	t.Helper()
	seen := make(map[string]bool)
	for _, issue := range issues {
		if seen[issue.Key] {
			t.Errorf("duplicate issue key: %s", issue.Key)
		}
		seen[issue.Key] = true
	}
}

// AssertAllValid verifies all issues pass validation.
func AssertAllValid(t *testing.T, issues []model.Issue) {
	t.Helper()
	for i, issue := range issues {
		if err := issue.Validate(); err != nil {
			t.Errorf("issue %d (%s) invalid: %v", i, issue.Key, err)
		}
	}
}

// AssertLinkExists verifies that from links to to, optionally under name.
func AssertLinkExists(t *testing.T, issues []model.Issue, from, to, name string) {
	t.Helper()
	issue := FindIssue(issues, from)
	if issue == nil {
		t.Errorf("issue %s not found", from)
		return
	}
	for _, link := range issue.Links {
		if link.TargetKey == to && (name == "" || link.Name == name) {
			return
		}
	}
	t.Errorf("expected link %s -[%s]-> %s not found", from, name, to)
}

// AssertLines compares text output line by line and reports the first
// difference.
func AssertLines(t *testing.T, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	wantLines := strings.Split(want, "\n")
	gotLines := strings.Split(got, "\n")
	for i := 0; i < len(wantLines) || i < len(gotLines); i++ {
		var w, g string
		if i < len(wantLines) {
			w = wantLines[i]
		}
		if i < len(gotLines) {
			g = gotLines[i]
		}
		if w != g {
			t.Errorf("output mismatch at line %d:\nexpected: %q\nactual:   %q\n\nfull output:\n%s", i+1, w, g, got)
			return
		}
	}
}

// AssertJSONEqual compares two values after JSON round-tripping.
func AssertJSONEqual(t *testing.T, expected, actual any) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}
	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}
	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// TempDataDir creates a temporary repository with a .linktree subdirectory
// and returns the repository path.
func TempDataDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".linktree"), 0755); err != nil {
		t.Fatalf("failed to create .linktree dir: %v", err)
	}
	return dir
}

// WriteDataFile writes issues to .linktree/issues.jsonl under repo.
func WriteDataFile(t *testing.T, repo string, issues []model.Issue) string {
	t.Helper()
	path := filepath.Join(repo, ".linktree", "issues.jsonl")
	WriteIssuesFile(t, path, issues)
	return path
}

// WriteIssuesFile writes issues as JSONL to a custom path.
func WriteIssuesFile(t *testing.T, path string, issues []model.Issue) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(ToJSONL(issues)), 0644); err != nil {
		t.Fatalf("failed to write issues file: %v", err)
	}
}

// FindIssue returns the issue with the given key, or nil if not found.
func FindIssue(issues []model.Issue, key string) *model.Issue {
	for i := range issues {
		if issues[i].Key == key {
			return &issues[i]
		}
	}
	return nil
}

// GetKeys returns a slice of all issue keys.
func GetKeys(issues []model.Issue) []string {
	keys := make([]string, len(issues))
	for i, issue := range issues {
		keys[i] = issue.Key
	}
	return keys
}

// NewIssue builds an issue with a project, a status and links given as
// alternating name, target pairs.
func NewIssue(key, project, status string, links ...string) model.Issue {
	issue := model.Issue{Key: key, Summary: "Summary " + key}
	if project != "" {
		issue.Project = &model.Project{Key: project, Name: "Project " + project}
	}
	if status != "" {
		issue.Status = &model.Status{Name: status, Description: status + " status"}
	}
	for i := 0; i+1 < len(links); i += 2 {
		issue.Links = append(issue.Links, model.Link{Name: links[i], TargetKey: links[i+1]})
	}
	return issue
}
