package main_test

import (
	"bufio"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/linktree/internal/datasource"
	"github.com/vanderheijden86/linktree/pkg/model"
	"github.com/vanderheijden86/linktree/pkg/testutil"
)

func cycle() []model.Issue {
	return []model.Issue{
		testutil.NewIssue("R", "P1", "Open", "blocks", "A"),
		testutil.NewIssue("A", "P2", "Done", "relates to", "R"),
	}
}

func TestTreeFromWorkingDirectory(t *testing.T) {
	repo := newRepo(t, cycle())

	res := runLt(t, repo, "-depth", "2", "R")
	if res.code != 0 {
		t.Fatalf("exit %d: %s", res.code, res.stderr)
	}
	want := "- R Summary R [Open]\n" +
		"-- blocks A Summary A [Done]\n" +
		"======\n" +
		"Projects: P1, P2\n" +
		"Statuses: Open, Done\n" +
		"Link types: blocks, relates to\n"
	testutil.AssertLines(t, want, res.stdout)
}

func TestTreeDeepChain(t *testing.T) {
	gen := testutil.NewDefault()
	repo := newRepo(t, gen.ToIssues(gen.Chain(6)))
	root := gen.Key("n0")

	shallow := runLt(t, repo, "-depth", "2", "-pattern", `{{prefix}}{{key}}`, root)
	deep := runLt(t, repo, "-depth", "16", "-pattern", `{{prefix}}{{key}}`, root)
	if shallow.code != 0 || deep.code != 0 {
		t.Fatalf("exit %d/%d: %s%s", shallow.code, deep.code, shallow.stderr, deep.stderr)
	}
	tree := func(out string) []string {
		head, _, _ := strings.Cut(out, "======")
		return strings.Fields(head)
	}
	if got := len(tree(shallow.stdout)); got != 2 {
		t.Errorf("depth 2 printed %d records:\n%s", got, shallow.stdout)
	}
	if got := len(tree(deep.stdout)); got != 6 {
		t.Errorf("depth 16 printed %d records:\n%s", got, deep.stdout)
	}
}

func TestImportThenTreeFromSQLite(t *testing.T) {
	repo := t.TempDir()
	export := filepath.Join(t.TempDir(), "export.jsonl")
	testutil.WriteIssuesFile(t, export, cycle())

	res := runLt(t, repo, "import", export)
	if res.code != 0 {
		t.Fatalf("import exit %d: %s", res.code, res.stderr)
	}
	db := filepath.Join(repo, ".linktree", datasource.SQLiteFileName)
	if _, err := os.Stat(db); err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}

	res = runLt(t, repo, "-statuses", "Open", "R")
	if res.code != 0 {
		t.Fatalf("tree exit %d: %s", res.code, res.stderr)
	}
	if !strings.HasPrefix(res.stdout, "- R Summary R [Open]\n======\n") {
		t.Errorf("unexpected tree:\n%s", res.stdout)
	}
}

func TestSourcesJSON(t *testing.T) {
	repo := newRepo(t, cycle())
	db := filepath.Join(repo, ".linktree", datasource.SQLiteFileName)
	if err := datasource.WriteSQLite(db, cycle()); err != nil {
		t.Fatal(err)
	}

	res := runLt(t, repo, "sources", "-json")
	if res.code != 0 {
		t.Fatalf("exit %d: %s", res.code, res.stderr)
	}
	var report datasource.InconsistencyReport
	if err := json.Unmarshal([]byte(res.stdout), &report); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, res.stdout)
	}
	if len(report.Sources) != 2 || report.TotalInconsistencies != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestExitCodes(t *testing.T) {
	repo := newRepo(t, cycle())

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"ok", []string{"R"}, 0},
		{"version", []string{"-version"}, 0},
		{"help", []string{"-h"}, 0},
		{"missing key", nil, 2},
		{"bad depth", []string{"-depth", "0", "R"}, 2},
		{"unknown key", []string{"NOPE"}, 1},
		{"import without file", []string{"import"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runLt(t, repo, tt.args...)
			if res.code != tt.code {
				t.Errorf("exit = %d, want %d\nstderr: %s", res.code, tt.code, res.stderr)
			}
		})
	}
}

// lockedBuffer collects process output read on another goroutine.
type lockedBuffer struct {
	mu sync.Mutex
	sb strings.Builder
}

func (b *lockedBuffer) WriteLine(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sb.WriteString(s)
	b.sb.WriteByte('\n')
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.String()
}

func waitFor(t *testing.T, buf *lockedBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(buf.String(), want) {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q; output so far:\n%s", want, buf.String())
}

func TestWatchReprintsOnChange(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping: interrupt delivery is unix-only")
	}
	repo := newRepo(t, cycle())

	cmd := exec.Command(ltBinaryPath, "-watch", "R")
	cmd.Dir = repo
	cmd.Env = append(os.Environ(), "XDG_CONFIG_HOME="+t.TempDir(), "LT_DATA_DIR=", "LT_FORCE_POLL=1")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = cmd.Process.Kill() })

	var buf lockedBuffer
	done := make(chan struct{})
	go func() {
		defer close(done)
		sc := bufio.NewScanner(stdout)
		for sc.Scan() {
			buf.WriteLine(sc.Text())
		}
	}()

	waitFor(t, &buf, "-- blocks A Summary A [Done]")

	updated := cycle()
	updated[1].Summary = "Renamed issue A"
	testutil.WriteDataFile(t, repo, updated)

	waitFor(t, &buf, "-- blocks A Renamed issue A [Done]")

	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		t.Fatal(err)
	}
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("lt -watch did not exit after SIGINT")
	}
	if err := cmd.Wait(); err != nil {
		t.Errorf("lt -watch exited with %v", err)
	}
}
