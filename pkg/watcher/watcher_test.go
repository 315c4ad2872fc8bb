package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var callCount atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() {
			callCount.Add(1)
		})
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	if count := callCount.Load(); count != 1 {
		t.Errorf("expected 1 callback invocation, got %d", count)
	}
}

func TestDebouncer_RunsLatestCallback(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var got atomic.Int32
	d.Trigger(func() { got.Store(1) })
	d.Trigger(func() { got.Store(2) })
	time.Sleep(80 * time.Millisecond)

	if v := got.Load(); v != 2 {
		t.Errorf("expected latest callback to run, got %d", v)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var called atomic.Bool
	d.Trigger(func() {
		called.Store(true)
	})
	d.Cancel()

	time.Sleep(100 * time.Millisecond)

	if called.Load() {
		t.Error("callback should not have been invoked after cancel")
	}
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	d := NewDebouncer(0)
	if d.Duration() != DefaultDebounceDuration {
		t.Errorf("expected default duration %v, got %v", DefaultDebounceDuration, d.Duration())
	}
}

func isSnapshot(name string) bool {
	return name == "issues.db" || strings.HasSuffix(name, ".jsonl")
}

func startWatcher(t *testing.T, dir string, opts ...Option) (*Watcher, *atomic.Int32) {
	t.Helper()
	var changes atomic.Int32
	opts = append([]Option{
		WithDebounceDuration(30 * time.Millisecond),
		WithPollInterval(20 * time.Millisecond),
		WithMatch(isSnapshot),
		WithOnChange(func() { changes.Add(1) }),
	}, opts...)

	w, err := New(dir, opts...)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(w.Stop)

	// Let the watcher settle before touching files.
	time.Sleep(50 * time.Millisecond)
	return w, &changes
}

func waitFor(t *testing.T, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestWatcher_DetectsSnapshotChange(t *testing.T) {
	for _, poll := range []bool{false, true} {
		name := "fsnotify"
		if poll {
			name = "polling"
		}
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "issues.jsonl")
			if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
				t.Fatal(err)
			}

			w, changes := startWatcher(t, dir, WithForcePoll(poll))
			if poll && !w.IsPolling() {
				t.Fatal("expected polling mode")
			}

			if err := os.WriteFile(path, []byte("{}\n{}\n"), 0o644); err != nil {
				t.Fatal(err)
			}
			if !waitFor(t, func() bool { return changes.Load() > 0 }) {
				t.Error("expected change to be detected")
			}
		})
	}
}

func TestWatcher_DetectsNewSQLiteSnapshot(t *testing.T) {
	dir := t.TempDir()
	_, changes := startWatcher(t, dir, WithForcePoll(true))

	if err := os.WriteFile(filepath.Join(dir, "issues.db.tmp"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(filepath.Join(dir, "issues.db.tmp"), filepath.Join(dir, "issues.db")); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, func() bool { return changes.Load() > 0 }) {
		t.Error("expected the renamed snapshot to be detected")
	}
}

func TestWatcher_IgnoresUnmatchedFiles(t *testing.T) {
	dir := t.TempDir()
	_, changes := startWatcher(t, dir)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)

	if n := changes.Load(); n != 0 {
		t.Errorf("unmatched file triggered %d changes", n)
	}
}

func TestWatcher_ChangedChannel(t *testing.T) {
	dir := t.TempDir()
	w, _ := startWatcher(t, dir, WithForcePoll(true))

	if err := os.WriteFile(filepath.Join(dir, "export.jsonl"), []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Error("expected a signal on Changed()")
	}
}

func TestWatcher_EnvForcePoll(t *testing.T) {
	t.Setenv(ForcePollEnvVar, "yes")
	w, _ := startWatcher(t, t.TempDir())
	if !w.IsPolling() {
		t.Error("expected polling mode when forced by environment")
	}
}

func TestWatcher_DirRemoved(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "data")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	var gotErr atomic.Value
	startWatcher(t, dir, WithForcePoll(true), WithOnError(func(err error) {
		gotErr.Store(err)
	}))

	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	ok := waitFor(t, func() bool {
		err, _ := gotErr.Load().(error)
		return errors.Is(err, ErrDirRemoved)
	})
	if !ok {
		t.Errorf("expected ErrDirRemoved, got %v", gotErr.Load())
	}
}

func TestWatcher_StartStop(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if w.IsStarted() {
		t.Error("watcher should not be started before Start")
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start = %v, want ErrAlreadyStarted", err)
	}
	w.Stop()
	if w.IsStarted() {
		t.Error("watcher should be stopped")
	}
	w.Stop()
}

func TestWatcher_StartErrors(t *testing.T) {
	missing, err := New(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatal(err)
	}
	if err := missing.Start(); err == nil {
		t.Error("expected error for missing directory")
	}

	file := filepath.Join(t.TempDir(), "issues.jsonl")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	notDir, err := New(file)
	if err != nil {
		t.Fatal(err)
	}
	if err := notDir.Start(); err == nil {
		t.Error("expected error for a file path")
	}
}

func TestWatcher_Dir(t *testing.T) {
	w, err := New(".")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(w.Dir()) {
		t.Errorf("expected absolute dir, got %s", w.Dir())
	}
}

func TestEnvBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{" ON ", true},
		{"y", true},
		{"0", false},
		{"no", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Setenv("LT_TEST_ENVBOOL", tt.value)
		if got := envBool("LT_TEST_ENVBOOL"); got != tt.want {
			t.Errorf("envBool(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
