package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"
	"github.com/muesli/termenv"

	"github.com/vanderheijden86/linktree/internal/datasource"
	"github.com/vanderheijden86/linktree/pkg/config"
	"github.com/vanderheijden86/linktree/pkg/debug"
	"github.com/vanderheijden86/linktree/pkg/format"
	"github.com/vanderheijden86/linktree/pkg/linktree"
	"github.com/vanderheijden86/linktree/pkg/metrics"
	"github.com/vanderheijden86/linktree/pkg/store"
	"github.com/vanderheijden86/linktree/pkg/ui"
	"github.com/vanderheijden86/linktree/pkg/version"
	"github.com/vanderheijden86/linktree/pkg/watcher"
)

var errHelp = flag.ErrHelp

type treeFlags struct {
	configPath string
	dataDir    string
	depth      int
	links      string
	projects   string
	statuses   string
	pattern    string
	marker     string
	format     string
	color      string
	width      int
	watch      bool
	tui        bool
	copy       bool
	stats      bool
	version    bool
}

func newTreeFlagSet(f *treeFlags, e env) *flag.FlagSet {
	fs := flag.NewFlagSet("lt", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.StringVar(&f.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/linktree/config.yaml)")
	fs.StringVar(&f.dataDir, "data", "", "Data directory holding issues.db or *.jsonl (default ./.linktree)")
	fs.IntVar(&f.depth, "depth", 0, fmt.Sprintf("Maximum depth, 1-%d (root is depth 0)", config.MaxDepthLimit))
	fs.StringVar(&f.links, "links", "", "Comma-separated link types to follow")
	fs.StringVar(&f.projects, "projects", "", "Comma-separated project keys to show")
	fs.StringVar(&f.statuses, "statuses", "", "Comma-separated status names to show")
	fs.StringVar(&f.pattern, "pattern", "", "Line template, e.g. '{{prefix}} {{key}} {{summary}}'")
	fs.StringVar(&f.marker, "marker", "", "Prefix marker repeated depth+1 times")
	fs.StringVar(&f.format, "format", "text", "Output format: text, html, markdown, json, svg")
	fs.StringVar(&f.color, "color", "", "Color output: auto, always, never")
	fs.IntVar(&f.width, "summary-width", -1, "Truncate summaries to this many cells (0 disables)")
	fs.BoolVar(&f.watch, "watch", false, "Re-render when the data directory changes")
	fs.BoolVar(&f.tui, "tui", false, "Show the tree in a scrollable pager")
	fs.BoolVar(&f.copy, "copy", false, "Copy the output to the clipboard")
	fs.BoolVar(&f.stats, "stats", false, "Print timing metrics as JSON to stderr")
	fs.BoolVar(&f.version, "version", false, "Show version")
	fs.Usage = func() {
		fmt.Fprintln(e.stderr, "Usage: lt [options] KEY")
		fmt.Fprintln(e.stderr, "       lt import [-data DIR] FILE.jsonl")
		fmt.Fprintln(e.stderr, "       lt serve [-addr ADDR] [-data DIR]")
		fmt.Fprintln(e.stderr, "       lt sources [-data DIR] [-json]")
		fmt.Fprintln(e.stderr, "\nPrints the link tree of an issue.")
		fs.PrintDefaults()
	}
	return fs
}

// applyFlags overlays explicitly set flags on cfg.
func applyFlags(cfg config.Config, fs *flag.FlagSet, f treeFlags) config.Config {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "depth":
			cfg.Depth = f.depth
		case "links":
			cfg.Filters.Links = splitList(f.links)
		case "projects":
			cfg.Filters.Projects = splitList(f.projects)
		case "statuses":
			cfg.Filters.Statuses = splitList(f.statuses)
		case "pattern":
			cfg.Pattern = unescapePattern(f.pattern)
		case "marker":
			cfg.Marker = f.marker
		case "color":
			cfg.UI.Color = f.color
		case "summary-width":
			cfg.UI.SummaryWidth = f.width
		case "data":
			cfg.DataDir = f.dataDir
		}
	})
	return cfg
}

func splitList(s string) []string {
	return linktree.ParseSet(s).Values()
}

// unescapePattern turns a literal \n into a newline and makes sure every
// record ends a line.
func unescapePattern(p string) string {
	p = strings.ReplaceAll(p, `\n`, "\n")
	if !strings.HasSuffix(p, "\n") {
		p += "\n"
	}
	return p
}

// treeRun holds everything needed to render one tree, repeatedly.
type treeRun struct {
	key     string
	dataDir string
	cfg     config.Config
	kind    format.Kind
	filter  linktree.Filter

	lastStats linktree.Stats
}

// render loads the freshest snapshot and renders the tree. styled enables
// terminal colors; width is used for markdown wrapping.
func (r *treeRun) render(styled bool, width int) (string, error) {
	issues, src, err := datasource.LoadIssuesFromDir(r.dataDir)
	if err != nil {
		return "", fmt.Errorf("loading issues: %w", err)
	}
	debug.Log("lt: loaded %d issues from %s", len(issues), src.Path)

	all := store.New(issues)
	root, err := all.Get(r.key)
	if err != nil {
		return "", err
	}
	window, err := all.Window(r.key, r.cfg.Depth, store.Window{
		StartAt:    r.cfg.Window.StartAt,
		MaxResults: r.cfg.Window.MaxResults,
	})
	if err != nil {
		return "", err
	}
	if cycles := window.Cycles(); len(cycles) > 0 {
		debug.Log("lt: %d link cycles around %s: %v", len(cycles), r.key, cycles)
	}

	opts := format.Options{Marker: r.cfg.Marker, MaxSummaryWidth: r.cfg.UI.SummaryWidth}
	if styled && r.kind == format.KindText {
		opts.Styler = format.ConsoleStyler()
	}
	tmpl := format.New(r.cfg.Pattern, opts)

	res := linktree.Run(root, window, linktree.Options{
		MaxDepth:  r.cfg.Depth,
		Filter:    r.filter,
		Formatter: format.Formatter(r.kind, tmpl),
	})
	r.lastStats = res.Stats

	var buf bytes.Buffer
	if err := format.Write(&buf, r.kind, res, format.Meta{Root: root, MaxDepth: r.cfg.Depth}); err != nil {
		return "", err
	}
	if styled && r.kind == format.KindMarkdown {
		return format.RenderMarkdown(buf.String(), width)
	}
	return buf.String(), nil
}

func runTree(args []string, e env) error {
	var f treeFlags
	fs := newTreeFlagSet(&f, e)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return usagef("%v", err)
	}
	if f.version {
		fmt.Fprintf(e.stdout, "lt %s\n", version.Version)
		return nil
	}

	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return err
	}
	cfg = applyFlags(cfg, fs, f)
	if err := cfg.Validate(); err != nil {
		return err
	}

	kind, err := format.ParseKind(f.format)
	if err != nil {
		return usagef("%v", err)
	}

	key := strings.TrimSpace(fs.Arg(0))
	if fs.NArg() > 1 {
		return usagef("expected one issue key, got %d arguments", fs.NArg())
	}
	if key == "" {
		if !isTerminal(e.stdin) {
			fs.Usage()
			return usagef("missing issue key")
		}
		if key, err = promptKey(); err != nil {
			return err
		}
	}

	dataDir, err := resolveDataDir(f.dataDir, cfg)
	if err != nil {
		return err
	}

	styled := useColor(cfg.UI.Color, e.stdout)
	r := &treeRun{
		key:     key,
		dataDir: dataDir,
		cfg:     cfg,
		kind:    kind,
		filter: linktree.ParseFilter(
			strings.Join(cfg.Filters.Links, ","),
			strings.Join(cfg.Filters.Projects, ","),
			strings.Join(cfg.Filters.Statuses, ","),
		),
	}

	if f.stats {
		defer printStats(e, r)
	}

	switch {
	case f.tui:
		return runPager(r, f.watch)
	case f.watch:
		return watchTree(r, e, styled, f.copy)
	}

	out, err := r.render(styled, terminalWidth(e.stdout))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprint(e.stdout, out); err != nil {
		return err
	}
	if f.copy {
		return copyPlain(r, styled, out)
	}
	return nil
}

// useColor resolves the color mode. "always" forces ANSI output even when
// stdout is not a terminal.
func useColor(mode string, stdout any) bool {
	switch mode {
	case "always":
		lipgloss.SetColorProfile(termenv.ANSI256)
		return true
	case "never":
		return false
	default:
		return isTerminal(stdout)
	}
}

func copyPlain(r *treeRun, styled bool, out string) error {
	if styled {
		plain, err := r.render(false, 0)
		if err != nil {
			return err
		}
		out = plain
	}
	if err := clipboard.WriteAll(out); err != nil {
		return fmt.Errorf("copying to clipboard: %w", err)
	}
	return nil
}

func newDataWatcher(dir string) (*watcher.Watcher, error) {
	w, err := watcher.New(dir, watcher.WithMatch(datasource.IsSnapshotFile))
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		return nil, err
	}
	return w, nil
}

func runPager(r *treeRun, watch bool) error {
	var w *watcher.Watcher
	if watch {
		var err error
		if w, err = newDataWatcher(r.dataDir); err != nil {
			return err
		}
		defer w.Stop()
	}

	title := fmt.Sprintf("lt %s · depth %d", r.key, r.cfg.Depth)
	render := func(width int) (ui.Content, error) {
		view, err := r.render(true, width)
		if err != nil {
			return ui.Content{}, err
		}
		plain, err := r.render(false, width)
		if err != nil {
			return ui.Content{}, err
		}
		return ui.Content{View: view, Plain: plain}, nil
	}
	return ui.Run(ui.NewModel(title, render, w, ui.DefaultTheme(lipgloss.DefaultRenderer())))
}

// watchTree prints the tree, then reprints it after every snapshot change
// until interrupted.
func watchTree(r *treeRun, e env, styled, copyOut bool) error {
	w, err := newDataWatcher(r.dataDir)
	if err != nil {
		return err
	}
	defer w.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		out, err := r.render(styled, terminalWidth(e.stdout))
		if err != nil {
			fmt.Fprintf(e.stderr, "Error: %v\n", err)
		} else {
			if styled {
				fmt.Fprint(e.stdout, "\x1b[H\x1b[2J")
			}
			fmt.Fprint(e.stdout, out)
			if copyOut {
				if err := copyPlain(r, styled, out); err != nil {
					fmt.Fprintf(e.stderr, "Error: %v\n", err)
				}
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-w.Changed():
			debug.Log("lt: snapshot changed, re-rendering %s", r.key)
		}
	}
}

func printStats(e env, r *treeRun) {
	report := struct {
		Traversal linktree.Stats        `json:"traversal"`
		Timings   []metrics.TimingStats `json:"timings"`
	}{
		Traversal: r.lastStats,
		Timings:   metrics.AllTimingStats(),
	}
	enc := json.NewEncoder(e.stderr)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		debug.Log("lt: writing stats: %v", err)
	}
}
