package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/linktree/internal/datasource"
	"github.com/vanderheijden86/linktree/pkg/loader"
	"github.com/vanderheijden86/linktree/pkg/web"
)

func parseSub(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return usagef("%v", err)
	}
	return nil
}

// runImport converts a JSONL export into the SQLite snapshot of the data
// directory.
func runImport(args []string, e env) error {
	fs := flag.NewFlagSet("lt import", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	configPath := fs.String("config", "", "Config file")
	dataDir := fs.String("data", "", "Data directory (default ./.linktree)")
	if err := parseSub(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usagef("import expects exactly one JSONL file")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	dir, err := resolveDataDir(*dataDir, cfg)
	if err != nil {
		return err
	}

	issues, err := loader.LoadIssuesFromFile(fs.Arg(0))
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		return fmt.Errorf("no issues in %s", fs.Arg(0))
	}

	path := filepath.Join(dir, datasource.SQLiteFileName)
	if err := datasource.WriteSQLite(path, issues); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Imported %d issues into %s\n", len(issues), path)
	return nil
}

// runServe serves /tree pages until interrupted.
func runServe(args []string, e env) error {
	fs := flag.NewFlagSet("lt serve", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	configPath := fs.String("config", "", "Config file")
	dataDir := fs.String("data", "", "Data directory (default ./.linktree)")
	addr := fs.String("addr", "", "Listen address (default from config, :8080)")
	if err := parseSub(fs, args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	dir, err := resolveDataDir(*dataDir, cfg)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Serve.Addr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := web.NewServer(web.DirSource{Dir: dir}, cfg)
	fmt.Fprintf(e.stdout, "Serving link trees from %s on %s\n", dir, cfg.Serve.Addr)
	fmt.Fprintln(e.stdout, "Press Ctrl+C to stop")
	return srv.ListenAndServe(ctx, cfg.Serve.Addr)
}

// runSources lists the snapshots of the data directory and reports where
// they disagree.
func runSources(args []string, e env) error {
	fs := flag.NewFlagSet("lt sources", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	configPath := fs.String("config", "", "Config file")
	dataDir := fs.String("data", "", "Data directory (default ./.linktree)")
	asJSON := fs.Bool("json", false, "Print the report as JSON")
	if err := parseSub(fs, args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	dir, err := resolveDataDir(*dataDir, cfg)
	if err != nil {
		return err
	}

	sources, err := datasource.DiscoverSources(datasource.DiscoveryOptions{
		DataDir:                dir,
		ValidateAfterDiscovery: true,
		IncludeInvalid:         true,
	})
	if err != nil {
		return err
	}
	report := datasource.GenerateInconsistencyReport(sources, datasource.DefaultDiffOptions())

	if *asJSON {
		enc := json.NewEncoder(e.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	if len(sources) == 0 {
		fmt.Fprintf(e.stdout, "No snapshots in %s\n", dir)
		return nil
	}
	best, _ := datasource.SelectBestSource(sources)
	for _, s := range sources {
		marker := " "
		if s.Valid && s.Path == best.Path {
			marker = "*"
		}
		fmt.Fprintf(e.stdout, "%s %s\n", marker, s)
	}
	for _, d := range report.Diffs {
		fmt.Fprintln(e.stdout)
		fmt.Fprint(e.stdout, d.Summary())
	}
	return nil
}
