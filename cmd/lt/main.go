// Command lt prints the link tree of an issue.
//
//	lt [flags] KEY          render the tree rooted at KEY
//	lt import FILE.jsonl    write a SQLite snapshot into the data directory
//	lt serve [-addr ADDR]   serve /tree pages over HTTP
//	lt sources              list snapshots and report inconsistencies
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/vanderheijden86/linktree/pkg/config"
	"github.com/vanderheijden86/linktree/pkg/loader"
)

// errUsage marks errors that exit with status 2.
var errUsage = errors.New("usage")

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }
func (e usageError) Unwrap() error { return errUsage }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// env is the process environment a command runs against.
type env struct {
	stdin  *os.File
	stdout io.Writer
	stderr io.Writer
}

func main() {
	e := env{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(run(os.Args[1:], e))
}

func run(args []string, e env) int {
	var err error
	if len(args) > 0 {
		switch args[0] {
		case "import":
			err = runImport(args[1:], e)
		case "serve":
			err = runServe(args[1:], e)
		case "sources":
			err = runSources(args[1:], e)
		default:
			err = runTree(args, e)
		}
	} else {
		err = runTree(args, e)
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errHelp):
		return 0
	case errors.Is(err, errUsage), errors.Is(err, config.ErrInvalid):
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return 2
	default:
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return 1
	}
}

// loadConfig reads path, or the XDG config file when path is empty.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// resolveDataDir applies -data > LT_DATA_DIR/config file > ./.linktree.
func resolveDataDir(flagDir string, cfg config.Config) (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}
	if cfg.DataDir != "" {
		return cfg.DataDir, nil
	}
	return loader.GetDataDir("")
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth(w any) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return 80
}
