// Package format turns traversal results into console lines, HTML, Markdown,
// JSON and SVG.
package format

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/linktree/pkg/config"
	"github.com/vanderheijden86/linktree/pkg/model"
)

// DefaultPattern is the console line template.
const DefaultPattern = config.DefaultPattern

// DefaultMarker is repeated depth+1 times for {{prefix}}.
const DefaultMarker = "-"

var (
	placeholderRE = regexp.MustCompile(`\{\{(\S+?)\}\}`)
	whitespaceRE  = regexp.MustCompile(`\s{2,}`)
)

// Styler decorates the value of a placeholder before substitution.
type Styler func(variable, value string) string

// Options tune a Template.
type Options struct {
	Marker          string
	MaxSummaryWidth int // 0 disables truncation
	Styler          Styler
}

// Template renders one issue per line from a {{name}} pattern. Known names:
// prefix, link_name, key, summary, status_name, status_description,
// project_key, project_name, depth. Unknown names render empty.
type Template struct {
	pattern string
	opts    Options

	once      sync.Once
	variables []string
}

// New returns a Template for pattern; an empty pattern means DefaultPattern.
func New(pattern string, opts Options) *Template {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if opts.Marker == "" {
		opts.Marker = DefaultMarker
	}
	return &Template{pattern: pattern, opts: opts}
}

// Pattern returns the template text.
func (t *Template) Pattern() string {
	return t.pattern
}

// Variables returns the placeholder names used by the pattern, extracted on
// first use.
func (t *Template) Variables() []string {
	t.once.Do(func() {
		for _, m := range placeholderRE.FindAllStringSubmatch(t.pattern, -1) {
			t.variables = append(t.variables, m[1])
		}
	})
	return t.variables
}

// Format implements linktree.Formatter.
func (t *Template) Format(issue *model.Issue, linkName string, depth int) string {
	values := make(map[string]string, len(t.Variables()))
	for _, name := range t.Variables() {
		v := t.value(name, issue, linkName, depth)
		if t.opts.Styler != nil && v != "" {
			v = t.opts.Styler(name, v)
		}
		values[name] = v
	}

	line := placeholderRE.ReplaceAllStringFunc(t.pattern, func(token string) string {
		return values[token[2:len(token)-2]]
	})
	return collapse(line)
}

// collapse squeezes whitespace runs in a record to one space. The trailing
// line break is kept as is so records never merge.
func collapse(line string) string {
	body := strings.TrimRight(line, "\r\n")
	eol := line[len(body):]
	body = whitespaceRE.ReplaceAllString(body, " ")
	if eol != "" {
		body = strings.TrimRight(body, " \t")
	}
	return body + eol
}

func (t *Template) value(name string, issue *model.Issue, linkName string, depth int) string {
	switch name {
	case "prefix":
		return strings.Repeat(t.opts.Marker, depth+1)
	case "link_name":
		return linkName
	case "key":
		return issue.Key
	case "summary":
		return Truncate(issue.Summary, t.opts.MaxSummaryWidth)
	case "status_name":
		return issue.StatusName()
	case "status_description":
		if issue.Status != nil {
			return issue.Status.Description
		}
	case "project_key":
		return issue.ProjectKey()
	case "project_name":
		if issue.Project != nil {
			return issue.Project.Name
		}
	case "depth":
		return strconv.Itoa(depth)
	}
	return ""
}

// Truncate shortens s to maxWidth display cells with an ellipsis. A
// non-positive maxWidth leaves s unchanged.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 || runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	const suffix = "…"
	if maxWidth <= runewidth.StringWidth(suffix) {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, suffix)
}
