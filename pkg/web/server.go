// Package web serves link trees as HTML pages.
//
// Every request builds its own traversal; the issue snapshot is shared
// read-only and reloaded only when the source reports a new version.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vanderheijden86/linktree/pkg/config"
	"github.com/vanderheijden86/linktree/pkg/debug"
	"github.com/vanderheijden86/linktree/pkg/format"
	"github.com/vanderheijden86/linktree/pkg/linktree"
	"github.com/vanderheijden86/linktree/pkg/metrics"
	"github.com/vanderheijden86/linktree/pkg/store"
)

const shutdownTimeout = 5 * time.Second

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Links of {{.Key}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
dl.facets dt { font-weight: bold; }
dl.facets span { border-bottom: 1px dotted #888; }
ul { list-style: square; }
</style>
</head>
<body>
<h1>Links of {{.Key}}</h1>
<p>Depth {{.Depth}}, {{.Records}} records.</p>
{{.Facets}}
{{if .Tree}}{{.Tree}}{{else}}<p>No visible issues.</p>{{end}}
</body>
</html>
`))

type page struct {
	Key     string
	Depth   int
	Records int
	Facets  template.HTML
	Tree    template.HTML
}

type snapshot struct {
	version string
	store   *store.Store
}

// Server renders /tree pages from a Source.
type Server struct {
	source Source
	cfg    config.Config

	group   singleflight.Group
	mu      sync.RWMutex
	current *snapshot

	server *http.Server
}

// NewServer creates a server. cfg supplies the default depth, filters,
// prefetch window and listen address.
func NewServer(source Source, cfg config.Config) *Server {
	return &Server{source: source, cfg: cfg}
}

// Handler returns the request multiplexer.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tree", s.handleTree)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, "ok")
	})
	return noCacheMiddleware(mux)
}

// Snapshot returns the current issue store, loading it when the source
// version changed. Concurrent callers share one load.
func (s *Server) Snapshot() (*store.Store, error) {
	version, err := s.source.Version()
	if err != nil {
		return nil, fmt.Errorf("checking source: %w", err)
	}

	s.mu.RLock()
	cur := s.current
	s.mu.RUnlock()
	if cur != nil && cur.version == version {
		return cur.store, nil
	}

	v, err, shared := s.group.Do(version, func() (any, error) {
		s.mu.RLock()
		cur := s.current
		s.mu.RUnlock()
		if cur != nil && cur.version == version {
			return cur, nil
		}

		stop := metrics.Timer(metrics.IssueLoad)
		issues, err := s.source.Load()
		stop()
		if err != nil {
			return nil, err
		}
		snap := &snapshot{version: version, store: store.New(issues)}

		s.mu.Lock()
		s.current = snap
		s.mu.Unlock()
		debug.Log("web: loaded snapshot with %d issues", snap.store.Len())
		return snap, nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading issues: %w", err)
	}
	debug.LogIf(shared, "web: shared snapshot load for version %s", version)
	return v.(*snapshot).store, nil
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer metrics.Timer(metrics.PageRender)()

	q := r.URL.Query()
	key := strings.TrimSpace(q.Get("key"))
	if key == "" {
		http.Error(w, "missing key", http.StatusBadRequest)
		return
	}

	depth := s.cfg.Depth
	if raw := q.Get("depth"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > config.MaxDepthLimit {
			http.Error(w, fmt.Sprintf("depth must be between 1 and %d", config.MaxDepthLimit), http.StatusBadRequest)
			return
		}
		depth = n
	}

	filter := linktree.ParseFilter(
		queryOr(q.Get, "links", s.cfg.Filters.Links),
		queryOr(q.Get, "projects", s.cfg.Filters.Projects),
		queryOr(q.Get, "statuses", s.cfg.Filters.Statuses),
	)

	snap, err := s.Snapshot()
	if err != nil {
		debug.Log("web: %v", err)
		http.Error(w, "failed to load issues", http.StatusInternalServerError)
		return
	}
	root, ok := snap.Resolve(key)
	if !ok {
		http.Error(w, "unknown issue "+key, http.StatusNotFound)
		return
	}
	window, err := snap.Window(key, depth, store.Window{
		StartAt:    s.cfg.Window.StartAt,
		MaxResults: s.cfg.Window.MaxResults,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "unknown issue "+key, http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	res := linktree.Run(root, window, linktree.Options{
		MaxDepth:  depth,
		Filter:    filter,
		Formatter: format.HTMLFormatter{},
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = pageTemplate.Execute(w, page{
		Key:     root.Key,
		Depth:   depth,
		Records: res.Stats.Records,
		Facets:  template.HTML(format.HTMLFacets(res.Facets)),
		Tree:    template.HTML(format.HTMLTree(res)),
	})
	debug.LogIf(err != nil, "web: writing page for %s: %v", key, err)
}

// queryOr returns the query value, or the configured list when the parameter
// is absent.
func queryOr(get func(string) string, name string, fallback []string) string {
	if v := get(name); v != "" {
		return v
	}
	return strings.Join(fallback, ",")
}

func noCacheMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		debug.Log("web: %s %s", r.Method, r.URL.RequestURI())
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}
