// Package web serves the single-page diagnostics and REPL UI: a peer list,
// a code submission form and the output of the last run.
package web

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

// Repl is the subset of the node's REPL service the UI needs.
type Repl interface {
	Run(ctx context.Context, line string) (string, error)
}

// Diagnostics is the subset of the node's Diagnostics service the UI needs.
type Diagnostics interface {
	ListPeers(ctx context.Context) ([]string, error)
}

// Server renders the diagnostics page and forwards submitted code to the
// node. The last submitted code and the last store contents live for the
// duration of the process; every successful POST overwrites them.
type Server struct {
	diag Diagnostics
	repl Repl
	log  *slog.Logger

	mu        sync.Mutex
	lastCode  string
	lastStore string
}

// New builds a UI server around the given node clients.
func New(diag Diagnostics, repl Repl, log *slog.Logger) *Server {
	return &Server{diag: diag, repl: repl, log: log}
}

// pageData is what the page template is rendered from.
type pageData struct {
	Peers []string
	Code  string
	Store string
}

// page mirrors the layout of the original diagnostics page. Unlike the
// original, the code and store contents are HTML-escaped on insertion.
var page = template.Must(template.New("diagnostics").Parse(`<!doctype html>
<html>
<head><title>rnode diagnostics</title></head>
<body>
<h1>rnode</h1>
<address>
<b>pre-release</b> for the
<a href="https://developer.rchain.coop/">RChain Developer</a>
community
</address>

<h2>Peers</h2>
<ul>
{{range .Peers}}<li>{{.}}</li>
{{end}}</ul>

<h2>Rholang and RSpace</h2>
<form action="" method="post">
<textarea name="rho1" cols="40" rows="10">{{.Code}}</textarea>
<br />
<input type="submit" value="Run" />
</form>

<pre id="store">{{.Store}}</pre>
</body>
</html>
`))

// Handler returns the router for the UI: GET and POST on "/" and nothing
// else.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.handleGet)
	r.Post("/", s.handlePost)
	return r
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.render(w, r)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return
	}
	code, ok := formField(r, "rho1")
	if !ok {
		http.Error(w, "missing form field rho1", http.StatusBadRequest)
		return
	}

	// The submitted code is remembered before the call is attempted, so a
	// failed run still shows what was submitted while the store contents
	// keep their previous value.
	s.mu.Lock()
	s.lastCode = code
	s.mu.Unlock()

	output, err := s.repl.Run(r.Context(), code)
	if err != nil {
		s.log.Error("repl run failed", "error", err)
		http.Error(w, "repl run failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	s.mu.Lock()
	s.lastStore = breakProcessLines(output)
	s.mu.Unlock()

	// Same response body as a GET, in this response (no redirect).
	s.render(w, r)
}

// render fetches the current peer list and writes the full page. A peer
// list failure aborts the response; there is no cached fallback.
func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	peers, err := s.diag.ListPeers(r.Context())
	if err != nil {
		s.log.Error("list peers failed", "error", err)
		http.Error(w, "list peers failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	s.mu.Lock()
	data := pageData{Peers: peers, Code: s.lastCode, Store: s.lastStore}
	s.mu.Unlock()

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		s.log.Error("render failed", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// breakProcessLines inserts a line break after each top-level parallel
// composition so long store dumps read one process per line.
func breakProcessLines(output string) string {
	return strings.ReplaceAll(output, " | ", " |\n")
}

// formField reports a form value and whether the field was present at all.
// An empty submitted value is present; an absent field is not.
func formField(r *http.Request, name string) (string, bool) {
	values, ok := r.PostForm[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Serve runs the UI on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return srv.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
