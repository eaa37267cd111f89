// Package devserver serves the build output. Paths that match no file fall
// back to index.html so client-side history routing works. With a reload
// hub attached, HTML responses carry the live-reload client.
package devserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/specialistvlad/f2eflow/internal/ctxlog"
	"github.com/specialistvlad/f2eflow/internal/reload"
)

// reloadSnippet is injected before </body> of HTML responses.
const reloadSnippet = `<script src="/socket.io/socket.io.js"></script>
<script>io().on("reload",function(){location.reload()});</script>
`

// Options configures a Server.
type Options struct {
	// Dir is the directory served.
	Dir  string
	Port int
	// Hub enables live reload when set.
	Hub *reload.Hub
}

// Server is the dev/static HTTP server.
type Server struct {
	opts       Options
	httpServer *http.Server
	addr       string
}

// New creates a server. Nothing listens until Start.
func New(opts Options) *Server {
	return &Server{opts: opts}
}

// Handler returns the server's request handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.opts.Hub != nil {
		mux.Handle(reload.Path, s.opts.Hub.Handler())
	}
	mux.HandleFunc("/", s.serveFile)
	return mux
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + r.URL.Path)
	file := filepath.Join(s.opts.Dir, filepath.FromSlash(name))

	info, err := os.Stat(file)
	if err == nil && info.IsDir() {
		file = filepath.Join(file, "index.html")
		info, err = os.Stat(file)
	}
	if err != nil || info.IsDir() {
		file = filepath.Join(s.opts.Dir, "index.html")
		if _, err := os.Stat(file); err != nil {
			http.NotFound(w, r)
			return
		}
	}

	if s.opts.Hub != nil && strings.EqualFold(filepath.Ext(file), ".html") {
		s.serveHTML(w, r, file)
		return
	}
	http.ServeFile(w, r, file)
}

func (s *Server) serveHTML(w http.ResponseWriter, r *http.Request, file string) {
	content, err := os.ReadFile(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	w.Write(Inject(content))
}

// Inject inserts the live-reload client before the last </body>, or appends
// it when the document has none.
func Inject(html []byte) []byte {
	idx := bytes.LastIndex(bytes.ToLower(html), []byte("</body>"))
	if idx < 0 {
		return append(append([]byte{}, html...), reloadSnippet...)
	}
	out := make([]byte, 0, len(html)+len(reloadSnippet))
	out = append(out, html[:idx]...)
	out = append(out, reloadSnippet...)
	return append(out, html[idx:]...)
}

// Start binds the port and serves in the background. A bind failure is
// returned immediately.
func (s *Server) Start(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.opts.Port))
	if err != nil {
		return fmt.Errorf("failed to bind port %d: %w", s.opts.Port, err)
	}
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("🌐 Server starting", "address", fmt.Sprintf("http://localhost:%d/", ln.Addr().(*net.TCPAddr).Port),
			"dir", s.opts.Dir, "reload", s.opts.Hub != nil)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed unexpectedly", "error", err)
		}
	}()
	return nil
}

// Addr is the bound address once started.
func (s *Server) Addr() string {
	return s.addr
}

// Shutdown stops the server gracefully, waiting at most five seconds.
func (s *Server) Shutdown(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	if s.httpServer == nil {
		logger.Debug("Server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	logger.Info("🌐 Shutting down server...")
	if s.opts.Hub != nil {
		s.opts.Hub.Close()
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
		return err
	}
	logger.Debug("Server shut down gracefully.")
	return nil
}
