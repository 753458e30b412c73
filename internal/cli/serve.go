package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/isaflow/isaflow/pkg/cache"
	"github.com/isaflow/isaflow/pkg/config"
	"github.com/isaflow/isaflow/pkg/errors"
	"github.com/isaflow/isaflow/pkg/observability"
	"github.com/isaflow/isaflow/pkg/script"
	"github.com/isaflow/isaflow/pkg/store"
)

const (
	// maxScriptBytes bounds the accepted request body size.
	maxScriptBytes = 1 << 20

	defaultListTimelines = 20
	shutdownTimeout      = 5 * time.Second
)

// newServeCmd creates the serve command, exposing script rendering and the
// timeline archive over HTTP.
func newServeCmd() *cobra.Command {
	var (
		addr      string
		noCache   bool
		redisAddr string
		mongoURI  string
		mongoDB   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve script rendering over HTTP",
		Long: `Serve starts an HTTP server that renders animation scripts on demand.

Endpoints:
  POST /render?format=json|svg|dot   render the TOML script in the body
  GET  /healthz                      liveness probe
  GET  /timelines                    list archived timelines (requires MongoDB)
  GET  /timelines/{id}               fetch one archived timeline`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), addr, noCache, redisAddr, mongoURI, mongoDB)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the artifact cache")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", envOr("ISAFLOW_REDIS_ADDR", ""), "Redis address for a shared artifact cache")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", envOr("ISAFLOW_MONGO_URI", ""), "MongoDB connection string (enables timeline endpoints)")
	cmd.Flags().StringVar(&mongoDB, "mongo-db", envOr("ISAFLOW_MONGO_DB", defaultMongoDB), "MongoDB database name")

	return cmd
}

// server holds the HTTP handler dependencies.
type server struct {
	logger *log.Logger
	cache  cache.Cache
	keyer  cache.Keyer
	store  *store.TimelineStore
}

func runServe(ctx context.Context, addr string, noCache bool, redisAddr, mongoURI, mongoDB string) error {
	logger := loggerFromContext(ctx)

	c, err := serveCache(ctx, noCache, redisAddr)
	if err != nil {
		return err
	}
	s := &server{
		logger: logger,
		cache:  c,
		keyer:  cache.NewDefaultKeyer(),
	}
	defer s.cache.Close()
	if _, ok := c.(*cache.RedisCache); ok {
		logger.Info("redis cache connected", "addr", redisAddr)
	}

	if mongoURI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		ts, err := store.Connect(connectCtx, mongoURI, mongoDB)
		cancel()
		if err != nil {
			return err
		}
		s.store = ts
		defer ts.Close(ctx)
		logger.Info("timeline archive connected", "db", mongoDB)
	}

	srv := &http.Server{Addr: addr, Handler: s.routes()}
	logger.Info("listening", "addr", addr)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// serveCache selects the artifact cache backend. --no-cache always wins;
// a Redis address selects the shared server-side cache, anything else falls
// back to the local file cache.
func serveCache(ctx context.Context, noCache bool, redisAddr string) (cache.Cache, error) {
	if noCache || redisAddr == "" {
		return newCache(noCache), nil
	}
	return cache.NewRedisCache(ctx, redisAddr)
}

// routes assembles the chi router.
func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Post("/render", s.handleRender)
	r.Get("/timelines", s.handleListTimelines)
	r.Get("/timelines/{id}", s.handleGetTimeline)

	return r
}

// logRequests logs one line per request with status and duration.
func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Microsecond),
		)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintln(w, `{"status":"ok"}`)
}

// handleRender builds the TOML script in the request body and responds with
// the requested artifact format.
func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = FormatJSON
	}
	if !validFormats[format] {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid format: %s", format))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxScriptBytes))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "read request body")
		return
	}

	ctx := r.Context()
	key := s.keyer.ArtifactKey(body, nil, format)
	if data, hit, _ := s.cache.Get(ctx, key); hit {
		observability.Cache().OnCacheHit(ctx, "artifact")
		s.respondArtifact(w, format, data)
		return
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	scr, err := script.Parse(body)
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	flow, err := scr.Build(config.Default(), s.logger)
	if err == nil {
		_, err = flow.Timeline()
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, errors.ErrCodeInvalidScript) || errors.Is(err, errors.ErrCodeInvalidInput) {
			status = http.StatusUnprocessableEntity
		}
		s.respondError(w, status, err.Error())
		return
	}

	data, err := renderArtifact(flow, format)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.cache.Set(ctx, key, data, cache.DefaultTTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	s.respondArtifact(w, format, data)
}

func (s *server) handleListTimelines(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, http.StatusNotImplemented, "timeline archive not configured")
		return
	}

	limit := int64(defaultListTimelines)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	docs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, docs)
}

func (s *server) handleGetTimeline(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, http.StatusNotImplemented, "timeline archive not configured")
		return
	}

	doc, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, errors.ErrCodeTimelineNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errors.ErrCodeInvalidInput):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.respondError(w, http.StatusInternalServerError, err.Error())
	default:
		s.respondJSON(w, http.StatusOK, doc)
	}
}

func (s *server) respondArtifact(w http.ResponseWriter, format string, data []byte) {
	switch format {
	case FormatSVG:
		w.Header().Set("Content-Type", "image/svg+xml")
	case FormatDOT:
		w.Header().Set("Content-Type", "text/vnd.graphviz")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *server) respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
