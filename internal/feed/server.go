package feed

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/vango-dev/observable/internal/errors"
	"github.com/vango-dev/observable/pkg/entry"
	"github.com/vango-dev/observable/pkg/observable"
)

// ServerConfig configures the HTTP front of a hub.
type ServerConfig struct {
	// Address is the TCP listen address.
	Address string

	// ShutdownTimeout bounds graceful shutdown after the run context ends.
	ShutdownTimeout time.Duration

	// WriteTimeout bounds each WebSocket write.
	WriteTimeout time.Duration

	// PingInterval is the WebSocket heartbeat period. A client that does
	// not answer within two intervals is disconnected.
	PingInterval time.Duration

	// MaxClients caps concurrent event stream clients. Zero means no cap.
	MaxClients int

	// MutationRate limits mutating requests per second across all callers,
	// allowing bursts of MutationBurst (at least 1). Zero means no limit.
	MutationRate  float64
	MutationBurst int

	// Gatherer backs GET /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer

	// CheckOrigin validates WebSocket origins. Nil accepts any origin.
	CheckOrigin func(r *http.Request) bool

	Logger *slog.Logger
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Address:         "localhost:8080",
		ShutdownTimeout: 10 * time.Second,
		WriteTimeout:    5 * time.Second,
		PingInterval:    30 * time.Second,
	}
}

// Server exposes a hub over HTTP and a WebSocket event stream.
type Server struct {
	hub      *Hub
	config   ServerConfig
	router   chi.Router
	upgrader websocket.Upgrader
	logger   *slog.Logger

	// streams bounds concurrent /events clients; nil when unbounded.
	streams *semaphore.Weighted

	// mutations throttles mutating requests; nil when unlimited.
	mutations *rate.Limiter
}

// NewServer builds the router for hub.
func NewServer(hub *Hub, config ServerConfig) *Server {
	defaults := DefaultServerConfig()
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	if config.PingInterval <= 0 {
		config.PingInterval = defaults.PingInterval
	}
	if config.CheckOrigin == nil {
		config.CheckOrigin = func(*http.Request) bool { return true }
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	s := &Server{
		hub:    hub,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: config.Logger.With("component", "http"),
	}
	if config.MaxClients > 0 {
		s.streams = semaphore.NewWeighted(int64(config.MaxClients))
	}
	if config.MutationRate > 0 {
		s.mutations = rate.NewLimiter(rate.Limit(config.MutationRate), max(config.MutationBurst, 1))
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	if s.config.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/events", s.handleEvents)

	r.Route("/entries", func(r chi.Router) {
		r.Get("/", s.handleList)

		r.Group(func(r chi.Router) {
			r.Use(s.limitMutations)
			r.Post("/", s.handleAppend)
			r.Delete("/", s.handleClear)
			r.Post("/move", s.handleMove)
			r.Put("/{index}", s.handleReplace)
			r.Patch("/{index}", s.handleUpdate)
			r.Delete("/{index}", s.handleRemove)
		})
	})

	return r
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully within ShutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
		s.logger.Info("server shutdown complete")
		return nil
	}
}

// logRequests logs one line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// limitMutations rejects requests beyond the configured mutation rate.
func (s *Server) limitMutations(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.mutations != nil && !s.mutations.Allow() {
			s.writeError(w, errors.New("E206"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// entryRequest is the body of POST, PUT and PATCH on /entries.
type entryRequest struct {
	ID   *int    `json:"id"`
	Name *string `json:"name"`
	Done *bool   `json:"done"`
}

type moveRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

// entryResponse describes the entry affected by a mutation.
type entryResponse struct {
	Index int          `json:"index"`
	Entry entry.Record `json:"entry"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()

	n, err := s.hub.Clients(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "clients": n})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var records []entry.Record
	err := s.hub.Do(r.Context(), func(entries *Entries) error {
		records = entry.Records(entries.Slice())
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Name == nil {
		s.writeError(w, errors.New("E202").WithDetail("name is required"))
		return
	}

	var resp entryResponse
	err := s.hub.Do(r.Context(), func(entries *Entries) error {
		rec := entry.Record{ID: nextID(entries), Name: *req.Name}
		if req.ID != nil {
			rec.ID = *req.ID
		}
		if req.Done != nil {
			rec.Done = *req.Done
		}
		entries.Append(entry.FromRecord(rec))
		resp = entryResponse{Index: entries.Len() - 1, Entry: rec}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req entryRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Name == nil {
		s.writeError(w, errors.New("E202").WithDetail("name is required"))
		return
	}

	var resp entryResponse
	err = s.hub.Do(r.Context(), func(entries *Entries) error {
		old, err := entries.At(index)
		if err != nil {
			return err
		}
		rec := entry.Record{ID: old.ID(), Name: *req.Name}
		if req.ID != nil {
			rec.ID = *req.ID
		}
		if req.Done != nil {
			rec.Done = *req.Done
		}
		e := entry.FromRecord(rec)
		if err := entries.Set(index, e); err != nil {
			return err
		}
		resp = entryResponse{Index: index, Entry: rec}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req entryRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.ID == nil && req.Name == nil && req.Done == nil {
		s.writeError(w, errors.New("E202").WithDetail("at least one of id, name, done is required"))
		return
	}

	var resp entryResponse
	err = s.hub.Do(r.Context(), func(entries *Entries) error {
		e, err := entries.At(index)
		if err != nil {
			return err
		}
		if req.ID != nil {
			e.SetID(*req.ID)
		}
		if req.Name != nil {
			e.SetName(*req.Name)
		}
		if req.Done != nil {
			e.SetDone(*req.Done)
		}
		resp = entryResponse{Index: index, Entry: e.Record()}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var resp entryResponse
	err = s.hub.Do(r.Context(), func(entries *Entries) error {
		e, err := entries.RemoveAt(index)
		if err != nil {
			return err
		}
		resp = entryResponse{Index: index, Entry: e.Record()}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.From == nil || req.To == nil {
		s.writeError(w, errors.New("E202").WithDetail("from and to are required"))
		return
	}

	var resp entryResponse
	err := s.hub.Do(r.Context(), func(entries *Entries) error {
		if err := entries.Move(*req.From, *req.To); err != nil {
			return err
		}
		e, err := entries.At(*req.To)
		if err != nil {
			return err
		}
		resp = entryResponse{Index: *req.To, Entry: e.Record()}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	err := s.hub.Do(r.Context(), func(entries *Entries) error {
		entries.Clear()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.streams != nil {
		if !s.streams.TryAcquire(1) {
			s.writeError(w, errors.New("E205"))
			return
		}
		defer s.streams.Release(1)
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied.
		s.logger.Warn("websocket upgrade failed", "error", errors.New("E204").Wrap(err).FormatCompact())
		return
	}

	c := newClient(conn, s.hub.sendBuffer)
	if err := s.hub.attach(r.Context(), c); err != nil {
		s.logger.Warn("attach failed", "client", c.id, "error", err)
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "feed unavailable"))
		conn.Close()
		return
	}

	go c.writePump(s.config.WriteTimeout, s.config.PingInterval)

	err = c.readPump(s.config.PingInterval)
	if websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseNormalClosure) {
		s.logger.Debug("read error", "client", c.id, "error", err)
	}
	s.hub.detach(c)
}

// writeError maps err to a coded JSON error body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var coded *errors.Error
	switch {
	case stderrors.As(err, &coded):
	case stderrors.Is(err, observable.ErrIndexOutOfRange):
		coded = errors.New("E201").WithDetail(err.Error())
	case stderrors.Is(err, ErrStopped):
		coded = errors.New("E203")
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		coded = errors.New("E203").Wrap(err)
	default:
		coded = errors.FromError(err, "E203")
		s.logger.Error("request failed", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(coded.Status)
	io.WriteString(w, coded.FormatJSON())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func decodeBody(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return errors.New("E202").Wrap(err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.New("E202").WithDetail(err.Error())
	}
	return nil
}

func indexParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("E202").WithDetail("index " + strconv.Quote(raw) + " is not an integer")
	}
	return i, nil
}

// nextID returns one more than the largest ID held.
func nextID(entries *Entries) int {
	ids := make([]int, 0, entries.Len())
	for e := range entries.Values() {
		ids = append(ids, e.ID())
	}
	if len(ids) == 0 {
		return 1
	}
	return slices.Max(ids) + 1
}
