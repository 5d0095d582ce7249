// Package server exposes registered blocks over HTTP so templates can be
// previewed without a host application.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/goliatone/go-blockgen/pkg/block"
	"github.com/goliatone/go-blockgen/pkg/registry"
)

// Catalog lists and resolves registered blocks.
type Catalog interface {
	Get(name string) (block.Config, error)
	Configs() []block.Config
}

// Renderer renders a block instance.
type Renderer interface {
	Render(ctx context.Context, req block.RenderRequest, out ...io.Writer) (string, error)
}

// Option configures a Server.
type Option func(*Server)

// WithNamespace sets the namespace prefixed to slugs when building host block
// names. Defaults to block.DefaultNamespace.
func WithNamespace(ns string) Option {
	return func(s *Server) {
		s.namespace = strings.TrimSpace(ns)
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithShutdownTimeout bounds graceful shutdown in ListenAndServe.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// Server serves block configs and rendered markup.
type Server struct {
	catalog         Catalog
	renderer        Renderer
	namespace       string
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// New constructs a Server.
func New(catalog Catalog, renderer Renderer, options ...Option) *Server {
	s := &Server{
		catalog:         catalog,
		renderer:        renderer,
		namespace:       block.DefaultNamespace,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		shutdownTimeout: 5 * time.Second,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// RenderBody is the JSON payload accepted by the render endpoint.
type RenderBody struct {
	Content   string         `json:"content"`
	IsPreview bool           `json:"is_preview"`
	PostID    int64          `json:"post_id"`
	ClassName string         `json:"className"`
	Anchor    string         `json:"anchor"`
	Align     string         `json:"align"`
	Mode      string         `json:"mode"`
	Data      map[string]any `json:"data"`
}

// RegisterRoutes registers the block routes on router.
func (s *Server) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/blocks", s.handleList).Methods(http.MethodGet)
	router.HandleFunc("/blocks/{slug}", s.handleGet).Methods(http.MethodGet)
	router.HandleFunc("/blocks/{slug}/render", s.handleRender).Methods(http.MethodPost)
	router.HandleFunc("/blocks/{slug}/preview", s.handlePreview).Methods(http.MethodGet)
}

// Handler returns a router with every block route registered.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	s.RegisterRoutes(router)
	return router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	configs := s.catalog.Configs()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"blocks": configs,
		"count":  len(configs),
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var body RenderBody
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			s.writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	req := block.RenderRequest{
		Block: block.Instance{
			Name:      s.hostName(cfg.Name),
			ClassName: body.ClassName,
			Anchor:    body.Anchor,
			Align:     body.Align,
			Mode:      body.Mode,
			Data:      body.Data,
		},
		Content:   body.Content,
		IsPreview: body.IsPreview,
		PostID:    body.PostID,
	}
	s.render(w, r, req)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.lookup(w, r)
	if !ok {
		return
	}

	instance := block.Instance{Name: s.hostName(cfg.Name)}
	if mode, ok := cfg.Example.Attributes["mode"].(string); ok {
		instance.Mode = mode
	}
	if data, ok := cfg.Example.Attributes["data"].(map[string]any); ok {
		instance.Data = data
	}
	s.render(w, r, block.RenderRequest{Block: instance, IsPreview: true})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, req block.RenderRequest) {
	html, err := s.renderer.Render(r.Context(), req)
	if err != nil {
		s.logger.Error("block render failed", "block", req.Block.Name, "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to render block", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, html)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (block.Config, bool) {
	slug := mux.Vars(r)["slug"]
	cfg, err := s.catalog.Get(slug)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, registry.ErrNotFound) {
			status = http.StatusNotFound
		}
		s.writeError(w, status, "Block not found", err)
		return block.Config{}, false
	}
	return cfg, true
}

func (s *Server) hostName(slug string) string {
	if s.namespace == "" {
		return slug
	}
	return s.namespace + "/" + slug
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]any{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	s.writeJSON(w, status, response)
}
