package ui

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/olusolaa/sailbuddy/sailbuddy/agent"
)

const (
	pageTemplate    = "page.html"
	unavailableText = "SailBuddy could not reach its assistant. Please try again."
	shutdownTimeout = 5 * time.Second
)

//go:embed page.html
var pageFS embed.FS

// Runner answers one query. *agent.Agent is the production implementation.
type Runner interface {
	Invoke(ctx context.Context, query string) (map[string]any, error)
}

type pageData struct {
	Query string
	Error string
	View  *View
}

// Server is the one-page web front end. Queries are answered one at a time.
type Server struct {
	h      *server.Hertz
	runner Runner
	logger *zap.Logger
	mu     sync.Mutex
}

// NewServer registers the page on a hertz server bound to addr.
func NewServer(addr string, runner Runner, logger *zap.Logger) (*Server, error) {
	if runner == nil {
		return nil, errors.New("runner is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	tmpl, err := template.ParseFS(pageFS, pageTemplate)
	if err != nil {
		return nil, err
	}

	s := &Server{
		h:      server.Default(server.WithHostPorts(addr), server.WithExitWaitTime(shutdownTimeout)),
		runner: runner,
		logger: logger,
	}
	s.h.SetHTMLTemplate(tmpl)
	s.h.Use(s.requestLogger())
	s.h.GET("/", s.handlePage)
	s.h.POST("/", s.handleQuery)
	return s, nil
}

// Serve runs the server until ctx is cancelled, then shuts it down.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.h.Run() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	return s.h.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		id := uuid.NewString()
		log := s.logger.With(zap.String("request_id", id))
		c.Header("X-Request-ID", id)

		start := time.Now()
		c.Next(agent.ContextWithLogger(ctx, log))

		log.Info("request served",
			zap.String("method", string(c.Method())),
			zap.String("path", string(c.Path())),
			zap.Int("status", c.Response.StatusCode()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) handlePage(_ context.Context, c *app.RequestContext) {
	c.HTML(http.StatusOK, pageTemplate, pageData{})
}

func (s *Server) handleQuery(ctx context.Context, c *app.RequestContext) {
	query := strings.TrimSpace(c.PostForm("query"))
	data := pageData{Query: query}
	if query == "" {
		c.HTML(http.StatusOK, pageTemplate, data)
		return
	}

	log := agent.LoggerFrom(ctx, s.logger)

	s.mu.Lock()
	response, err := s.runner.Invoke(ctx, query)
	s.mu.Unlock()
	if err != nil {
		log.Error("query failed", zap.Error(err))
		data.Error = unavailableText
		c.HTML(http.StatusBadGateway, pageTemplate, data)
		return
	}

	view := Render(response)
	log.Debug("answer rendered", zap.String("markdown", view.Markdown()))
	data.View = &view
	c.HTML(http.StatusOK, pageTemplate, data)
}
