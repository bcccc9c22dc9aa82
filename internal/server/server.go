package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/railzwaylabs/riskscore/internal/config"
	featuredomain "github.com/railzwaylabs/riskscore/internal/feature/domain"
	modeldomain "github.com/railzwaylabs/riskscore/internal/model/domain"
	scoringdomain "github.com/railzwaylabs/riskscore/internal/scoring/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/railzwaylabs/riskscore/internal/server")

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

type Params struct {
	fx.In

	Cfg        config.Config
	Log        *zap.Logger
	Registry   *prometheus.Registry `optional:"true"`
	FeatureSvc featuredomain.Service
	ScoringSvc scoringdomain.Service
	ModelSvc   modeldomain.Service
	Bundle     *modeldomain.Bundle
}

type Server struct {
	cfg        config.Config
	log        *zap.Logger
	registry   *prometheus.Registry
	featureSvc featuredomain.Service
	scoringSvc scoringdomain.Service
	modelSvc   modeldomain.Service
	bundle     *modeldomain.Bundle
	engine     *gin.Engine
}

func NewServer(p Params) *Server {
	if !p.Cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:        p.Cfg,
		log:        p.Log.Named("http.server"),
		registry:   p.Registry,
		featureSvc: p.FeatureSvc,
		scoringSvc: p.ScoringSvc,
		modelSvc:   p.ModelSvc,
		bundle:     p.Bundle,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.RequestID(), s.Tracing(), s.AccessLog(), s.ErrorHandlingMiddleware())

	r.GET("/healthz", s.Healthz)
	r.GET("/metrics", gin.WrapH(s.metricsHandler()))

	api := r.Group("/api/v1")
	{
		api.GET("/features", s.ListFeatures)
		api.POST("/predictions", s.CreatePredictions)
		api.GET("/model", s.GetModel)
	}
	return r
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) metricsHandler() http.Handler {
	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer}
	if s.registry != nil {
		gatherers = append(gatherers, s.registry)
	}
	return promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})
}

// RequestID propagates the caller's X-Request-ID or assigns a new one.
func (s *Server) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+c.FullPath(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("http.request_id", requestID(c))),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		span.SetAttributes(attribute.Int("http.status_code", c.Writer.Status()))
	}
}

func (s *Server) AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", requestID(c)),
			zap.String("trace_id", trace.SpanContextFromContext(c.Request.Context()).TraceID().String()),
		)
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RunHTTP binds the server to the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			s.log.Info("http server listening",
				zap.String("addr", ln.Addr().String()),
				zap.String("model_run_id", s.bundle.RunID),
			)
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
