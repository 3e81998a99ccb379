// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package xhttp

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	metrics "github.com/slok/go-http-metrics/metrics/prometheus"
	"github.com/slok/go-http-metrics/middleware"
	middlewarestd "github.com/slok/go-http-metrics/middleware/std"
	"github.com/vpnhouse/songbook/pkg/xerror"
	"go.uber.org/zap"
)

// initialize the measuring middleware only once
var measureMW = middleware.New(middleware.Config{
	Recorder:      metrics.NewRecorder(metrics.Config{}),
	GroupedStatus: true,
})

type Middleware = func(http.Handler) http.Handler

type Option func(w *Server)

func WithMiddleware(mw Middleware) Option {
	return func(w *Server) {
		w.router.Use(mw)
	}
}

func WithMetrics() Option {
	return func(w *Server) {
		// the measurement middleware
		w.router.Use(func(handler http.Handler) http.Handler {
			return middlewarestd.Handler("", measureMW, handler)
		})
		// route to obtain metrics
		w.router.Handle("/metrics", promhttp.Handler())
	}
}

// WithCORS allows browser clients from any origin to send
// credentials (the session cookie) along with requests.
func WithCORS() Option {
	return func(w *Server) {
		cfg := cors.Options{
			AllowOriginFunc: func(r *http.Request, origin string) bool { return true },
			AllowedMethods: []string{
				http.MethodOptions,
				http.MethodGet,
				http.MethodPost,
				http.MethodPut,
				http.MethodPatch,
				http.MethodDelete,
			},
			AllowedHeaders:   []string{"Content-Type", "X-Amz-Date"},
			AllowCredentials: true,
		}
		w.router.Use(cors.Handler(cfg))
	}
}

func WithLogger() Option {
	return func(w *Server) {
		w.router.Use(requestLogger)
	}
}

func WithTimeouts(read, write time.Duration) Option {
	return func(w *Server) {
		w.readTimeout = read
		w.writeTimeout = write
	}
}

type Server struct {
	srv          *http.Server
	router       chi.Router
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// Run starts the http server asynchronously.
func (w *Server) Run(addr string) error {
	w.srv = &http.Server{
		Handler:      w.router,
		Addr:         addr,
		ReadTimeout:  w.readTimeout,
		WriteTimeout: w.writeTimeout,
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		w.srv = nil
		return xerror.EInternalError("failed to start http listener", err, zap.String("addr", addr))
	}

	zap.L().Info("starting HTTP server", zap.String("addr", addr))
	go func(srv *http.Server) {
		if err := srv.Serve(lis); err != nil && err != http.ErrServerClosed {
			zap.L().Error("http listener failed", zap.String("addr", addr), zap.Error(err))
		}
	}(w.srv)

	return nil
}

// Router exposes chi.Router for the external registration of handlers.
// usage:
//
//	h.Router().Get("/songs", myHandler)
//	h.Router().Post("/songs", myOtherHandler)
func (w *Server) Router() chi.Router {
	return w.router
}

func New(opts ...Option) *Server {
	r := chi.NewRouter()
	// always respond with JSON by using the custom error handlers
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteJsonError(w, xerror.WEntryNotFound("http", "Not found", nil, zap.String("path", r.URL.Path)))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		txt := "Method not allowed"
		WriteJsonErrorBody(w, http.StatusMethodNotAllowed, &xerror.Response{
			Result: "405",
			Error:  &txt,
		})
	})

	h := &Server{router: r}
	for _, o := range opts {
		o(h)
	}

	return h
}

func NewDefault() *Server {
	return New(
		WithLogger(),
		WithCORS(),
		// WithMetrics must be declared last
		WithMetrics(),
	)
}

func (w *Server) Shutdown() error {
	if w.srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := w.srv.Shutdown(ctx)
	w.srv = nil

	return err
}

func (w *Server) Running() bool {
	return w.srv != nil
}
