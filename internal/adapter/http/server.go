package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alexadark/ffmpeg-api-service/internal/adapter/http/middleware"
)

type Server struct {
	router   *mux.Router
	handlers *Handlers
}

func NewServer(handlers *Handlers) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		handlers: handlers,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/api/assemble", s.handlers.Assemble()).Methods(http.MethodPost)
	s.router.HandleFunc("/job/{id}", s.handlers.JobStatus()).Methods(http.MethodGet)
	s.router.HandleFunc("/download/{filename}", s.handlers.Download()).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handlers.Healthz()).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	s.router.Use(middleware.Logging)
	s.router.Use(middleware.Metrics)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
