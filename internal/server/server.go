package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gigmatch/internal/api/middleware"
	"gigmatch/internal/api/routes"
	"gigmatch/internal/app"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	app    *app.Application
	http   *http.Server
}

func NewServer(app *app.Application) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger())

	zap.L().Info("configuring CORS", zap.Strings("allowed_origins", app.Config.CORS.AllowedOrigins))
	corsConfig := cors.Config{
		AllowOriginFunc: func(origin string) bool {
			for _, allowed := range app.Config.CORS.AllowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return false
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	_ = router.SetTrustedProxies(nil) // Remove the gin warning about untrusted proxies

	routes.RegisterRoutes(router, app)

	cfg := app.Config.Server
	return &Server{
		router: router,
		app:    app,
		http: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until Shutdown is called. A clean shutdown returns nil.
func (s *Server) Start() error {
	zap.L().Info("server starting", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	zap.L().Info("server shutting down")
	return s.http.Shutdown(ctx)
}
