// Package health exposes the liveness endpoint used by hosting platforms.
package health

import (
	"context"
	"errors"
	"net/http"

	"tempmail-otp-bot/internal/logging"

	"github.com/gin-gonic/gin"
)

const runningText = "🤖 البوت يعمل! استخدم /health للتحقق."

// Server answers liveness probes. It shares no state with the bot.
type Server struct {
	srv *http.Server
}

// New creates a Server listening on addr
func New(addr string) *Server {
	return &Server{
		srv: &http.Server{
			Addr:    addr,
			Handler: NewRouter(),
		},
	}
}

// NewRouter builds the gin engine with the liveness routes
func NewRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, runningText)
	})
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}

// Start serves until Shutdown is called. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	logging.Log.Infof("Liveness endpoint listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
