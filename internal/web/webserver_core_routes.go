// Package web provides the HTTP server for go-placeholder
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/go-while/go-placeholder/internal/config"
)

// WebServer represents the web server
type WebServer struct {
	Router *gin.Engine
	Config *config.WebConfig

	mux        sync.Mutex
	startTime  time.Time // guarded by mux, read through Uptime()
	httpServer *http.Server
}

// NewServer creates a new web server instance
func NewServer(webconfig *config.WebConfig) *WebServer {
	if webconfig.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	// known path with the wrong method answers 405 instead of 404
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())

	// Set trusted proxies for common reverse proxy setups (nginx, etc.)
	if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}); err != nil {
		log.Printf("[WEB]: Warning: failed to set trusted proxies: %v", err)
	}

	server := &WebServer{
		Router: router,
		Config: webconfig,
	}

	if webconfig.Debug {
		router.Use(accessLogger(gin.DefaultWriter))
	}

	// Plain HTTP only, no SSL-specific headers
	router.Use(secure.New(secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes.
// Unknown paths fall through to gin's default 404; other methods on "/" get 405.
func (s *WebServer) setupRoutes() {
	s.Router.GET("/", s.homePage)
	s.Router.HEAD("/", s.homePage)
	s.Router.OPTIONS("/", s.homeOptions)
}

// Addr returns the configured listen address
func (s *WebServer) Addr() string {
	return s.Config.Addr()
}

// Start binds the configured address and serves until Shutdown.
// Bind errors are returned before any request is accepted.
func (s *WebServer) Start() error {
	addr := s.Addr()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(listener)
}

// Serve serves HTTP on an already bound listener
func (s *WebServer) Serve(listener net.Listener) error {
	s.mux.Lock()
	if s.httpServer != nil {
		s.mux.Unlock()
		listener.Close()
		return errors.New("web server already started")
	}
	srv := &http.Server{
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = srv
	s.startTime = time.Now()
	s.mux.Unlock()

	log.Printf("[WEB]: Starting HTTP server on %s", listener.Addr())
	return srv.Serve(listener)
}

// Shutdown gracefully stops the server; a server that never started is a no-op
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mux.Lock()
	srv := s.httpServer
	s.mux.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Uptime returns the time since the server started serving
func (s *WebServer) Uptime() time.Duration {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.startTime.IsZero() {
		return 0
	}
	return time.Since(s.startTime)
}

// accessLogger writes one Apache common-log line per request to out
func accessLogger(out io.Writer) gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Output:    out,
		Formatter: commonLogLine,
	})
}

func commonLogLine(p gin.LogFormatterParams) string {
	return fmt.Sprintf("%s - - [%s] %q %d %d %q %q\n",
		p.ClientIP,
		p.TimeStamp.Format("02/Jan/2006:15:04:05 -0700"),
		p.Method+" "+p.Path+" "+p.Request.Proto,
		p.StatusCode,
		p.BodySize,
		p.Request.Referer(),
		p.Request.UserAgent(),
	)
}
