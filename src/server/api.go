package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"market-watchlist/src/helpers"
	"market-watchlist/src/interfaces"
	"market-watchlist/src/logger"
	"market-watchlist/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// APIServer
// -----------------------------------------------------------------------------

type APIServer struct {
	Config     *models.MConfig
	Logger     *logger.Logger
	Service    interfaces.IWatchlistService
	engine     *gin.Engine
	httpServer *http.Server

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan models.MDashboardView
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	// Local cache
	latestView *models.MDashboardView
	stateMutex sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAPIServer(cfg *models.MConfig, service interfaces.IWatchlistService, logger *logger.Logger) *APIServer {
	if !strings.EqualFold(cfg.LogLevel, "DEBUG") {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &APIServer{
		Config:     cfg,
		Logger:     logger,
		Service:    service,
		engine:     gin.New(),
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan models.MDashboardView, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
	s.engine.Use(gin.Recovery())

	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.getHealth)
	api.GET("/dashboard", s.getDashboard)
	api.GET("/assets", s.searchAssets)
	api.POST("/watchlist/:symbol", s.addSymbol)
	api.DELETE("/watchlist/:symbol", s.removeSymbol)
	api.POST("/expand/:symbol", s.toggleExpand)
	api.PUT("/chart/:symbol", s.setTimeframe)
	api.POST("/chart/:symbol/type", s.toggleChartType)
	api.GET("/preferences", s.getPreferences)
	api.PUT("/preferences", s.putPreferences)
	api.POST("/refresh", s.refresh)

	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler exposes the router, mainly for httptest.
func (s *APIServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start runs the websocket hub and serves HTTP until Stop is called.
func (s *APIServer) Start() error {
	s.Logger.Info("Starting server on %s", s.httpServer.Addr)

	go s.handleWebsockets()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *APIServer) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.done)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = s.httpServer.Shutdown(ctx)
	})
	return err
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := len(s.clients)
	s.stateMutex.RUnlock()

	view := s.Service.View()
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"connections":   connections,
		"feed_status":   view.Status,
		"generation":    view.Generation,
		"latest_update": view.UpdatedAt,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, s.Service.View())
}

func (s *APIServer) searchAssets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"assets": s.Service.Search(c.Query("q"))})
}

// -----------------------------------------------------------------------------

func (s *APIServer) addSymbol(c *gin.Context) {
	if err := s.Service.Add(c.Param("symbol")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Service.View())
}

func (s *APIServer) removeSymbol(c *gin.Context) {
	if err := s.Service.Remove(c.Param("symbol")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Service.View())
}

func (s *APIServer) toggleExpand(c *gin.Context) {
	symbol := c.Param("symbol")
	expanded, err := s.Service.Toggle(symbol)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "expanded": expanded})
}

// -----------------------------------------------------------------------------

func (s *APIServer) setTimeframe(c *gin.Context) {
	tf, err := models.ParseTimeframe(c.Query("timeframe"))
	if err != nil {
		s.fail(c, helpers.NewValidationError(err.Error()))
		return
	}
	if err := s.Service.SetTimeframe(c.Param("symbol"), tf); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": c.Param("symbol"), "timeframe": tf})
}

func (s *APIServer) toggleChartType(c *gin.Context) {
	chartType, err := s.Service.ToggleChartType(c.Param("symbol"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": c.Param("symbol"), "chart_type": chartType})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, s.Service.Preferences())
}

func (s *APIServer) putPreferences(c *gin.Context) {
	var prefs models.MPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		s.fail(c, helpers.NewValidationError("invalid preferences body: "+err.Error()))
		return
	}
	if err := s.Service.SetPreferences(prefs); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Service.Preferences())
}

// -----------------------------------------------------------------------------

func (s *APIServer) refresh(c *gin.Context) {
	if err := s.Service.Refresh(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Service.View())
}

// -----------------------------------------------------------------------------

// fail maps an error kind to an HTTP status and writes {"error": ...}.
func (s *APIServer) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch helpers.ErrorKind(err) {
	case helpers.KindValidation:
		status = http.StatusBadRequest
	case helpers.KindTransient, helpers.KindMalformed:
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		s.Logger.Error("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
