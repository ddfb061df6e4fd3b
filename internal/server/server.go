package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/client"
	"taskboard/internal/config"
	"taskboard/internal/handler"
	"taskboard/internal/hub"
	"taskboard/internal/kanban"
	"taskboard/internal/middleware"
	"taskboard/internal/repository"
	"taskboard/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

type Server struct {
	Engine   *gin.Engine
	Handler  http.Handler
	DB       *gorm.DB
	Config   *config.Config
	Registry *session.Registry
	Hub      *hub.Hub

	sweeper *cron.Cron
	stopHub context.CancelFunc
}

func Init(cfg *config.Config) (*Server, error) {
	// Setup GORM; DB_DRIVER=none leaves db nil and disables the journal
	db, err := repository.Open(cfg)
	if err != nil {
		return nil, err
	}
	if db != nil {
		if err := repository.Migrate(cfg, db); err != nil {
			return nil, err
		}
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	h := hub.New()
	go h.Run(hubCtx)

	journalRepo := repository.NewMoveJournalRepository(db)

	var boardOpts []kanban.Option
	if cfg.ActivationDistance > 0 {
		boardOpts = append(boardOpts, kanban.WithActivationDistance(cfg.ActivationDistance))
	}
	if cfg.RestoreOnCancel {
		boardOpts = append(boardOpts, kanban.WithRestoreOnCancel())
	}
	opts := session.Options{
		NewBackend: func(tokens oauth2.TokenSource) kanban.Backend {
			return client.NewWithTokenSource(cfg.BackendURL, tokens, cfg.BackendTimeout)
		},
		Publisher: h,
		BoardOpts: boardOpts,
		IdleTTL:   cfg.SessionIdleTTL,
	}
	if db != nil {
		opts.Journal = journalRepo.For
	}
	registry := session.NewRegistry(opts)

	sweeper, err := registry.StartSweeper(cfg.SessionSweepSpec)
	if err != nil {
		stopHub()
		return nil, err
	}

	// Setup Gin
	r := gin.Default()

	// Initialize handlers
	boardHandler := handler.NewBoardHandler(registry)
	dragHandler := handler.NewDragHandler(registry)
	wsHandler := handler.NewWSHandler(registry, h, cfg.AllowedOrigins)
	journalHandler := handler.NewJournalHandler(registry, journalRepo)

	// Public routes
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"sessions":    registry.Len(),
			"subscribers": h.Subscribers(),
			"journal":     db != nil,
		})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		// Board routes
		authorized.GET("/projects/:id/board", boardHandler.Get)
		authorized.POST("/projects/:id/refresh", boardHandler.Refresh)
		authorized.GET("/projects/:id/tasks/:taskId", boardHandler.GetTask)
		authorized.GET("/projects/:id/ws", wsHandler.Subscribe)

		// Pointer routes
		authorized.POST("/projects/:id/pointer/press", dragHandler.Press)
		authorized.POST("/projects/:id/pointer/move", dragHandler.PointerMove)
		authorized.POST("/projects/:id/pointer/release", dragHandler.Release)

		// Drag routes
		authorized.POST("/projects/:id/drag/start", dragHandler.Start)
		authorized.POST("/projects/:id/drag/over", dragHandler.Over)
		authorized.POST("/projects/:id/drag/drop", dragHandler.Drop)
		authorized.POST("/projects/:id/drag/cancel", dragHandler.Cancel)

		// Journal routes
		authorized.GET("/projects/:id/moves", journalHandler.List)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	return &Server{
		Engine:   r,
		Handler:  c.Handler(r),
		DB:       db,
		Config:   cfg,
		Registry: registry,
		Hub:      h,
		sweeper:  sweeper,
		stopHub:  stopHub,
	}, nil
}

// Close stops the background workers.
func (s *Server) Close() {
	<-s.sweeper.Stop().Done()
	s.stopHub()
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Handler,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}
	s.Close()

	log.Println("✅ Server exited properly")
}
