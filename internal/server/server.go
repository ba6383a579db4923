package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"pebble/internal/auth"
	"pebble/internal/config"
	"pebble/internal/database"
	"pebble/internal/handler"
	"pebble/internal/middleware"
	"pebble/internal/repository"
	"pebble/internal/seed"
	"pebble/internal/tracker"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Store  *tracker.Store
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	logger := NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	repos, db, err := OpenRepositories(cfg)
	if err != nil {
		return nil, err
	}

	store := tracker.NewStore(repos, tracker.WithLogger(logger))

	if cfg.SeedDemo {
		if err := seed.Run(context.Background(), store, repos.Users); err != nil {
			return nil, fmt.Errorf("❌ failed to seed demo data: %w", err)
		}
	}

	tokens := auth.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour)

	r := gin.Default()
	RegisterRoutes(r, store, repos.Users, tokens)

	return &Server{
		Engine: r,
		DB:     db,
		Store:  store,
		Config: cfg,
	}, nil
}

// OpenRepositories builds the repositories for the configured backend. The
// returned *gorm.DB is nil for the memory backend.
func OpenRepositories(cfg *config.Config) (repository.Repositories, *gorm.DB, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Println("✅ Using in-memory store")
		return repository.NewMemoryRepositories(), nil, nil
	case config.BackendPostgres:
		if cfg.AutoMigrate {
			if err := database.MigrateUp(cfg.PostgresURL()); err != nil {
				return repository.Repositories{}, nil, fmt.Errorf("❌ failed to migrate: %w", err)
			}
		}
	case config.BackendSQLite:
	default:
		return repository.Repositories{}, nil, fmt.Errorf("❌ unknown store backend %q", cfg.StoreBackend)
	}

	db, err := database.Open(cfg)
	if err != nil {
		return repository.Repositories{}, nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	if cfg.StoreBackend == config.BackendSQLite && cfg.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return repository.Repositories{}, nil, fmt.Errorf("❌ failed to migrate: %w", err)
		}
	}
	return database.Repositories(db), db, nil
}

// RegisterRoutes mounts the public and authenticated API on r.
func RegisterRoutes(r *gin.Engine, store *tracker.Store, users repository.UserRepositoryInterface, tokens *auth.Manager) {
	userHandler := handler.NewUserHandler(users, tokens)
	projectHandler := handler.NewProjectHandler(store)
	issueHandler := handler.NewIssueHandler(store)
	boardHandler := handler.NewBoardHandler(store)
	labelHandler := handler.NewLabelHandler(store)
	dashboardHandler := handler.NewDashboardHandler(store)

	// Public routes
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(tokens))
	{
		authorized.GET("/me", userHandler.Me)
		authorized.GET("/users", userHandler.List)

		authorized.GET("/labels", labelHandler.List)
		authorized.POST("/labels", labelHandler.Create)

		// Project routes
		authorized.POST("/projects", projectHandler.Create)
		authorized.GET("/projects", projectHandler.List)
		authorized.GET("/projects/:key", projectHandler.Get)
		authorized.GET("/projects/:key/issues", projectHandler.Issues)
		authorized.POST("/projects/:key/issues", projectHandler.CreateIssue)
		authorized.GET("/projects/:key/backlog", projectHandler.Backlog)
		authorized.GET("/projects/:key/summary", projectHandler.Summary)

		// Board routes
		authorized.GET("/projects/:key/board", boardHandler.Board)
		authorized.GET("/projects/:key/events", boardHandler.Events)
		authorized.POST("/issues/:id/move", boardHandler.Move)

		// Issue routes
		authorized.GET("/issues", issueHandler.Search)
		authorized.GET("/issues/:id", issueHandler.Get)
		authorized.PATCH("/issues/:id", issueHandler.Update)
		authorized.DELETE("/issues/:id", issueHandler.Delete)

		authorized.GET("/dashboard/cards", dashboardHandler.Cards)
		authorized.GET("/dashboard/latest", dashboardHandler.Latest)
	}
}

// NewLogger returns a text slog logger at the named level (debug, info,
// warn, error). Unknown names mean info.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func (s *Server) Run() {
	// Request contexts derive from base so event streams end on shutdown
	base, stopStreams := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:        ":" + s.Config.ServerPort,
		Handler:     s.Engine,
		BaseContext: func(net.Listener) context.Context { return base },
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

	stopStreams()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Server forced to shutdown: %s", err)
	}

	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}

	log.Println("✅ Server exited properly")
}
