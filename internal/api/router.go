package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/madunda/task-manager-api/internal/api/handler"
	"github.com/madunda/task-manager-api/internal/api/middleware"
	"github.com/madunda/task-manager-api/internal/core/ports"
	"github.com/madunda/task-manager-api/internal/core/service"
	mongodb "github.com/madunda/task-manager-api/internal/infrastructure/db/mongo"
	redisdb "github.com/madunda/task-manager-api/internal/infrastructure/db/redis"
)

// Deps carries everything the router needs to assemble the service graph.
type Deps struct {
	DB        *mongo.Database
	Redis     *redis.Client // optional; nil disables throttle and redis probe
	Mail      ports.MailQueue
	JWTSecret string
	TokenTTL  time.Duration
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("taskman"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(deps.DB)
	taskRepo := mongodb.NewTaskRepository(deps.DB)

	var throttle ports.LoginThrottle
	if deps.Redis != nil {
		throttle = redisdb.NewLoginThrottle(deps.Redis)
	}

	userService := service.NewUserService(userRepo, taskRepo, deps.Mail, throttle, deps.JWTSecret, deps.TokenTTL, deps.Logger)
	avatarService := service.NewAvatarService(userRepo, deps.Logger)
	taskService := service.NewTaskService(taskRepo, deps.Logger)

	userHandler := handler.NewUserHandler(userService)
	avatarHandler := handler.NewAvatarHandler(avatarService)
	taskHandler := handler.NewTaskHandler(taskService)

	auth := middleware.Auth(deps.JWTSecret, userRepo)
	admin := middleware.AdminOnly()

	// --- User routes ---
	e.POST("/users", userHandler.Create)
	e.POST("/users/login", userHandler.Login)
	e.POST("/users/logout", userHandler.Logout, auth)
	e.POST("/users/logoutAll", userHandler.LogoutAll, auth)
	e.GET("/users/me", userHandler.Me, auth)
	e.PATCH("/users/me", userHandler.UpdateMe, auth)
	e.DELETE("/users/me", userHandler.DeleteMe, auth)
	e.GET("/users", userHandler.List, auth, admin)
	e.DELETE("/users/:id", userHandler.DeleteByID, auth, admin)

	// --- Avatar routes ---
	e.POST("/users/me/avatar", avatarHandler.Upload, auth)
	e.GET("/users/me/avatar", avatarHandler.GetOwn, auth)
	e.DELETE("/users/me/avatar", avatarHandler.Delete, auth)
	e.GET("/users/:id/avatar", avatarHandler.GetByID, auth, admin)

	// --- Task routes ---
	e.POST("/tasks", taskHandler.Create, auth)
	e.GET("/tasks", taskHandler.List, auth)
	e.GET("/tasks/:id", taskHandler.Get, auth)
	e.PATCH("/tasks/:id", taskHandler.Update, auth)
	e.DELETE("/tasks/:id", taskHandler.Delete, auth)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
