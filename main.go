package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/avelar-dev/go-tours/config"
	"github.com/avelar-dev/go-tours/controllers"
	"github.com/avelar-dev/go-tours/middleware"
	"github.com/avelar-dev/go-tours/models"
	"github.com/avelar-dev/go-tours/store"
	"github.com/avelar-dev/go-tours/utils"
)

func main() {
	// Load environment variables
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	setupLogger(cfg)

	// Connect to MongoDB
	client, db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("mongo connect error: %v", err)
	}
	slog.Info("connected to MongoDB", "db", cfg.MongoDB)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	users, err := store.NewMongoStore(ctx, db)
	cancel()
	if err != nil {
		log.Fatalf("store init error: %v", err)
	}

	mailer := &utils.SMTPMailer{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.EmailFrom,
	}

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := newRouter(cfg, users, mailer)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine for graceful shutdown
	go func() {
		slog.Info("server started", "addr", "http://localhost:"+cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for interrupt (Ctrl+C)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	if err := client.Disconnect(shutdownCtx); err != nil {
		slog.Error("error disconnecting MongoDB", "error", err)
	}

	slog.Info("server exited")
}

// newRouter wires middleware and routes. Kept separate from main so the full
// stack can be exercised in tests against an in-memory store.
func newRouter(cfg *config.Config, users store.UserStore, mailer utils.Mailer) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(cfg.Production()))
	router.NoRoute(middleware.NoRoute())

	auth := middleware.NewAuth(users, cfg)
	authCtrl := controllers.NewAuthController(users, mailer, cfg)
	userCtrl := controllers.NewUserController(users)

	// Public landing page with optional personalization.
	router.GET("/", auth.IsLoggedIn(), func(c *gin.Context) {
		greeting := "Welcome to the Go Tours API!"
		if user, ok := middleware.CurrentUser(c); ok {
			greeting = "Welcome back, " + user.Name + "!"
		}
		c.JSON(http.StatusOK, gin.H{
			"message": greeting,
			"routes":  []string{"/api/v1/users"},
		})
	})

	api := router.Group("/api/v1")
	{
		u := api.Group("/users")
		{
			u.POST("/signup", authCtrl.Signup)
			u.POST("/login", authCtrl.Login)
			u.GET("/logout", authCtrl.Logout)
			u.POST("/forgotPassword", authCtrl.ForgotPassword)
			u.PATCH("/resetPassword/:token", authCtrl.ResetPassword)

			protected := u.Group("", auth.Protect())
			{
				protected.PATCH("/updateMyPassword", authCtrl.UpdatePassword)
				protected.GET("/me", userCtrl.GetMe)
				protected.PATCH("/updateMe", userCtrl.UpdateMe)
				protected.DELETE("/deleteMe", userCtrl.DeleteMe)

				protected.GET("", auth.RestrictTo(models.RoleAdmin), userCtrl.ListUsers)
			}
		}
	}

	return router
}

func setupLogger(cfg *config.Config) {
	var handler slog.Handler
	if cfg.Production() {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))
}
