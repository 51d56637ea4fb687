package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/config"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/handler"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/middleware"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/database"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/es"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/log"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func runServe(cmd *cobra.Command, args []string) {
	cfg := config.Conf
	config.Watch(configPath, func(level string) {
		if log.SetLevel(level) {
			log.Infof("log level changed to %s", level)
		}
	})

	a, err := newApp(cfg)
	if err != nil {
		log.Fatal("failed to initialize application", err)
	}
	defer a.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.startConsumer(ctx)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		gin.Recovery(),
		middleware.CORS(),
		middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	)
	registerRoutes(r, a)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}
	go func() {
		log.Infof("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received, stopping server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Orchestrator.RequestTimeout+5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown failed: %v", err)
	}
	log.Info("server stopped")
}

func registerRoutes(r *gin.Engine, a *app) {
	checks := map[string]handler.HealthCheck{"elasticsearch": pingElasticsearch}
	if database.RDB != nil {
		checks["redis"] = func(ctx context.Context) error { return database.RDB.Ping(ctx).Err() }
	}
	r.GET("/healthz", handler.NewHealthHandler(checks).Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	chatHandler := handler.NewChatHandler(a.chatService)
	evaluationHandler := handler.NewEvaluationHandler(a.evaluationService, a.evaluationRepo)
	jwtManager := token.NewJWTManager(a.cfg.JWT.Secret, a.cfg.JWT.TokenExpireHours)

	apiV1 := r.Group("/api/v1")
	{
		chat := apiV1.Group("/chat")
		{
			chat.POST("", chatHandler.Chat)
			chat.GET("/ws", chatHandler.Stream)
		}

		evaluations := apiV1.Group("/evaluations")
		evaluations.Use(middleware.AuthMiddleware(jwtManager, token.RoleEvaluator))
		{
			evaluations.POST("", evaluationHandler.Evaluate)
			evaluations.GET("", evaluationHandler.Recent)
		}
	}
}

func pingElasticsearch(ctx context.Context) error {
	res, err := es.ESClient.Ping(es.ESClient.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return errors.New(res.Status())
	}
	return nil
}
