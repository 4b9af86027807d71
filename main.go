package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aashish23092/statement-parser/config"
	"github.com/Aashish23092/statement-parser/extractor/hdfc"
	"github.com/Aashish23092/statement-parser/extractor/sbi"
	"github.com/Aashish23092/statement-parser/handler"
	"github.com/Aashish23092/statement-parser/logger"
	"github.com/Aashish23092/statement-parser/service"
	"github.com/Aashish23092/statement-parser/storage"
)

func main() {
	log := logger.New()
	cfg := config.LoadConfig()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create database pool")
	}
	defer pool.Close()

	store := storage.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure database schema")
	}

	// Registration order doubles as the tie-break order when scoring.
	dispatcher := service.NewDispatcher(log, sbi.New(), hdfc.New())

	authService := service.NewAuthService(store, cfg.JWTSecret, cfg.TokenTTL, log)
	statementService := service.NewStatementService(cfg, log, dispatcher, store)

	authHandler := handler.NewAuthHandler(authService, log)
	statementHandler := handler.NewStatementHandler(statementService, log)

	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxFileSize

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Credit Card Statement Parser",
			"issuers": dispatcher.Issuers(),
		})
	})

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		statements := api.Group("/statements")
		statements.Use(handler.AuthRequired(authService))
		{
			statements.POST("", statementHandler.Upload)
			statements.GET("", statementHandler.List)
			statements.GET("/:id", statementHandler.Get)
		}
	}

	log.Info().Str("port", cfg.ServerPort).Msg("starting statement parser service")
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
