package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/gily0tina/smart-planner/internal/api"
	"github.com/gily0tina/smart-planner/internal/config"
	"github.com/gily0tina/smart-planner/internal/db"
	"github.com/gily0tina/smart-planner/internal/planner"
	"github.com/gily0tina/smart-planner/internal/provider"
	"github.com/gily0tina/smart-planner/internal/store"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// ----- STORE -----
	var st planner.Store
	if cfg.HasDB() {
		database, err := db.Connect(cfg.ConnString())
		if err != nil {
			logger.Fatal("failed to connect DB", zap.Error(err))
		}
		defer database.Close()
		if err := db.Migrate(database); err != nil {
			logger.Fatal("failed to migrate DB", zap.Error(err))
		}
		logger.Info("connected to PostgreSQL")
		st = store.NewPostgres(database)
	} else {
		logger.Warn("no database configured, using in-memory store")
		st = store.NewMemory()
	}

	// ----- PROVIDER -----
	client := provider.NewClient(provider.Config{
		APIKey:  cfg.PolzaKey,
		BaseURL: cfg.PolzaBase,
		Model:   cfg.PolzaModel,
		Timeout: cfg.PolzaTimeout,
	}, logger)
	if cfg.PolzaKey == "" {
		logger.Warn("POLZA_API_KEY not set, article search will use demo sources")
	}
	retriever := provider.NewRetriever(client, logger)

	var explainer planner.Explainer
	if cfg.PolzaKey != "" {
		explainer = client
	}

	// ----- CORE -----
	tieBreak := make([]planner.TimeBlock, 0, len(cfg.BlockPriority))
	for _, p := range cfg.BlockPriority {
		tieBreak = append(tieBreak, planner.TimeBlock(p))
	}

	session, err := planner.NewSession(context.Background(), planner.SessionConfig{
		Store:     st,
		Retriever: retriever,
		Engine:    planner.NewEngine(explainer, logger),
		TieBreak:  tieBreak,
		OpTimeout: cfg.PolzaTimeout + 15*time.Second,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("failed to init session", zap.Error(err))
	}

	// ----- HTTP -----
	mux := http.NewServeMux()
	api.New(session, logger).Register(mux)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Platform"},
		AllowCredentials: true,
	})

	handler := api.RequestLogger(logger, c.Handler(mux))

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("API server is running", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
