package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	openai "github.com/sashabaranov/go-openai"

	"github.com/boneycanute/bare-bones-chat/internal/api"
	"github.com/boneycanute/bare-bones-chat/internal/config"
	"github.com/boneycanute/bare-bones-chat/internal/llm"
	"github.com/boneycanute/bare-bones-chat/internal/memory"
	"github.com/boneycanute/bare-bones-chat/internal/policy"
	"github.com/boneycanute/bare-bones-chat/internal/retrieval"
	"github.com/boneycanute/bare-bones-chat/internal/store"
)

func main() {
	cfg := config.Load()

	log.Printf("Starting chat server...")
	log.Printf("HTTP Port: %d", cfg.Port)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("Model: %s", cfg.OpenAIModel)

	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// OpenAI client, shared by the invoker and the embedder.
	openaiConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		openaiConfig.BaseURL = cfg.OpenAIBaseURL
	}
	openaiClient := openai.NewClientWithConfig(openaiConfig)

	invoker := llm.NewInvoker(openaiClient, cfg.OpenAIModel)

	// Retrieval is optional: with no backend configured the retriever stays
	// nil and the chat handler skips the context step.
	var retriever api.Retriever
	if cfg.RetrievalConfigured() {
		embedder := retrieval.NewOpenAIEmbedder(openaiClient, cfg.EmbeddingModel)
		index := retrieval.NewPineconeClient(cfg.PineconeIndexHost, cfg.PineconeAPIKey, 30*time.Second)
		retriever = retrieval.NewRetriever(embedder, index)
		log.Printf("Vector search enabled: %s", cfg.PineconeIndexHost)
	} else {
		log.Printf("WARN: vector search not configured, retrieval disabled")
	}

	sessions := memory.NewStore(cfg.SessionTTL, cfg.SessionMaxEntries)

	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	h := api.NewHandler(cfg, db, sessions, retriever, invoker, policyEngine)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h.RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Chat API started on port %d", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down chat server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Chat server stopped")
}
