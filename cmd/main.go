package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/AlexanderWiman/verlo-websocket/adapters/cache"
	"github.com/AlexanderWiman/verlo-websocket/adapters/llm"
	"github.com/AlexanderWiman/verlo-websocket/adapters/stt"
	"github.com/AlexanderWiman/verlo-websocket/adapters/tts"
	"github.com/AlexanderWiman/verlo-websocket/domain/repositories"
	"github.com/AlexanderWiman/verlo-websocket/internal/api"
	"github.com/AlexanderWiman/verlo-websocket/internal/translate"
	"github.com/AlexanderWiman/verlo-websocket/internal/websocket"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize provider adapters
	speechToText, translator, textToSpeech := buildProviders(logger)
	translationCache := buildCache(logger)

	// Initialize the shared turn pipeline
	pipeline := translate.NewPipeline(speechToText, translator, textToSpeech, translationCache, logger)

	// Initialize WebSocket hub
	hub := websocket.NewHub(pipeline, logger)
	go hub.Run()

	// Initialize API routes
	api.InitRoutes(e, hub, logger)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("port", port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// buildProviders wires the three remote providers, or their mocks when
// MOCK_PROVIDERS=true so the server runs without any credentials.
func buildProviders(logger *zap.Logger) (repositories.SpeechToText, repositories.Translator, repositories.TextToSpeech) {
	if os.Getenv("MOCK_PROVIDERS") == "true" {
		logger.Warn("Using mock providers")
		return &stt.MockSpeechToText{Transcript: "hej"},
			&llm.MockTranslator{},
			&tts.MockTextToSpeech{}
	}

	speechToText := stt.NewGoogleSpeechToText(stt.NewGoogleConfigFromEnv(), logger)

	translator, err := llm.NewGeminiTranslator(context.Background(), llm.NewGeminiConfigFromEnv(), logger)
	if err != nil {
		logger.Fatal("Failed to create translator", zap.Error(err))
	}

	textToSpeech, err := tts.NewElevenLabsTTS(tts.NewElevenLabsConfigFromEnv(), logger)
	if err != nil {
		logger.Fatal("Failed to create synthesizer", zap.Error(err))
	}

	return speechToText, translator, textToSpeech
}

// buildCache returns the Redis cache when REDIS_ADDR is set, otherwise an
// in-process cache. The pipeline treats the cache as best-effort either
// way.
func buildCache(logger *zap.Logger) repositories.TranslationCache {
	config := cache.NewRedisConfigFromEnv()
	if config.Addr == "" {
		logger.Warn("REDIS_ADDR not set, using in-memory translation cache")
		return cache.NewMemoryCache()
	}

	redisCache, err := cache.NewRedisCache(config, logger)
	if err != nil {
		logger.Fatal("Failed to create redis cache", zap.Error(err))
	}
	return redisCache
}
