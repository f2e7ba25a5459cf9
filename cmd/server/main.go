package main

import (
	"context"
	"log"
	"os"

	"openlaw-backend/catalog"
	"openlaw-backend/flows"
	"openlaw-backend/gateway"
	"openlaw-backend/handlers"
	"openlaw-backend/repository"
	"openlaw-backend/service"
	"openlaw-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	// Try current directory first, then project root
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	// Load the attorney catalog
	catalogPath := os.Getenv("ATTORNEYS_DATA")
	if catalogPath == "" {
		catalogPath = "attorneys_data.json"
	}
	attorneyCatalog := catalog.Load(catalogPath)
	log.Printf("Attorney catalog loaded: %d attorneys", attorneyCatalog.Len())

	// Initialize conversation store: Postgres when configured, in-memory otherwise
	var conversationStore repository.ConversationStore
	if os.Getenv("DATABASE_URL") != "" {
		db, err := initPostgres()
		if err != nil {
			log.Fatal("Failed to initialize Postgres:", err)
		}
		defer db.Close()
		conversationStore = repository.NewConversationRepository(db)
	} else {
		log.Println("DATABASE_URL not set, using in-memory conversation store")
		conversationStore = repository.NewMemoryConversationRepository()
	}

	// Initialize storage
	documentStorage, err := storage.NewStorageFromEnv()
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Println("Storage initialized")

	// Initialize Gemini client
	geminiClient, err := initGemini()
	if err != nil {
		log.Fatal("Failed to initialize Gemini:", err)
	}

	gw := gateway.NewGeminiGateway(geminiClient,
		gateway.GeminiWithSpecialties(attorneyCatalog.Specialties()),
	)

	// Initialize services
	matchService := service.NewMatchService(
		service.MatchWithCatalog(attorneyCatalog),
	)

	chatService := service.NewChatService(
		service.ChatWithStore(conversationStore),
		service.ChatWithGateway(gw),
		service.ChatWithMatcher(matchService),
		service.ChatWithFlows(
			flows.NewCaseIntakeFlow(gw),
			flows.NewDocumentDraftingFlow(gw),
		),
	)

	documentService := service.NewDocumentService(
		service.DocWithGateway(gw),
		service.DocWithStorage(documentStorage),
	)

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(chatService)
	documentHandler := handlers.NewDocumentHandler(documentService)

	// Setup Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes
	r.POST("/search", chatHandler.Search)
	r.POST("/generate-document", documentHandler.GenerateDocument)
	r.GET("/documents/*path", documentHandler.Download)
	r.DELETE("/documents/*path", documentHandler.Delete)
	r.POST("/upload", documentHandler.Upload)
	r.POST("/generate-title", chatHandler.GenerateTitle)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func initPostgres() (*pgxpool.Pool, error) {
	connString := os.Getenv("DATABASE_URL")

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, err
	}

	log.Println("Postgres connection established")
	return pool, nil
}

func initGemini() (*genai.Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	log.Println("Gemini client initialized")
	return client, nil
}
