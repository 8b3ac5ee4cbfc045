package bootstrap

import (
	"fmt"
	"log"

	"github.com/sanketexe/legal-chatbot/internal/config"
	"github.com/sanketexe/legal-chatbot/internal/controller"
	"github.com/sanketexe/legal-chatbot/internal/pkg/logger"
	"github.com/sanketexe/legal-chatbot/internal/service"
	"github.com/sanketexe/legal-chatbot/pkg/embedding"
	"github.com/sanketexe/legal-chatbot/pkg/llm/factory"
	"github.com/sanketexe/legal-chatbot/pkg/rag"
	"github.com/sanketexe/legal-chatbot/pkg/vectorstore"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Services (exposed for the loadcases CLI)
	ChatService   service.IChatService
	LoaderService service.ILoaderService

	Index  vectorstore.Index
	Logger logger.ILogger
}

func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Embedding Provider
	var embeddingProvider embedding.Provider
	var embeddingModelID string
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
		embeddingModelID = "ollama/" + cfg.Ai.EmbeddingModel
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini, cfg.Ai.EmbeddingModel)
		embeddingModelID = "gemini/" + cfg.Ai.EmbeddingModel
		log.Printf("[INFO] Using Embedding Provider: GEMINI (%s)", cfg.Ai.EmbeddingModel)
	}

	generator := embedding.NewGenerator(embeddingProvider, embedding.GeneratorConfig{
		MaxInputRunes: cfg.Retrieval.MaxEmbedInputRunes,
		Dimension:     cfg.Ai.EmbeddingDimension,
	}, nil)

	// 3. Vector Index
	var index vectorstore.Index
	var err error
	switch cfg.Store.Backend {
	case "pgvector":
		index, err = vectorstore.NewPGVectorStore(cfg.Database.Connection, embeddingModelID, cfg.Ai.EmbeddingDimension)
		if err != nil {
			return nil, fmt.Errorf("init pgvector store: %w", err)
		}
		log.Printf("[INFO] Using Vector Store: PGVECTOR")
	case "chromem", "":
		index, err = vectorstore.NewChromemStore(cfg.Store.DataDir, embeddingModelID, cfg.Ai.EmbeddingDimension)
		if err != nil {
			return nil, fmt.Errorf("init chromem store: %w", err)
		}
		log.Printf("[INFO] Using Vector Store: CHROMEM (%s)", cfg.Store.DataDir)
	default:
		return nil, fmt.Errorf("unsupported vector store backend: %s", cfg.Store.Backend)
	}

	// 4. LLM Provider
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 5. Retrieval Pipeline
	retriever := rag.NewRetriever(generator, index, cfg.Retrieval.TopK, cfg.Retrieval.SimilarityThreshold, nil)
	assembler := rag.NewContextBuilder(cfg.Retrieval.MaxContextChars)
	answerer := rag.NewAnswerer(retriever, assembler, llmProvider, rag.AnswererConfig{
		Model:          cfg.Ai.LLMModel,
		AttemptBudget:  cfg.Retrieval.RetryBudget,
		AttemptTimeout: cfg.Retrieval.GenerationTimeout,
		RetryWallClock: cfg.Retrieval.RetryWallClock,
	}, nil)
	loader := rag.NewLoader(generator, index, cfg.Retrieval.BatchSize, nil)

	// 6. Services
	chatService := service.NewChatService(answerer, retriever, index, sysLogger)
	loaderService := service.NewLoaderService(loader, index, sysLogger)

	// 7. Controllers
	return &Container{
		ChatController: controller.NewChatController(chatService),
		ChatService:    chatService,
		LoaderService:  loaderService,
		Index:          index,
		Logger:         sysLogger,
	}, nil
}

// Close releases the container's long-lived resources.
func (c *Container) Close() {
	if c.Index != nil {
		_ = c.Index.Close()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
