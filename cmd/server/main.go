// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/smartquery/text2sql-backend/api"
	"github.com/smartquery/text2sql-backend/config"
	"github.com/smartquery/text2sql-backend/internal/completion"
	"github.com/smartquery/text2sql-backend/internal/logger"
	"github.com/smartquery/text2sql-backend/internal/nlquery"
	"github.com/smartquery/text2sql-backend/internal/schema"
	"github.com/smartquery/text2sql-backend/internal/storage"
)

var (
	customLog = logger.NewLogger()
)

func main() {
	customLog.Println("Starting text2sql backend server...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		customLog.Fatalf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	// 2. Initialize Metadata Database Connection
	metaDB, err := storage.ConnectMetadataDB(cfg)
	if err != nil {
		customLog.Fatalf("Failed to initialize metadata database: %v", err)
		os.Exit(1)
	}
	defer func() {
		customLog.Println("Closing metadata database connection...")
		if err := metaDB.Close(); err != nil {
			customLog.Printf("Error closing metadata database: %v", err)
		}
	}()

	// 3. Load the prompt templates and schema artifact
	queryTmpl, err := nlquery.LoadTemplate(cfg.QueryPromptFile)
	if err != nil {
		customLog.Fatalf("Failed to load query prompt template: %v", err)
	}
	suggestionTmpl, err := nlquery.LoadTemplate(cfg.SuggestionPromptFile)
	if err != nil {
		customLog.Fatalf("Failed to load suggestion prompt template: %v", err)
	}
	catalog, err := schema.LoadCatalog(cfg.SchemaArtifactPath)
	if err != nil {
		customLog.Fatalf("Failed to load schema artifact: %v", err)
	}

	// 4. Connect the target database the generated SQL runs against
	targetDB, err := storage.ConnectTargetDB(context.Background(), cfg.TargetDriver, cfg.TargetDSN)
	if err != nil {
		customLog.Fatalf("Failed to connect target database: %v", err)
	}

	// 5. Assemble the query pipeline
	completer := completion.NewClient(completion.Options{
		BaseURL:     cfg.CompletionBaseURL,
		Token:       cfg.CompletionToken,
		Model:       cfg.CompletionModel,
		MaxTokens:   cfg.CompletionMaxTokens,
		Temperature: cfg.CompletionTemperature,
		Timeout:     cfg.CompletionTimeout,
	})
	pipeline := nlquery.NewPipeline(
		completer,
		nlquery.NewScoper(cfg.AllowedTable),
		queryTmpl,
		suggestionTmpl,
		cfg.GenerationAttempts,
	)
	pipeline.Swap(&nlquery.Engine{
		Executor: storage.NewSQLExecutor(targetDB),
		Catalog:  catalog,
	})

	// 6. Setup Router (passing dependencies)
	router := api.SetupRouter(metaDB, cfg, pipeline)

	// 7. Start Server
	customLog.Printf("Server listening on port %s", cfg.ServerPort)
	if err := router.Run(fmt.Sprintf(":%s", cfg.ServerPort)); err != nil {
		customLog.Fatalf("Failed to start server: %v", err)
	}
}
