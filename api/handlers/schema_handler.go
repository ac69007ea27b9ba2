// api/handlers/schema_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartquery/text2sql-backend/api/models"
	"github.com/smartquery/text2sql-backend/config"
	"github.com/smartquery/text2sql-backend/internal/nlquery"
	"github.com/smartquery/text2sql-backend/internal/schema"
	"github.com/smartquery/text2sql-backend/internal/storage"
)

// SchemaHandler exposes the active catalog and the reconnect operation.
type SchemaHandler struct {
	Pipeline *nlquery.Pipeline
	Cfg      *config.Config
}

// NewSchemaHandler creates a new SchemaHandler.
func NewSchemaHandler(pipeline *nlquery.Pipeline, cfg *config.Config) *SchemaHandler {
	return &SchemaHandler{Pipeline: pipeline, Cfg: cfg}
}

// GetSchema returns the catalog the pipeline currently grounds prompts in.
func (h *SchemaHandler) GetSchema(c *gin.Context) {
	eng := h.Pipeline.Engine()
	if eng == nil {
		_ = c.Error(nlquery.ErrNotConfigured)
		return
	}

	tables := make([]models.SchemaTable, 0)
	for _, t := range eng.Catalog.Tables() {
		tables = append(tables, models.SchemaTable{Table: t.Table, Columns: t.Columns})
	}
	c.JSON(http.StatusOK, gin.H{"tables": tables})
}

// Reconnect re-opens the target database and replaces the engine
// atomically: in-flight requests finish on the engine they loaded, new
// requests see the new database and catalog together.
func (h *SchemaHandler) Reconnect(c *gin.Context) {
	var req models.ReconnectRequest
	// The body is optional; an empty request reconnects with the startup
	// configuration.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			customLog.Warnf("Reconnect binding error: %v", err)
			_ = c.Error(err)
			return
		}
	}

	driver := req.Driver
	if driver == "" {
		driver = h.Cfg.TargetDriver
	}
	dsn := req.DSN
	if dsn == "" {
		dsn = h.Cfg.TargetDSN
	}
	artifactPath := req.SchemaPath
	if artifactPath == "" {
		artifactPath = h.Cfg.SchemaArtifactPath
	}

	db, err := storage.ConnectTargetDB(c.Request.Context(), driver, dsn)
	if err != nil {
		customLog.Warnf("Reconnect: target connection failed: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to connect to the target database."})
		return
	}

	var catalog *schema.Catalog
	if req.Reflect {
		catalog, err = schema.Reflect(c.Request.Context(), db, driver)
		if err == nil {
			err = schema.WriteArtifact(artifactPath, catalog)
		}
	} else {
		catalog, err = schema.LoadCatalog(artifactPath)
	}
	if err != nil {
		db.Close()
		customLog.Warnf("Reconnect: catalog load failed: %v", err)
		_ = c.Error(err)
		return
	}

	old := h.Pipeline.Swap(&nlquery.Engine{
		Executor: storage.NewSQLExecutor(db),
		Catalog:  catalog,
	})
	if old != nil {
		if exec, ok := old.Executor.(*storage.SQLExecutor); ok {
			// Connections already checked out finish their statements;
			// only new requests are cut over.
			exec.DB.Close()
		}
	}

	customLog.Printf("Reconnect: engine replaced (%s, %d tables)", driver, len(catalog.Tables()))
	c.JSON(http.StatusOK, gin.H{
		"message": "Reconnected successfully",
		"tables":  len(catalog.Tables()),
	})
}
