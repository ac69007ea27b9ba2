// api/handlers/query_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartquery/text2sql-backend/api/middleware"
	"github.com/smartquery/text2sql-backend/api/models"
	"github.com/smartquery/text2sql-backend/internal/domain"
	"github.com/smartquery/text2sql-backend/internal/nlquery"
)

// QueryHandler holds dependencies for the natural-language query endpoint.
type QueryHandler struct {
	Pipeline *nlquery.Pipeline
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(pipeline *nlquery.Pipeline) *QueryHandler {
	return &QueryHandler{Pipeline: pipeline}
}

// Query accepts a natural-language sentence, runs the query pipeline under
// the caller's permission level and returns rows, a suggestion, or an
// error response.
func (h *QueryHandler) Query(c *gin.Context) {
	identity := c.MustGet(middleware.IdentityKey).(*domain.Identity)

	var req models.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		customLog.Warnf("Query binding error: %v", err)
		_ = c.Error(err)
		return
	}

	customLog.Printf("Handler: query from user %s (permission %d): %s",
		identity.UserID, identity.Permission, req.Sentence)

	outcome := h.Pipeline.Run(c.Request.Context(), req.Sentence, identity.Permission)
	switch outcome.Kind {
	case nlquery.OutcomeRows:
		c.JSON(http.StatusOK, models.QueryResponse{
			SQL:     outcome.SQL,
			Headers: outcome.Headers,
			Result:  outcome.Records,
		})
	case nlquery.OutcomeSuggestion:
		c.JSON(http.StatusOK, models.SuggestionResponse{Suggestion: outcome.Suggestion})
	case nlquery.OutcomeRejected:
		_ = c.Error(outcome.Err)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to run this query."})
	default:
		_ = c.Error(outcome.Err) // ErrorHandler maps the cause to 403 or 500
	}
}
