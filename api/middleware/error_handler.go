// api/middleware/error_handler.go
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/smartquery/text2sql-backend/internal/auth"
	"github.com/smartquery/text2sql-backend/internal/completion"
	"github.com/smartquery/text2sql-backend/internal/nlquery"
	"github.com/smartquery/text2sql-backend/internal/schema"
	"github.com/smartquery/text2sql-backend/internal/storage"
)

// ErrorHandler creates a Gin middleware for centralized error handling.
// Handlers attach errors via c.Error; this maps the last one to a status
// code and user message if no response has been written yet.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		customLog.Printf("[ErrorHandler] Detected error: %v | Type: %T", err, err)

		var statusCode int
		var userMessage string

		var safetyErr *nlquery.SafetyError

		switch {
		case errors.Is(err, storage.ErrUserNotFound):
			statusCode = http.StatusNotFound
			userMessage = err.Error()
		case errors.Is(err, storage.ErrEmailExists):
			statusCode = http.StatusConflict
			userMessage = err.Error()
		case errors.Is(err, storage.ErrInvalidCredentials):
			statusCode = http.StatusUnauthorized
			userMessage = "Invalid email or password."
		case errors.Is(err, auth.ErrTokenMalformed),
			errors.Is(err, auth.ErrTokenInvalid),
			errors.Is(err, auth.ErrTokenClaimsInvalid),
			errors.Is(err, auth.ErrUnexpectedSigningMethod):
			statusCode = http.StatusUnauthorized
			userMessage = "Invalid or malformed authentication token."
		case errors.Is(err, auth.ErrTokenExpired):
			statusCode = http.StatusUnauthorized
			userMessage = "Authentication token has expired."
		case errors.Is(err, nlquery.ErrInsufficientPermission):
			statusCode = http.StatusForbidden
			userMessage = "You do not have permission to run this query."
		case errors.As(err, &safetyErr):
			// Never echo the rejected SQL back to the caller.
			statusCode = http.StatusForbidden
			userMessage = "The generated statement was blocked by the safety policy."
		case errors.Is(err, completion.ErrUpstreamTimeout),
			errors.Is(err, completion.ErrUpstream):
			statusCode = http.StatusInternalServerError
			userMessage = "The SQL generation service is unavailable."
		case errors.Is(err, schema.ErrArtifactMissing),
			errors.Is(err, nlquery.ErrTemplateMissing),
			errors.Is(err, nlquery.ErrNotConfigured):
			statusCode = http.StatusInternalServerError
			userMessage = "The query service is not configured correctly."
		default:
			if validationErrs, ok := err.(validator.ValidationErrors); ok {
				statusCode = http.StatusBadRequest
				userMessage = "Validation failed. Please check your input."
				for _, fe := range validationErrs {
					customLog.Printf("Validation Error: Field %s failed on %s", fe.Field(), fe.Tag())
				}
				break
			}
			statusCode = http.StatusInternalServerError
			userMessage = "An unexpected internal server error occurred."
			customLog.Printf("Unhandled error type: %T, Error: %v", err, err)
		}

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(statusCode, gin.H{"error": userMessage})
		} else {
			customLog.Printf("[ErrorHandler] Warning: Response already written before handling error.")
		}
	}
}
