// internal/nlquery/scope.go
package nlquery

import (
	"errors"
	"strings"

	"github.com/smartquery/text2sql-backend/internal/domain"
)

// ErrInsufficientPermission marks a policy rejection: the caller's level is
// unrecognized or the statement touches tables outside their scope.
var ErrInsufficientPermission = errors.New("insufficient permission for this query")

// Scoper decides whether a caller's permission level allows a candidate
// SQL statement.
type Scoper struct {
	// AllowedTable is the single table literal a restricted caller's SQL
	// must contain. A substring check, not a parsed table reference: it can
	// match inside an unrelated string literal and miss aliased references.
	AllowedTable string
}

// NewScoper builds a scoper around the configured allowed-table literal.
func NewScoper(allowedTable string) *Scoper {
	return &Scoper{AllowedTable: allowedTable}
}

// Authorize returns nil when level permits sqlText. Standard callers pass
// unconditionally; restricted callers need the allowed-table literal in the
// statement; unrecognized levels always fail.
func (s *Scoper) Authorize(sqlText string, level domain.PermissionLevel) error {
	switch level {
	case domain.PermissionStandard:
		return nil
	case domain.PermissionRestricted:
		if strings.Contains(sqlText, s.AllowedTable) {
			return nil
		}
		return ErrInsufficientPermission
	default:
		return ErrInsufficientPermission
	}
}
