// internal/nlquery/filter.go
package nlquery

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/smartquery/text2sql-backend/internal/logger"
	"github.com/smartquery/text2sql-backend/internal/schema"
)

var customLog = logger.NewLogger()

// Rejection reasons surfaced by the safety filter.
const (
	ReasonNotASelect       = "NOT_A_SELECT"
	ReasonForbiddenKeyword = "FORBIDDEN_KEYWORD"
)

// SafetyError reports why a candidate SQL string failed the lexical policy.
type SafetyError struct {
	Reason  string
	Keyword string
}

func (e *SafetyError) Error() string {
	if e.Keyword != "" {
		return fmt.Sprintf("%s(%s): statement contains a forbidden keyword", e.Reason, e.Keyword)
	}
	return fmt.Sprintf("%s: statement must begin with SELECT", e.Reason)
}

// forbiddenKeywords is the denylist applied to the uppercased statement.
// Substring containment, not parsing: false negatives are an accepted
// limitation, false positives on plain SELECTs are what we minimize.
var forbiddenKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "ALTER",
	"TRUNCATE", "CREATE", "EXEC", "MERGE", "CALL",
}

var (
	selectAnchor   = regexp.MustCompile(`(?i)^select\b`)
	lineComment    = regexp.MustCompile(`^--[^\n]*\n?`)
	blockComment   = regexp.MustCompile(`(?s)^/\*.*?\*/`)
	identifierLike = regexp.MustCompile(`[\p{L}_][\p{L}\p{N}_]*`)
)

// sqlVocabulary covers the keywords and functions a plain SELECT may carry,
// so the diagnostic pass does not flag them as unknown tables.
var sqlVocabulary = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "GROUP": true, "ORDER": true,
	"BY": true, "HAVING": true, "LIMIT": true, "OFFSET": true, "JOIN": true,
	"LEFT": true, "RIGHT": true, "INNER": true, "OUTER": true, "ON": true,
	"AS": true, "AND": true, "OR": true, "IN": true, "NOT": true, "NULL": true,
	"IS": true, "BETWEEN": true, "LIKE": true, "DISTINCT": true, "ASC": true,
	"DESC": true, "UNION": true, "ALL": true, "CASE": true, "WHEN": true,
	"THEN": true, "ELSE": true, "END": true, "COUNT": true, "SUM": true,
	"AVG": true, "MIN": true, "MAX": true, "EXISTS": true, "WITH": true,
}

// Filter applies the lexical read-only policy to candidate SQL. Stateless
// and deterministic: the same input always yields the same verdict.
type Filter struct{}

// NewFilter returns the safety filter.
func NewFilter() *Filter {
	return &Filter{}
}

// Validate returns nil when sqlText passes the policy and a *SafetyError
// otherwise. The catalog is consulted only for diagnostics; unknown tokens
// never cause rejection.
func (f *Filter) Validate(sqlText string, catalog *schema.Catalog) error {
	body := trimLeadingComments(sqlText)

	if !selectAnchor.MatchString(body) {
		return &SafetyError{Reason: ReasonNotASelect}
	}

	upper := strings.ToUpper(body)
	for _, kw := range forbiddenKeywords {
		if strings.Contains(upper, kw) {
			return &SafetyError{Reason: ReasonForbiddenKeyword, Keyword: kw}
		}
	}

	if catalog != nil {
		f.reportUnknownTokens(body, catalog)
	}

	return nil
}

// trimLeadingComments drops whitespace and -- / block comments ahead of the
// statement so the SELECT anchor sees the first real token.
func trimLeadingComments(sqlText string) string {
	body := strings.TrimSpace(sqlText)
	for {
		if m := lineComment.FindString(body); m != "" {
			body = strings.TrimSpace(body[len(m):])
			continue
		}
		if m := blockComment.FindString(body); m != "" {
			body = strings.TrimSpace(body[len(m):])
			continue
		}
		return body
	}
}

// reportUnknownTokens logs identifier-ish tokens that are neither SQL
// vocabulary nor known table names. Aliases and column names land here too,
// which is why this is diagnostic only.
func (f *Filter) reportUnknownTokens(body string, catalog *schema.Catalog) {
	for _, tok := range identifierLike.FindAllString(body, -1) {
		if sqlVocabulary[strings.ToUpper(tok)] {
			continue
		}
		if catalog.HasTable(tok) {
			continue
		}
		customLog.Debugf("Filter: token %q is not a known table (may be a column or alias)", tok)
	}
}
