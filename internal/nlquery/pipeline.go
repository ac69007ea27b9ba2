// internal/nlquery/pipeline.go
package nlquery

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/smartquery/text2sql-backend/internal/completion"
	"github.com/smartquery/text2sql-backend/internal/domain"
	"github.com/smartquery/text2sql-backend/internal/schema"
)

// ErrNotConfigured is returned while no engine has been installed yet.
var ErrNotConfigured = errors.New("query engine not configured")

// Completer is the completion collaborator: prompt in, raw model text out.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Executor is the database collaborator: approved SQL in, headers and row
// records out.
type Executor interface {
	Query(ctx context.Context, sqlText string) ([]string, []map[string]any, error)
}

// Engine bundles the swappable per-connection state: the executor over the
// target database and the schema catalog reflected from it. Replaced
// wholesale on reconnect so readers see either the old or the new pair,
// never a mix.
type Engine struct {
	Executor Executor
	Catalog  *schema.Catalog
}

// OutcomeKind tags a query outcome.
type OutcomeKind int

const (
	// OutcomeRows: the statement passed filter and scoper and executed.
	OutcomeRows OutcomeKind = iota
	// OutcomeSuggestion: generation/validation/execution failed but the
	// suggestion fallback produced guidance text.
	OutcomeSuggestion
	// OutcomeRejected: policy rejection, no fallback.
	OutcomeRejected
	// OutcomeFailed: hard failure, fallback included.
	OutcomeFailed
)

// Outcome is the single tagged result a query request produces.
type Outcome struct {
	Kind       OutcomeKind
	SQL        string
	Headers    []string
	Records    []map[string]any
	Suggestion string
	Err        error
}

// Pipeline orchestrates one natural-language query: compose, complete,
// validate, authorize, execute, and degrade to a suggestion on failure.
// Stateless across requests apart from the shared engine pointer.
type Pipeline struct {
	completer      Completer
	filter         *Filter
	scoper         *Scoper
	queryTmpl      string
	suggestionTmpl string
	attempts       int

	engine atomic.Pointer[Engine]
}

// NewPipeline wires the pipeline. attempts is the number of generation
// calls before falling back to a suggestion; values below 1 are clamped.
func NewPipeline(completer Completer, scoper *Scoper, queryTmpl, suggestionTmpl string, attempts int) *Pipeline {
	if attempts < 1 {
		attempts = 1
	}
	return &Pipeline{
		completer:      completer,
		filter:         NewFilter(),
		scoper:         scoper,
		queryTmpl:      queryTmpl,
		suggestionTmpl: suggestionTmpl,
		attempts:       attempts,
	}
}

// Swap atomically installs a new engine. The previous engine keeps serving
// requests that already loaded it.
func (p *Pipeline) Swap(e *Engine) *Engine {
	return p.engine.Swap(e)
}

// Engine returns the currently installed engine, or nil before the first
// Swap.
func (p *Pipeline) Engine() *Engine {
	return p.engine.Load()
}

// Run executes one request. Per the policy contract: unrecognized levels
// are rejected before any outbound call; a scoper rejection terminates with
// no suggestion; every other failure gets exactly one suggestion attempt
// and surfaces the original error if that also fails.
func (p *Pipeline) Run(ctx context.Context, sentence string, level domain.PermissionLevel) Outcome {
	if !level.Recognized() {
		customLog.Warnf("Pipeline: rejecting unrecognized permission level %d", level)
		return Outcome{Kind: OutcomeRejected, Err: ErrInsufficientPermission}
	}

	eng := p.engine.Load()
	if eng == nil {
		return Outcome{Kind: OutcomeFailed, Err: ErrNotConfigured}
	}

	prompt := ComposeQuery(p.queryTmpl, eng.Catalog, sentence)
	var raw string
	var genErr error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		raw, genErr = p.completer.Complete(ctx, prompt)
		if genErr == nil {
			break
		}
		customLog.Warnf("Pipeline: generation attempt %d/%d failed: %v", attempt, p.attempts, genErr)
	}
	if genErr != nil {
		return p.suggest(ctx, eng, sentence, genErr)
	}

	sqlText := completion.CleanSQL(raw, eng.Catalog.TableNames())
	customLog.Printf("Pipeline: candidate SQL: %s", sqlText)

	if err := p.filter.Validate(sqlText, eng.Catalog); err != nil {
		// A filter rejection is treated as a failed generation, not an
		// immediate error, and never triggers regeneration.
		customLog.Warnf("Pipeline: safety filter rejected candidate: %v", err)
		return p.suggest(ctx, eng, sentence, err)
	}

	if err := p.scoper.Authorize(sqlText, level); err != nil {
		customLog.Warnf("Pipeline: permission scoper rejected statement for level %d", level)
		return Outcome{Kind: OutcomeRejected, SQL: sqlText, Err: err}
	}

	headers, records, err := eng.Executor.Query(ctx, sqlText)
	if err != nil {
		customLog.Warnf("Pipeline: execution failed: %v", err)
		return p.suggest(ctx, eng, sentence, err)
	}

	return Outcome{Kind: OutcomeRows, SQL: sqlText, Headers: headers, Records: records}
}

// suggest makes the single fallback completion call. On success the
// suggestion text replaces tabular data; on failure the original cause is
// reported, not the suggestion failure.
func (p *Pipeline) suggest(ctx context.Context, eng *Engine, sentence string, cause error) Outcome {
	prompt := ComposeSuggestion(p.suggestionTmpl, eng.Catalog, sentence)
	text, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		customLog.Warnf("Pipeline: suggestion fallback also failed: %v", err)
		return Outcome{Kind: OutcomeFailed, Err: cause}
	}
	return Outcome{Kind: OutcomeSuggestion, Suggestion: text, Err: cause}
}
