package analyzer

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vidstats/vidstats/internal/models"
	"github.com/vidstats/vidstats/internal/observability"
	"github.com/vidstats/vidstats/internal/security"
)

// FallbackAnswer is the only failure text end users ever see. The
// classified reason stays in operator logs and the GenerationResult
// error fields.
const FallbackAnswer = "Could not process this request. Try rephrasing the question."

// QueryGenerator produces one free-text completion for a rendered prompt.
type QueryGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// QueryExecutor runs one validated read query and returns the first
// column of the first row, or nil when the result set is empty.
type QueryExecutor interface {
	QueryScalar(ctx context.Context, query string) (any, error)
}

// Analyzer is the question-to-answer pipeline. All questions are
// serialized behind one gate: at most one completion call and its
// dependent execution are in flight at any time, process-wide.
type Analyzer struct {
	mu        sync.Mutex
	prompt    string
	generator QueryGenerator
	executor  QueryExecutor
	questions *security.QuestionValidator
	sqlGuard  *security.SQLValidator
	audit     *security.AuditLogger
}

// NewAnalyzer wires the pipeline around a schema snapshot. The prompt
// template is rendered here once and never rebuilt; a reshaped store
// requires a restart to be picked up.
func NewAnalyzer(
	schema models.Schema,
	generator QueryGenerator,
	executor QueryExecutor,
	questions *security.QuestionValidator,
	sqlGuard *security.SQLValidator,
	audit *security.AuditLogger,
) *Analyzer {
	return &Analyzer{
		prompt:    BuildSystemPrompt(schema),
		generator: generator,
		executor:  executor,
		questions: questions,
		sqlGuard:  sqlGuard,
		audit:     audit,
	}
}

// Prompt returns the rendered template, placeholder included.
func (a *Analyzer) Prompt() string {
	return a.prompt
}

// AnswerQuestion runs one question through the pipeline: validate,
// render, complete, parse, guard, execute, format. Concurrent callers
// queue behind the gate. Every failure is terminal for its question,
// nothing is retried, and no error escapes as a Go error: failures come
// back as a GenerationResult carrying the uniform fallback answer.
func (a *Analyzer) AnswerQuestion(ctx context.Context, question string) models.GenerationResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := time.Now()
	log.Info().Str("question", truncate(question, 200)).Msg("question received")

	if r := a.questions.Validate(question); !r.Valid {
		return a.fail(question, "", start, NewError(KindQuestionRejected, r.Message))
	}

	prompt := strings.ReplaceAll(a.prompt, QuestionPlaceholder, question)

	genStart := time.Now()
	completion, err := a.generator.Complete(ctx, prompt)
	if err != nil {
		return a.fail(question, "", start, Wrap(err, KindGeneration, "completion failed"))
	}
	observability.ObserveGeneration(time.Since(genStart))

	parsed, err := ParseResponse(completion)
	if err != nil {
		return a.fail(question, "", start, err)
	}

	if msg := a.sqlGuard.Validate(parsed.SQLQuery); msg != "" {
		return a.fail(question, parsed.SQLQuery, start, Errorf(KindUnsafeStatement, "statement rejected: %s", msg))
	}

	execStart := time.Now()
	raw, err := a.executor.QueryScalar(ctx, parsed.SQLQuery)
	if err != nil {
		return a.fail(question, parsed.SQLQuery, start,
			Wrap(err, KindExecution, "execution failed for statement "+truncate(parsed.SQLQuery, 300)))
	}
	observability.ObserveExecution(time.Since(execStart))

	answer := FormatAnswer(raw)
	elapsed := time.Since(start)

	log.Info().
		Str("sql", parsed.SQLQuery).
		Str("answer", answer).
		Int64("elapsed_ms", elapsed.Milliseconds()).
		Msg("question answered")
	observability.ObserveQuestion("success", elapsed)
	a.audit.LogQuestion(question, parsed.SQLQuery, true, "", elapsed.Milliseconds())

	return models.GenerationResult{
		Success:         true,
		SQLQuery:        parsed.SQLQuery,
		SuggestedAnswer: parsed.SuggestedAnswer,
		ActualResult:    raw,
		FinalAnswer:     answer,
		ElapsedMs:       elapsed.Milliseconds(),
	}
}

// fail converts a classified stage error into the terminal failure
// result. Operator detail goes to logs and the result's error fields;
// the user-visible text is always FallbackAnswer.
func (a *Analyzer) fail(question, sqlQuery string, start time.Time, err error) models.GenerationResult {
	kind := KindOf(err)
	if kind == "" {
		kind = KindGeneration
	}
	elapsed := time.Since(start)

	log.Error().
		Err(err).
		Str("kind", string(kind)).
		Str("question", truncate(question, 200)).
		Msg("question failed")
	observability.ObserveQuestion(string(kind), elapsed)
	a.audit.LogQuestion(question, sqlQuery, false, string(kind), elapsed.Milliseconds())

	return models.GenerationResult{
		Success:      false,
		SQLQuery:     sqlQuery,
		FinalAnswer:  FallbackAnswer,
		ErrorKind:    string(kind),
		ErrorMessage: err.Error(),
		ElapsedMs:    elapsed.Milliseconds(),
	}
}
