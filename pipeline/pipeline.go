// Package pipeline runs the full NL-to-answer compilation for one request:
// text -> ExtractedIntent -> QueryPlan -> (GraphQL string, graph query
// string) -> executed rows -> natural-language answer.
//
// Control flow is strictly linear and synchronous per request. No component
// retains state across requests except the read-only ontology registry, so
// any number of requests can run concurrently.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/c360/semquery/cypher"
	"github.com/c360/semquery/errors"
	"github.com/c360/semquery/format"
	"github.com/c360/semquery/gql"
	"github.com/c360/semquery/graph"
	"github.com/c360/semquery/intent"
	"github.com/c360/semquery/metric"
	"github.com/c360/semquery/ontology"
	"github.com/c360/semquery/planner"
)

// State is the pipeline state machine position a request terminated in:
// Received -> Extracted -> Planned -> Generated -> Executed -> Formatted,
// with Rejected reachable from Extracted, Planned and Executed. No state is
// revisited; the pipeline never retries a stage (the executor's single
// transport retry lives below this level).
type State string

const (
	StateReceived  State = "received"
	StateExtracted State = "extracted"
	StatePlanned   State = "planned"
	StateGenerated State = "generated"
	StateExecuted  State = "executed"
	StateFormatted State = "formatted"
	StateRejected  State = "rejected"
)

// Request is one natural-language question. Entity and Kind optionally
// override extraction when the caller already knows what it wants.
type Request struct {
	Text     string
	Language ontology.Language
	Entity   string
	Kind     intent.Kind
}

// Answer is the pipeline output: the natural-language text plus the
// intermediate representations for debugging and observability.
type Answer struct {
	Text     string
	GraphQL  string
	Cypher   string
	Plan     string
	RowCount int

	RequestID string
	State     State
}

// Options configures the pipeline.
type Options struct {
	// DefaultLimit bounds QUERY_LIST results (default: planner.DefaultLimit).
	DefaultLimit int

	// DefaultLanguage applies when a request carries no language tag
	// (default: Norwegian).
	DefaultLanguage ontology.Language

	Logger  *slog.Logger
	Metrics *metric.Metrics
}

// Pipeline compiles and answers natural-language questions.
type Pipeline struct {
	registry  *ontology.Registry
	extractor *intent.Extractor
	planner   *planner.Planner
	generator *gql.Generator
	resolver  *cypher.Resolver
	executor  graph.Executor
	formatter *format.Formatter

	defaultLanguage ontology.Language
	logger          *slog.Logger
	metrics         *metric.Metrics
}

// New assembles a pipeline. The extractor's fallback hook is wired to the
// model-fallback metric when metrics are provided.
func New(reg *ontology.Registry, extractor *intent.Extractor, executor graph.Executor, opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metric.NewMetrics()
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = ontology.LanguageNorwegian
	}
	extractor.FallbackHook = opts.Metrics.RecordModelFallback

	return &Pipeline{
		registry:        reg,
		extractor:       extractor,
		planner:         planner.New(reg, opts.DefaultLimit),
		generator:       gql.New(),
		resolver:        cypher.New(reg),
		executor:        executor,
		formatter:       format.New(),
		defaultLanguage: opts.DefaultLanguage,
		logger:          opts.Logger.With("component", "Pipeline"),
		metrics:         opts.Metrics,
	}
}

// Ask answers a plain text question in the given language.
func (p *Pipeline) Ask(ctx context.Context, text string, lang ontology.Language) (*Answer, error) {
	return p.Do(ctx, Request{Text: text, Language: lang})
}

// Do runs the full pipeline for one request. On rejection the returned
// Answer still carries a user-facing clarifying message in the request's
// language, alongside the error for the caller.
func (p *Pipeline) Do(ctx context.Context, req Request) (*Answer, error) {
	id := uuid.NewString()
	lang := req.Language
	if lang == "" {
		lang = p.defaultLanguage
	}

	log := p.logger.With("request_id", id, "language", string(lang))
	log.Info("request received", "text", req.Text)

	// Extract
	start := time.Now()
	in, err := p.extractor.Extract(ctx, req.Text, lang)
	p.metrics.RecordStageDuration(string(errors.StageExtract), time.Since(start))
	if err != nil {
		return p.reject(log, id, lang, errors.StageExtract, err)
	}
	if err := p.applyOverrides(&in, req); err != nil {
		return p.reject(log, id, lang, errors.StageExtract, err)
	}
	if in.Confidence == 0 {
		err := errors.NewStageError(errors.StageExtract, errors.ErrAmbiguousIntent, "", "")
		return p.reject(log, id, lang, errors.StageExtract, err)
	}
	log.Debug("intent extracted", "kind", string(in.Kind), "entity", in.Entity, "confidence", in.Confidence)

	// Plan
	start = time.Now()
	plan, err := p.planner.Plan(in)
	p.metrics.RecordStageDuration(string(errors.StagePlan), time.Since(start))
	if err != nil {
		return p.reject(log, id, lang, errors.StagePlan, err)
	}

	// Generate both query strings from the same plan.
	start = time.Now()
	gqlDoc, err := p.generator.Generate(plan)
	if err != nil {
		return p.reject(log, id, lang, errors.StageGenerate, err)
	}
	cypherQuery, err := p.resolver.Resolve(plan)
	p.metrics.RecordStageDuration(string(errors.StageGenerate), time.Since(start))
	if err != nil {
		return p.reject(log, id, lang, errors.StageGenerate, err)
	}

	// Execute
	start = time.Now()
	rows, err := p.executor.Execute(ctx, cypherQuery)
	p.metrics.RecordStageDuration(string(errors.StageExecute), time.Since(start))
	if err != nil {
		answer, rejErr := p.reject(log, id, lang, errors.StageExecute, err)
		answer.GraphQL = gqlDoc
		answer.Cypher = cypherQuery
		answer.Plan = plan.Describe()
		return answer, rejErr
	}
	p.metrics.RecordRows(len(rows))

	// Format
	start = time.Now()
	text := p.formatter.Format(plan, rows, lang)
	p.metrics.RecordStageDuration(string(errors.StageFormat), time.Since(start))

	p.metrics.RecordRequest("formatted", string(lang))
	log.Info("request answered", "rows", len(rows), "kind", string(plan.Op), "entity", plan.Entity.Name)

	return &Answer{
		Text:      text,
		GraphQL:   gqlDoc,
		Cypher:    cypherQuery,
		Plan:      plan.Describe(),
		RowCount:  len(rows),
		RequestID: id,
		State:     StateFormatted,
	}, nil
}

// applyOverrides lets a caller pin the entity or operation kind explicitly,
// bypassing extraction confidence for the overridden part.
func (p *Pipeline) applyOverrides(in *intent.ExtractedIntent, req Request) error {
	if req.Entity != "" {
		e, err := p.registry.ResolveEntity(req.Entity)
		if err != nil {
			return err
		}
		in.Entity = e.Name
		in.Confidence = 1.0
	}
	if req.Kind != "" && req.Kind != intent.KindUnknown {
		in.Kind = req.Kind
	}
	return nil
}

func (p *Pipeline) reject(log *slog.Logger, id string, lang ontology.Language, stage errors.Stage, err error) (*Answer, error) {
	log.Warn("request rejected", "stage", string(stage), "error", err)
	p.metrics.RecordReject(string(stage))
	p.metrics.RecordRequest("rejected", string(lang))

	return &Answer{
		Text:      errors.UserMessage(err, string(lang)),
		RequestID: id,
		State:     StateRejected,
	}, err
}
