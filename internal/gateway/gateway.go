package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/phrazzld/bhasha-api/internal/generation"
	"github.com/phrazzld/bhasha-api/internal/generation/prompt"
	"github.com/phrazzld/bhasha-api/internal/generation/response"
	"github.com/phrazzld/bhasha-api/internal/redact"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/phrazzld/bhasha-api/internal/gateway"

// Limiter bounds outbound requests. *ratelimit.Window satisfies it.
type Limiter interface {
	Acquire(ctx context.Context) error
}

// Option customises a Gateway.
type Option func(*Gateway)

// WithLogger sets the gateway's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithTracer replaces the global tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(g *Gateway) {
		g.tracer = tracer
	}
}

// WithIDGenerator replaces the uuid generator used for exercise IDs.
func WithIDGenerator(newID func() string) Option {
	return func(g *Gateway) {
		g.newID = newID
	}
}

// Gateway turns typed generation requests into validated content. It is
// safe for concurrent use; all callers share one limiter.
type Gateway struct {
	provider  generation.Provider
	limiter   Limiter
	templater *prompt.Templater
	model     string

	logger   *slog.Logger
	tracer   trace.Tracer
	validate *validator.Validate
	newID    func() string
}

// New creates a Gateway. model is passed to the provider on every call.
func New(
	provider generation.Provider,
	limiter Limiter,
	templater *prompt.Templater,
	model string,
	opts ...Option,
) (*Gateway, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: provider cannot be nil", generation.ErrConfiguration)
	}
	if limiter == nil {
		return nil, fmt.Errorf("%w: limiter cannot be nil", generation.ErrConfiguration)
	}
	if templater == nil {
		return nil, fmt.Errorf("%w: templater cannot be nil", generation.ErrConfiguration)
	}
	if model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrConfiguration)
	}

	g := &Gateway{
		provider:  provider,
		limiter:   limiter,
		templater: templater,
		model:     model,
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
		validate:  newValidator(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With(slog.String("component", "gateway"))

	return g, nil
}

// ChatResponse returns the tutor's reply to a learner message.
func (g *Gateway) ChatResponse(ctx context.Context, message, language, level string) (string, error) {
	p := chatParams{Message: clean(message), Language: clean(language), Level: clean(level)}
	return run(ctx, g, generation.KindChatReply, p,
		prompt.Params{Message: p.Message, Language: p.Language, Level: p.Level},
		response.ChatReply)
}

// GenerateExercise returns one multiple-choice exercise with a fresh ID.
func (g *Gateway) GenerateExercise(ctx context.Context, language, level, lessonType string) (*generation.Exercise, error) {
	p := exerciseParams{Language: clean(language), Level: clean(level), LessonType: clean(lessonType)}
	exercise, err := run(ctx, g, generation.KindExercise, p,
		prompt.Params{Language: p.Language, Level: p.Level, LessonType: p.LessonType},
		response.Exercise)
	if err != nil {
		return nil, err
	}

	exercise.ID = g.newID()
	return exercise, nil
}

// GenerateVocabularyWord returns a word with all seven fields populated.
func (g *Gateway) GenerateVocabularyWord(ctx context.Context, level, category string) (*generation.VocabularyWord, error) {
	p := vocabularyParams{Level: clean(level), Category: clean(category)}
	return run(ctx, g, generation.KindVocabularyWord, p,
		prompt.Params{Level: p.Level, Category: p.Category},
		response.VocabularyWord)
}

// GenerateQuizQuestions returns quiz questions in the order the model
// produced them. A count of zero or less requests prompt.DefaultCount.
func (g *Gateway) GenerateQuizQuestions(
	ctx context.Context,
	level, category string,
	count int,
) ([]generation.QuizQuestion, error) {
	if count <= 0 {
		count = prompt.DefaultCount
	}

	p := quizParams{Level: clean(level), Category: clean(category), Count: count}
	questions, err := run(ctx, g, generation.KindQuizQuestionSet, p,
		prompt.Params{Level: p.Level, Category: p.Category, Count: count},
		response.QuizQuestions)
	if err != nil {
		return nil, err
	}

	if len(questions) == 0 {
		return nil, g.failed(ctx, generation.KindQuizQuestionSet,
			fmt.Errorf("%w: empty question set", generation.ErrResponseFormat))
	}
	if len(questions) != count {
		g.logger.WarnContext(ctx, "quiz question count differs from request",
			"requested", count,
			"received", len(questions))
	}

	return questions, nil
}

// WordSuggestions returns vocabulary hints for partial learner input.
func (g *Gateway) WordSuggestions(ctx context.Context, input, level string) ([]generation.WordSuggestion, error) {
	p := suggestionParams{Input: clean(input), Level: clean(level)}
	return run(ctx, g, generation.KindWordSuggestions, p,
		prompt.Params{Input: p.Input, Level: p.Level, Count: prompt.DefaultCount},
		response.WordSuggestions)
}

// WordExplanation returns a free-form explanation of word.
func (g *Gateway) WordExplanation(ctx context.Context, word string) (*generation.WordExplanation, error) {
	p := explanationParams{Word: clean(word)}
	return run(ctx, g, generation.KindWordExplanation, p,
		prompt.Params{Word: p.Word},
		func(raw string) (*generation.WordExplanation, error) {
			return response.WordExplanation(raw, p.Word)
		})
}

// run is the shared pipeline: params, prompt, limiter, provider, validator.
func run[T any](
	ctx context.Context,
	g *Gateway,
	kind generation.Kind,
	params any,
	promptParams prompt.Params,
	parse func(raw string) (T, error),
) (T, error) {
	var zero T

	ctx, span := g.tracer.Start(ctx, "gateway."+string(kind),
		trace.WithAttributes(
			attribute.String("generation.kind", string(kind)),
			attribute.String("llm.model", g.model),
		))
	defer span.End()

	if err := g.checkParams(params); err != nil {
		g.logger.DebugContext(ctx, "rejected generation request", "kind", kind, "error", err)
		span.SetStatus(codes.Error, "invalid parameter")
		return zero, err
	}

	text, err := g.templater.Build(kind, promptParams)
	if err != nil {
		g.logger.ErrorContext(ctx, "failed to build prompt", "kind", kind, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "prompt")
		return zero, err
	}

	waitStart := time.Now()
	if err := g.limiter.Acquire(ctx); err != nil {
		return zero, g.failed(ctx, kind, err)
	}
	span.SetAttributes(attribute.Int64("ratelimit.wait_ms", time.Since(waitStart).Milliseconds()))

	callStart := time.Now()
	raw, err := g.provider.Generate(ctx, text, g.model)
	if err != nil {
		if !errors.Is(err, generation.ErrUpstream) {
			err = fmt.Errorf("%w: %w", generation.ErrUpstream, err)
		}
		return zero, g.failed(ctx, kind, err)
	}

	value, err := parse(raw)
	if err != nil {
		return zero, g.failed(ctx, kind, err)
	}

	g.logger.InfoContext(ctx, "generation request completed",
		"kind", kind,
		"model", g.model,
		"duration_ms", time.Since(callStart).Milliseconds(),
		"response_length", len(raw))

	return value, nil
}

// failed logs err, marks the active span and wraps err as a
// GenerationFailedError.
func (g *Gateway) failed(ctx context.Context, kind generation.Kind, err error) error {
	gfe := fail(kind, err)

	g.logger.WarnContext(ctx, "generation request failed",
		"kind", kind,
		"cause", string(gfe.Cause),
		"error", redact.Error(err))

	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetAttributes(attribute.String("generation.cause", string(gfe.Cause)))
	span.SetStatus(codes.Error, string(gfe.Cause))

	return gfe
}
