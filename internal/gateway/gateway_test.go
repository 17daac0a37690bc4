package gateway_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/phrazzld/bhasha-api/internal/gateway"
	"github.com/phrazzld/bhasha-api/internal/generation"
	"github.com/phrazzld/bhasha-api/internal/generation/prompt"
	"github.com/phrazzld/bhasha-api/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const testModel = "gemini-pro"

const vocabularyJSON = `{
  "word": "पानी",
  "transliteration": "paani",
  "englishMeaning": "water",
  "hindiExample": "मुझे पानी चाहिए।",
  "englishExample": "I need water.",
  "level": "beginner",
  "category": "food"
}`

const quizJSON = "```json\n" + `[
  {"word": "एक", "transliteration": "ek", "correctAnswer": "one", "incorrectOptions": ["two", "three", "four"]},
  {"word": "दो", "transliteration": "do", "correctAnswer": "two", "incorrectOptions": ["one", "three", "four"]},
  {"word": "तीन", "transliteration": "teen", "correctAnswer": "three", "incorrectOptions": ["one", "two", "four"]},
  {"word": "चार", "transliteration": "chaar", "correctAnswer": "four", "incorrectOptions": ["one", "two", "five"]},
  {"word": "पाँच", "transliteration": "paanch", "correctAnswer": "five", "incorrectOptions": ["six", "two", "four"]}
]` + "\n```"

// fakeProvider records every call and answers with a canned response.
type fakeProvider struct {
	mu      sync.Mutex
	prompts []string
	models  []string

	GenerateFn func(ctx context.Context, prompt string) (string, error)
}

func (p *fakeProvider) Generate(ctx context.Context, prompt string, model string) (string, error) {
	p.mu.Lock()
	p.prompts = append(p.prompts, prompt)
	p.models = append(p.models, model)
	p.mu.Unlock()
	return p.GenerateFn(ctx, prompt)
}

func (p *fakeProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

func (p *fakeProvider) LastPrompt() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.prompts) == 0 {
		return ""
	}
	return p.prompts[len(p.prompts)-1]
}

func respondWith(raw string) *fakeProvider {
	return &fakeProvider{
		GenerateFn: func(context.Context, string) (string, error) { return raw, nil },
	}
}

type fixture struct {
	gw       *gateway.Gateway
	limiter  *ratelimit.Window
	recorder *tracetest.SpanRecorder
}

func newFixture(t *testing.T, provider generation.Provider, opts ...gateway.Option) fixture {
	t.Helper()

	templater, err := prompt.New()
	require.NoError(t, err)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	limiter := ratelimit.New(ratelimit.Config{})
	opts = append([]gateway.Option{
		gateway.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		gateway.WithTracer(tp.Tracer("gateway-test")),
	}, opts...)

	gw, err := gateway.New(provider, limiter, templater, testModel, opts...)
	require.NoError(t, err)

	return fixture{gw: gw, limiter: limiter, recorder: recorder}
}

func requireFailed(t *testing.T, err error, cause gateway.Cause) *gateway.GenerationFailedError {
	t.Helper()

	require.ErrorIs(t, err, generation.ErrGenerationFailed)
	var gfe *gateway.GenerationFailedError
	require.ErrorAs(t, err, &gfe)
	assert.Equal(t, cause, gfe.Cause)
	return gfe
}

func TestNew_RequiresDependencies(t *testing.T) {
	t.Parallel()

	templater, err := prompt.New()
	require.NoError(t, err)
	provider := respondWith("")
	limiter := ratelimit.New(ratelimit.Config{})

	tests := []struct {
		name      string
		provider  generation.Provider
		limiter   gateway.Limiter
		templater *prompt.Templater
		model     string
	}{
		{name: "nil provider", limiter: limiter, templater: templater, model: testModel},
		{name: "nil limiter", provider: provider, templater: templater, model: testModel},
		{name: "nil templater", provider: provider, limiter: limiter, model: testModel},
		{name: "empty model", provider: provider, limiter: limiter, templater: templater},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := gateway.New(tc.provider, tc.limiter, tc.templater, tc.model)
			assert.ErrorIs(t, err, generation.ErrConfiguration)
		})
	}
}

func TestGenerateVocabularyWord(t *testing.T) {
	t.Parallel()

	provider := respondWith("```json\n" + vocabularyJSON + "\n```")
	f := newFixture(t, provider)

	word, err := f.gw.GenerateVocabularyWord(context.Background(), "beginner", " food ")

	require.NoError(t, err)
	assert.Equal(t, &generation.VocabularyWord{
		Word:            "पानी",
		Transliteration: "paani",
		EnglishMeaning:  "water",
		HindiExample:    "मुझे पानी चाहिए।",
		EnglishExample:  "I need water.",
		Level:           "beginner",
		Category:        "food",
	}, word)

	assert.Contains(t, provider.LastPrompt(), "Level: beginner")
	assert.Contains(t, provider.LastPrompt(), "Category: food")
	assert.Equal(t, []string{testModel}, provider.models)
	assert.Equal(t, 1, f.limiter.Stats().InWindow)

	spans := f.recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "gateway.vocabulary_word", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestGenerateVocabularyWord_MissingCategory(t *testing.T) {
	t.Parallel()

	raw := strings.Replace(vocabularyJSON, `,
  "category": "food"`, "", 1)
	f := newFixture(t, respondWith(raw))

	word, err := f.gw.GenerateVocabularyWord(context.Background(), "beginner", "food")

	assert.Nil(t, word)
	requireFailed(t, err, gateway.CauseMissingFields)

	var missing *generation.MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"category"}, missing.Fields)

	spans := f.recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "missing_fields", spans[0].Status().Description)
}

func TestInvalidParameters_NoProviderCall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		call func(gw *gateway.Gateway) error
		want []string
	}{
		{
			name: "chat without message",
			call: func(gw *gateway.Gateway) error {
				_, err := gw.ChatResponse(context.Background(), "  ", "Hindi", "beginner")
				return err
			},
			want: []string{"message"},
		},
		{
			name: "exercise without anything",
			call: func(gw *gateway.Gateway) error {
				_, err := gw.GenerateExercise(context.Background(), "", "", "")
				return err
			},
			want: []string{"language", "level", "lessonType"},
		},
		{
			name: "vocabulary without level",
			call: func(gw *gateway.Gateway) error {
				_, err := gw.GenerateVocabularyWord(context.Background(), "", "food")
				return err
			},
			want: []string{"level"},
		},
		{
			name: "quiz without category",
			call: func(gw *gateway.Gateway) error {
				_, err := gw.GenerateQuizQuestions(context.Background(), "beginner", "", 5)
				return err
			},
			want: []string{"category"},
		},
		{
			name: "suggestions without input",
			call: func(gw *gateway.Gateway) error {
				_, err := gw.WordSuggestions(context.Background(), "", "beginner")
				return err
			},
			want: []string{"input"},
		},
		{
			name: "explanation without word",
			call: func(gw *gateway.Gateway) error {
				_, err := gw.WordExplanation(context.Background(), "")
				return err
			},
			want: []string{"word"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			provider := respondWith("unused")
			f := newFixture(t, provider)

			err := tc.call(f.gw)

			require.ErrorIs(t, err, generation.ErrInvalidParameter)
			assert.NotErrorIs(t, err, generation.ErrGenerationFailed)
			var invalid *generation.InvalidParameterError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tc.want, invalid.Params)

			assert.Zero(t, provider.Calls(), "provider must not be called")
			assert.Zero(t, f.limiter.Stats().InWindow, "no rate limit slot should be used")
		})
	}
}

func TestGenerateQuizQuestions(t *testing.T) {
	t.Parallel()

	t.Run("default count keeps order", func(t *testing.T) {
		t.Parallel()

		provider := respondWith(quizJSON)
		f := newFixture(t, provider)

		questions, err := f.gw.GenerateQuizQuestions(context.Background(), "beginner", "numbers", 0)

		require.NoError(t, err)
		require.Len(t, questions, 5)
		for i, want := range []string{"one", "two", "three", "four", "five"} {
			assert.Equal(t, want, questions[i].CorrectAnswer)
			assert.Len(t, questions[i].IncorrectOptions, generation.QuizOptionCount)
			assert.NotContains(t, questions[i].IncorrectOptions, questions[i].CorrectAnswer)
		}
		assert.Contains(t, provider.LastPrompt(), "Generate 5 Hindi vocabulary quiz questions")
	})

	t.Run("object instead of array", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, respondWith(`{"word":"एक","transliteration":"ek","correctAnswer":"one","incorrectOptions":["a","b","c"]}`))

		questions, err := f.gw.GenerateQuizQuestions(context.Background(), "beginner", "numbers", 5)

		assert.Nil(t, questions)
		requireFailed(t, err, gateway.CauseShapeMismatch)
	})

	t.Run("bad distractors", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, respondWith(`[{"word":"एक","transliteration":"ek","correctAnswer":"one","incorrectOptions":["one","b","c"]}]`))

		_, err := f.gw.GenerateQuizQuestions(context.Background(), "beginner", "numbers", 1)

		requireFailed(t, err, gateway.CauseInvalidOptions)
	})

	t.Run("empty array", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, respondWith(`[]`))

		_, err := f.gw.GenerateQuizQuestions(context.Background(), "beginner", "numbers", 5)

		requireFailed(t, err, gateway.CauseResponseFormat)
	})

	t.Run("explicit count reaches the prompt", func(t *testing.T) {
		t.Parallel()

		provider := respondWith(quizJSON)
		f := newFixture(t, provider)

		_, err := f.gw.GenerateQuizQuestions(context.Background(), "beginner", "numbers", 3)

		require.NoError(t, err)
		assert.Contains(t, provider.LastPrompt(), "Generate 3 Hindi vocabulary quiz questions")
	})
}

func TestGenerateExercise_AssignsID(t *testing.T) {
	t.Parallel()

	provider := respondWith(`{"question":"How do you say 'thank you'?","options":["Dhanyavaad","Namaste","Alvida","Haan"],"correctAnswer":"Dhanyavaad"}`)
	f := newFixture(t, provider, gateway.WithIDGenerator(func() string { return "exercise-1" }))

	exercise, err := f.gw.GenerateExercise(context.Background(), "Hindi", "beginner", "vocabulary")

	require.NoError(t, err)
	assert.Equal(t, "exercise-1", exercise.ID)
	assert.Equal(t, "Dhanyavaad", exercise.CorrectAnswer)
	assert.Contains(t, provider.LastPrompt(), "Create a vocabulary exercise for a beginner Hindi student")
}

func TestChatResponse(t *testing.T) {
	t.Parallel()

	provider := respondWith("\n  Bahut accha! \"Main theek hoon\" means \"I am fine\".  \n")
	f := newFixture(t, provider)

	reply, err := f.gw.ChatResponse(context.Background(), "main theek hoon", "Hindi", "beginner")

	require.NoError(t, err)
	assert.Equal(t, `Bahut accha! "Main theek hoon" means "I am fine".`, reply)
	assert.Contains(t, provider.LastPrompt(), "Message: main theek hoon")
}

func TestWordSuggestionsAndExplanation(t *testing.T) {
	t.Parallel()

	suggestions := respondWith(`[{"word":"पानी","transliteration":"paani","englishMeaning":"water"}]`)
	f := newFixture(t, suggestions)

	got, err := f.gw.WordSuggestions(context.Background(), "paa", "beginner")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "water", got[0].EnglishMeaning)
	assert.Contains(t, suggestions.LastPrompt(), `relate to "paa"`)

	explain := newFixture(t, respondWith(`{"etymology":"From Sanskrit","commonMistakes":["Using paani for tea"]}`))
	explanation, err := explain.gw.WordExplanation(context.Background(), "पानी")
	require.NoError(t, err)
	assert.Equal(t, "पानी", explanation.Word)
	assert.Equal(t, "From Sanskrit", explanation.Sections["etymology"])
}

func TestUpstreamFailures(t *testing.T) {
	t.Parallel()

	t.Run("provider error", func(t *testing.T) {
		t.Parallel()

		provider := &fakeProvider{GenerateFn: func(context.Context, string) (string, error) {
			return "", errors.New("connection reset by peer")
		}}
		f := newFixture(t, provider)

		_, err := f.gw.GenerateVocabularyWord(context.Background(), "beginner", "food")

		requireFailed(t, err, gateway.CauseUpstream)
		assert.ErrorIs(t, err, generation.ErrUpstream)
	})

	t.Run("unparseable text", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, respondWith("Here is your word: पानी (water)"))

		_, err := f.gw.GenerateVocabularyWord(context.Background(), "beginner", "food")

		requireFailed(t, err, gateway.CauseResponseFormat)
		assert.ErrorIs(t, err, generation.ErrResponseFormat)
	})

	t.Run("empty chat reply", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, respondWith("   "))

		_, err := f.gw.ChatResponse(context.Background(), "namaste", "Hindi", "beginner")

		requireFailed(t, err, gateway.CauseResponseFormat)
	})
}

func TestRateLimitWaitCancelled(t *testing.T) {
	t.Parallel()

	provider := respondWith(vocabularyJSON)
	f := newFixture(t, provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.gw.GenerateVocabularyWord(ctx, "beginner", "food")

	requireFailed(t, err, gateway.CauseRateLimitWaitCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, provider.Calls())
	assert.Zero(t, f.limiter.Stats().InWindow)
}

func TestGenerationFailedError_Message(t *testing.T) {
	t.Parallel()

	err := &gateway.GenerationFailedError{
		Kind:  generation.KindQuizQuestionSet,
		Cause: gateway.CauseShapeMismatch,
		Err:   &generation.ShapeMismatchError{Expected: "array", Got: "object"},
	}

	assert.Equal(t, "generation failed: quiz_question_set (shape_mismatch): expected JSON array, got object", err.Error())
	assert.ErrorIs(t, err, generation.ErrGenerationFailed)
	assert.ErrorIs(t, err, generation.ErrValidation)
}
