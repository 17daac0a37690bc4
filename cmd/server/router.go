package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/bhasha-api/internal/api"
	apiMiddleware "github.com/phrazzld/bhasha-api/internal/api/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.config.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", apiMiddleware.SessionHeader},
		MaxAge:         300,
	}))
	r.Use(apiMiddleware.TraceMiddleware)

	sessionHandler := api.NewSessionHandler(app.sessions)
	chatHandler := api.NewChatHandler(app.sessions, app.gateway)
	lessonHandler := api.NewLessonHandler(app.sessions, app.gateway)
	vocabularyHandler := api.NewVocabularyHandler(app.sessions, app.gateway)
	healthHandler := api.NewHealthHandler(app.limiter, app.sessions)
	sessionMiddleware := apiMiddleware.NewSessionMiddleware(app.sessions)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// Onboarding (public)
		r.Post("/sessions", sessionHandler.CreateSession)

		// Session-scoped routes
		r.Group(func(r chi.Router) {
			r.Use(sessionMiddleware.RequireSession)

			r.Get("/sessions/me", sessionHandler.GetSession)
			r.Put("/sessions/me/profile", sessionHandler.UpdateProfile)

			// Conversation practice
			r.Post("/chat", chatHandler.SendMessage)
			r.Get("/chat", chatHandler.GetHistory)

			// Lessons
			r.Get("/lessons", lessonHandler.ListLessons)
			r.Post("/lessons/{id}/exercises", lessonHandler.StartLesson)
			r.Post("/lessons/{id}/answers", lessonHandler.SubmitAnswers)

			// Vocabulary
			r.Post("/vocabulary/word", vocabularyHandler.GenerateWord)
			r.Post("/vocabulary/quiz", vocabularyHandler.GenerateQuiz)
			r.Get("/vocabulary/suggestions", vocabularyHandler.Suggestions)
			r.Get("/vocabulary/explanation", vocabularyHandler.Explanation)
		})
	})

	// Health check endpoint
	r.Get("/health", healthHandler.Health)

	return otelhttp.NewHandler(r, "bhasha-api",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}))
}
