// Package generation defines the shared vocabulary of the content generation
// pipeline: the request kinds the application can ask an LLM for, the typed
// values each kind produces (vocabulary words, quiz questions, exercises,
// word suggestions and explanations), the Provider port implemented by the
// Gemini and OpenAI adapters, and the error taxonomy used at every seam.
//
// The package has no behaviour of its own beyond small helpers; prompt
// construction lives in generation/prompt and response checking in
// generation/response.
package generation
