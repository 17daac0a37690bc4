// Package openai provides a generation.Provider backed by the OpenAI chat
// completions API or any endpoint that speaks the same protocol.
package openai
