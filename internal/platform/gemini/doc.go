// Package gemini provides an implementation of the generation.Provider interface
// backed by Google's Gemini API.
//
// This package is an infrastructure adapter: it translates a rendered prompt into a
// single GenerateContent call and classifies failures as generation.ErrUpstream.
// Prompt construction and response validation live in the generation packages, so
// the adapter only ever returns raw model text.
//
// The package depends on the google.golang.org/genai client library for
// communicating with the Gemini API.
package gemini
