// Package api handles incoming HTTP requests, request validation and
// response formatting. It adapts the learner-facing JSON API to the session
// store and the generation gateway, translating their errors into HTTP
// status codes without leaking upstream details.
package api
