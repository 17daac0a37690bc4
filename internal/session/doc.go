// Package session keeps learner state in process memory: the onboarding
// profile, the practice chat history and lesson progress.
//
// Nothing is persisted. Sessions idle for longer than the configured TTL are
// dropped by Sweep, which the server calls from a ticker.
package session
