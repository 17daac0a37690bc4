// Package ratelimit bounds the rate of outbound language model requests with
// a sliding-window log: at most Limit requests are accepted in any trailing
// Window. One Window is built per process and shared by every caller, so all
// generation kinds draw from the same budget.
package ratelimit
