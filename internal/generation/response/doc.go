// Package response turns raw language model output into typed generation
// values. Model output is untrusted: this is the one seam where fences are
// stripped, JSON is parsed and every schema is enforced before anything
// reaches callers.
package response
