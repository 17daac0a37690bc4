// Package prompt renders the text prompt sent to the language model for each
// generation kind. Templates come from a YAML catalog embedded in the binary;
// operators can replace it with a file of the same shape.
package prompt
