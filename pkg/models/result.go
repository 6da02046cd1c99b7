// Package models defines the analysis result types shared across
// analyzers, output formatting, and caching.
package models

// FileResult is the discriminated success/failure header embedded in
// every per-file analysis result. On failure Error is non-empty and all
// result tables are empty: analyses are all-or-nothing at file
// granularity.
type FileResult struct {
	Path    string `json:"path"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Failed reports whether the analysis produced no usable tables.
func (r FileResult) Failed() bool {
	return !r.Success
}
