// Package errors provides classified errors for the site build pipeline.
//
// Every stage reports failures as a ClassifiedError so the CLI can pick an
// exit code and the pipeline can tell a fatal failure (bad configuration,
// malformed table of contents, store commit failure) from a per-item one
// (a single conversion or accessibility check) that is logged and skipped.
//
//	err := errors.WrapError(cause, errors.CategoryStore, "commit content").
//		Fatal().
//		WithContext("nodes", len(nodes)).
//		Build()
package errors
