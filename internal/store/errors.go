package store

import "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"

var (
	// ErrOpenFailed indicates the SQLite database could not be opened.
	ErrOpenFailed = errors.StoreError("could not open content database").Build()
	// ErrSchemaFailed indicates the schema could not be dropped or created.
	ErrSchemaFailed = errors.StoreError("failed to recreate content schema").Build()
	// ErrCommitFailed indicates a write transaction could not be committed.
	ErrCommitFailed = errors.StoreError("failed to commit content database transaction").Build()
	// ErrQueryFailed indicates a read query failed.
	ErrQueryFailed = errors.StoreError("failed to query content database").Build()
	// ErrNotFound indicates no row matched.
	ErrNotFound = errors.NewError(errors.CategoryNotFound, "content node not found").Build()
)
