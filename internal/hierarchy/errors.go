package hierarchy

import "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"

var (
	// ErrEmptyTOC is returned when the table of contents has no entries.
	ErrEmptyTOC = errors.TOCError("table of contents has no entries").Build()
	// ErrNoPlaceableEntries is returned when no entry names a file or children.
	ErrNoPlaceableEntries = errors.TOCError("table of contents has no entries with a file or children").Build()
)
