package assets

import "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"

var (
	// ErrMirrorFailed indicates the build tree could not be populated.
	ErrMirrorFailed = errors.FileSystemError("failed to mirror content into build directory").Build()
	// ErrSourceUnreadable indicates a referenced source could not be read.
	ErrSourceUnreadable = errors.FileSystemError("content source is missing or unreadable").Build()
)
