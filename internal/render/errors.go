package render

import "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"

var (
	// ErrLayouts indicates the page layouts could not be loaded.
	ErrLayouts = errors.RenderError("failed to load page layouts").Build()
	// ErrPageFailed indicates one page could not be rendered.
	ErrPageFailed = errors.RenderError("failed to render page").Build()
	// ErrNoMatchingSource indicates single-file mode matched no node.
	ErrNoMatchingSource = errors.NewError(errors.CategoryNotFound, "no content node uses this source file").Build()
)
