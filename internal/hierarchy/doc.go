// Package hierarchy turns the nested table of contents into a flat,
// deterministic set of content nodes and answers closure queries over the
// resulting parent links.
//
// Output path policy for a node backed by a file, in priority order:
//
//	content/index.md, content/_index.md   -> index.html
//	content/<base>.md                     -> <base>/index.html
//	<dir>/<dir>.md                        -> <effective slug>/index.html
//	anything else                         -> <effective slug>/<base>.html
//
// Sections without a file always land on <slug>/index.html and are marked
// auto-built. The effective slug is the node's own slug, else the slug
// inherited from the nearest ancestor, else one derived from the source
// directory or title.
package hierarchy
