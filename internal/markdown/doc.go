// Package markdown wraps goldmark for the site build: HTML rendering with
// highlighted code, ARIA roles and flattened image paths, link extraction
// for the asset scan, and plain text extraction for conversions and search.
package markdown
