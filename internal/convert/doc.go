// Package convert turns content sources into the downloadable formats
// enabled by the capability matrix.
//
// Each (source, target) pair is served by a Converter from a Registry.
// Built-in converters handle copies and the Markdown, notebook and Word
// text conversions; every other pair is delegated to Pandoc. Each attempt
// is recorded as a ConversionResult and a failure never stops the
// remaining conversions.
package convert
