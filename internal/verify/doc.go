// Package verify runs accessibility checks over rendered pages, stores the
// results and stamps each page with a WCAG badge.
//
// Two checkers are available: Pa11yChecker shells out to the pa11y CLI and
// BuiltinChecker performs a small set of structural checks in process. A
// failing checker is recorded as a result with a failure message; it never
// stops the remaining pages from being checked.
package verify
