package errors

import "maps"

// ErrorCategory groups errors by the pipeline concern that produced them.
type ErrorCategory string

const (
	// CategoryConfig covers configuration loading and user input.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryTOC        ErrorCategory = "toc"
	CategoryNotFound   ErrorCategory = "not_found"

	// CategoryStore covers the relational scratch store.
	CategoryStore ErrorCategory = "store"

	// CategoryBuild and friends cover individual pipeline stages.
	CategoryBuild      ErrorCategory = "build"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryConversion ErrorCategory = "conversion"
	CategoryRender     ErrorCategory = "render"
	CategoryVerify     ErrorCategory = "verify"
	CategorySearch     ErrorCategory = "search"

	// CategoryExternal covers spawned tools and remote services.
	CategoryExternal ErrorCategory = "external"
	CategoryNetwork  ErrorCategory = "network"
	CategoryGit      ErrorCategory = "git"

	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how far an error propagates.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // aborts the build
	SeverityError   ErrorSeverity = "error"   // fails the current item
	SeverityWarning ErrorSeverity = "warning" // degraded, continue
	SeverityInfo    ErrorSeverity = "info"
)

// RetryStrategy hints whether repeating the operation could succeed.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryImmediate  RetryStrategy = "immediate"
	RetryBackoff    RetryStrategy = "backoff"
	RetryUserAction RetryStrategy = "user"
)

// ErrorContext holds structured key/value details attached to an error.
type ErrorContext map[string]any

// Set adds or updates a value, allocating the map when needed.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Get returns a value and whether it was present.
func (c ErrorContext) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c[key]
	return v, ok
}

// GetString returns a string value when present and of string type.
func (c ErrorContext) GetString(key string) (string, bool) {
	v, ok := c.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Merge returns a new context where values from other win.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	if c == nil {
		return other
	}
	if other == nil {
		return c
	}
	out := make(ErrorContext, len(c)+len(other))
	maps.Copy(out, c)
	maps.Copy(out, other)
	return out
}
