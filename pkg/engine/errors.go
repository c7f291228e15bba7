package engine

import "errors"

// Error taxonomy (§7). UnsupportedConstruct and UndefinedRead are
// surfaced from pkg/translate and pkg/env respectively and re-wrapped
// here so callers can errors.Is against a single package's sentinels;
// MalformedInput is raised at Scheduler construction.
var (
	ErrUnsupportedConstruct = errors.New("engine: unsupported construct")
	ErrUndefinedRead        = errors.New("engine: undefined read")
	ErrMalformedInput       = errors.New("engine: malformed input")
)
