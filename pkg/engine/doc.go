// Package engine is the model handler of the playground. It owns the
// configuration, filters the model catalog down to providers with API keys,
// keeps one lazily created client per provider and turns a rendered prompt
// into a word-limited response or a displayable error string.
//
// Every provider client is wrapped in a middleware chain (Logger, Instrument,
// Recovery and an optional Timeout) so that adapter failures, including
// panics, surface as GenerationResult errors instead of crashing the caller.
package engine
