// Package services orchestrates the analysis engines for the transport layer.
//
// Each service wraps one engine (doe, estimation, spc, synth) with the
// cross-cutting concerns the engines leave out: request limits from
// configuration, a tracing span per call, business metrics and structured
// logs. The engines stay pure; services hold no per-request state and are
// safe for concurrent use.
//
// Services return engine sentinel errors unchanged (wrapped with %w) so the
// HTTP layer can map them to problem responses with errors.Is.
package services
