// Package synth generates synthetic observations for design runs with a
// language model.
//
// A Generator is built around a Client handle supplied by the caller. Each
// design row becomes one completion request; rows run concurrently on a
// bounded worker pool and a failing row is recorded inline instead of
// failing the batch. When no client is configured, or a request asks for
// it, a MockClient produces plausible placeholder values.
package synth
