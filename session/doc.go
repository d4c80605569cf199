// Package session houses TranscriptStore implementations. The interface and
// the Transcript struct live in the core package so the runtime depends on the
// contract only; wiring code decides which backend to instantiate.
package session
