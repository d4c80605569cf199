// Package core provides the foundational domain types and interfaces used by
// agentcrew. It defines the core abstractions for:
//
//   - Agents (opaque capabilities producing the next message of a conversation)
//   - Messages (immutable, attributed conversation records)
//   - ConversationLog (append-only ordered history owned by one session)
//   - Observers and human input providers (callbacks at the library boundary)
//   - Transcripts and the TranscriptStore contract for resolved sessions
//   - The error taxonomy shared by the orchestration, routing and runtime layers
//
// The package intentionally keeps orchestration policies and concrete agents
// out of scope, exposing small interfaces to keep them pluggable.
package core
