// Package logging provides a tiny abstraction over slog so orchestration code
// can depend on a minimal interface (Logger) while applications plug in any
// structured logger.
//
// Use NoOpLogger (the default everywhere) to silence output, NewSlogAdapter to
// wrap an existing *slog.Logger, or NewLogger for a CrewLogger that carries
// component / session context and offers turn, handoff and session helpers.
package logging
