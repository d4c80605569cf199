// Package runtime hosts orchestration sessions.
//
// A Runtime is an in-process actor host with an explicit lifecycle:
//
//	NotStarted --Start--> Running --StopWhenIdle--> Stopping --> Stopped
//
// Invoke starts a session: the task is appended to a fresh conversation log
// as the first message, one actor goroutine with a mailbox is spawned per
// roster agent, and a session loop asks the attached Policy for the next
// step until the policy reports the session is done. The outcome is
// delivered through a single-resolution Result.
//
// Concurrency model:
//   - Exactly one turn is in flight per session; sessions run in parallel
//     and never share a conversation log
//   - Observer notifications are delivered in append order from a dedicated
//     dispatcher goroutine. A full queue stalls a turn for at most
//     ObserverTimeout, and a finishing session waits at most ObserverTimeout
//     for the queue to drain before its Result resolves
//   - StopWhenIdle joins session loops only. An agent or input provider that
//     ignores a cancelled context is abandoned, not waited for
//
// When Options.Transcripts is set, every session is archived as a
// core.Transcript right before its Result resolves.
//
// The runtime knows nothing about group chats or handoffs. Those are
// Policy implementations supplied by the orchestration package.
package runtime
