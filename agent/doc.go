// Package agent contains the concrete conversation participants used with the
// orchestration engine. The package focuses on three concerns:
//
//  1. Identity plumbing shared by all agents (BaseAgent)
//  2. Model-centric conversational / tool-calling agent (ModelAgent)
//  3. Deterministic participants for tests and demos (ScriptedAgent, FuncAgent)
//
// Every agent implements core.Agent. The engine calls Respond once per turn
// with a read-only core.Turn; the agent returns exactly one message that the
// engine appends to the conversation log. Handoff and completion requests are
// expressed as structured directives on that message (core.Transfer,
// core.Completion) and are validated by the orchestration, never by the agent.
//
// Agents hold no per-session state, so a single instance may take part in
// several sessions concurrently.
package agent
