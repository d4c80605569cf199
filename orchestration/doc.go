// Package orchestration binds a roster of agents and a control policy into a
// single invocable unit.
//
// Two orchestrations are provided:
//
//   - GroupChat: a groupchat.Manager selects the speakers (round-robin by
//     default) until it declares termination
//   - Handoff: the active agent keeps the floor until it transfers to
//     another agent along an edge of the handoff graph, completes the task,
//     or yields to the human input provider
//
// Configuration errors are returned by the constructors. Invoke starts a
// session on a running runtime.Runtime and returns its runtime.Result.
//
//	chat, err := orchestration.NewGroupChat([]core.Agent{writer, reviewer}, manager)
//	if err != nil {
//		return err
//	}
//	res, err := chat.Invoke(ctx, "Create a slogan for a new electric SUV.", rt)
//	if err != nil {
//		return err
//	}
//	out, err := res.Get(ctx)
package orchestration
