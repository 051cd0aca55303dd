// Package reconcile diffs the relay provider and the coordinator and applies
// the difference.
//
// Planning is pure: PlanRelayRegistrations, PlanRelayDeletions,
// PlanNodeConnections and PlanNodeDisconnections take snapshots and return
// the requests to submit. The recipes (AddRelays, DeleteRelays, ConnectNode,
// DisconnectNode) fetch fresh snapshots through a Context, plan, and run the
// result through async.RunBatch. Every run recomputes the plan from scratch,
// so re-running a partially applied command converges.
package reconcile
