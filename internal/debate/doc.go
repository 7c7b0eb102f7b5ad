// Package debate implements the client-side debate session core: the
// transcript reconciler that merges the server-persisted transcript with
// optimistic local entries, the typing indicator controller, the assistant
// reply poller, and the session state machine that composes them.
//
// One Machine is created per open debate session and torn down when the
// session closes. All transcript mutation flows through the Transcript's
// operations; no other component splices the message list directly.
package debate
