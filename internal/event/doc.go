// Package event defines the pub/sub bus and event types that decouple the
// debate session machine from its renderers. The TUI subscribes to session
// events and repaints; nothing in the core depends on who is listening.
package event
