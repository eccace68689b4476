// Package driving defines the inbound ports of the suggestion core:
// interfaces implemented by core services and called by driving
// adapters (CLI, TUI).
package driving
