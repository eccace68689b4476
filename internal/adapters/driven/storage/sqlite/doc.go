// Package sqlite provides SQLite-backed implementations of the
// metadata store ports: the click log, the usage statistics feeding
// source promotion, and the shortcut store.
package sqlite
