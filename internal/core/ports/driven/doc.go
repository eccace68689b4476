// Package driven defines the outbound ports of the suggestion core:
// interfaces the core calls out through, implemented by adapters
// (sources, storage, configuration, click logging).
package driven
