// Package services implements the suggestion core: the bounded worker
// pool, the per-source execution coalescer, the concurrent result
// aggregator and the session orchestrator that ties them together.
package services
