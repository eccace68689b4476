// Package domain contains the core business types for omnibar:
// suggestions, sources, promotion, ranking and click records.
// It has no dependencies on adapters or external services.
package domain
