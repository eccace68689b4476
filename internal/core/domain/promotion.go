package domain

// PromotionResult partitions the queried sources into promoted slots,
// shown without expansion, and additional slots behind the "more
// results" entry. Every queried source appears in exactly one bucket.
type PromotionResult struct {
	// Promoted holds at most the configured maximum of sources,
	// headed by the web source when one is configured.
	Promoted []SourceID

	// Additional holds the remaining sources: never-ranked sources
	// first, then ranked sources that overflowed the promoted cap.
	Additional []SourceID
}

// Sources returns promoted followed by additional as one sequence.
func (r PromotionResult) Sources() []SourceID {
	out := make([]SourceID, 0, len(r.Promoted)+len(r.Additional))
	out = append(out, r.Promoted...)
	out = append(out, r.Additional...)
	return out
}

// Promote orders the enabled sources into promoted and additional
// buckets. It is deterministic: identical inputs produce identical
// output order.
//
// The web source, when resolvable, unconditionally takes the first
// promoted slot regardless of rank. Remaining promoted slots go to
// ranked sources in ranking order. Sources with no usage history come
// before ranked-but-unpromoted sources in the additional bucket: a
// never-ranked source is new and deserves visibility over one the user
// has historically passed on. Ranking identities that are disabled or
// unknown are silently ignored.
//
// webSource is empty when no web source is configured. maxPromoted = 0
// is a legal degenerate configuration: the web source then heads the
// additional bucket instead.
func Promote(enabled []SourceID, webSource SourceID, ranking []SourceID, maxPromoted int) PromotionResult {
	if maxPromoted < 0 {
		maxPromoted = 0
	}

	enabledSet := make(map[SourceID]bool, len(enabled))
	for _, id := range enabled {
		enabledSet[id] = true
	}

	hasWeb := webSource != ""

	// Ranked sources that are enabled and not the web source, in
	// ranking order. The web source is resolvable independently of the
	// enabled set, so it is handled separately.
	rankedSet := make(map[SourceID]bool, len(ranking))
	var ranked []SourceID
	for _, id := range ranking {
		if id == webSource || !enabledSet[id] || rankedSet[id] {
			continue
		}
		rankedSet[id] = true
		ranked = append(ranked, id)
	}

	slots := maxPromoted
	if hasWeb {
		slots--
	}
	if slots < 0 {
		slots = 0
	}
	if slots > len(ranked) {
		slots = len(ranked)
	}
	promotedRanked := ranked[:slots]
	remainingRanked := ranked[slots:]

	// Enabled sources with no ranking entry, in caller order.
	seen := make(map[SourceID]bool, len(enabled))
	var unranked []SourceID
	for _, id := range enabled {
		if id == webSource || rankedSet[id] || seen[id] {
			continue
		}
		seen[id] = true
		unranked = append(unranked, id)
	}

	promoted := make([]SourceID, 0, maxPromoted)
	additional := make([]SourceID, 0, len(unranked)+len(remainingRanked)+1)

	if hasWeb {
		if maxPromoted > 0 {
			promoted = append(promoted, webSource)
		} else {
			additional = append(additional, webSource)
		}
	}
	promoted = append(promoted, promotedRanked...)
	if len(promoted) > maxPromoted {
		// Cannot happen given the slot arithmetic above; enforce the
		// cap anyway and demote the overflow.
		additional = append(additional, promoted[maxPromoted:]...)
		promoted = promoted[:maxPromoted]
	}

	additional = append(additional, unranked...)
	additional = append(additional, remainingRanked...)

	return PromotionResult{Promoted: promoted, Additional: additional}
}
