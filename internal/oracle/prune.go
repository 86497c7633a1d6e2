package oracle

// PruneFilter selects what remove_prices considers. Empty Sources or Assets means all.
type PruneFilter struct {
	Sources []uint32
	Assets  []Asset
	Start   *uint64
	End     *uint64
}

func (f PruneFilter) matchesSource(source uint32) bool {
	if len(f.Sources) == 0 {
		return true
	}
	for _, s := range f.Sources {
		if s == source {
			return true
		}
	}
	return false
}

func (f PruneFilter) matchesAsset(asset Asset) bool {
	if len(f.Assets) == 0 {
		return true
	}
	for _, a := range f.Assets {
		if a == asset {
			return true
		}
	}
	return false
}

func (f PruneFilter) keeps(ts uint64, rule PruneRule) bool {
	if f.Start == nil && f.End == nil {
		return true
	}
	if rule == PruneInterval {
		inside := (f.Start == nil || *f.Start <= ts) && (f.End == nil || ts <= *f.End)
		return !inside
	}
	return (f.Start != nil && *f.Start < ts) || (f.End != nil && *f.End > ts)
}

// Prune rebuilds the store without the observations the filter removes.
// Pairs and sources left empty by the filter are dropped. Pairs outside the
// source or asset filter are carried over unchanged. The receiver is not modified.
func (p Prices) Prune(f PruneFilter, rule PruneRule) Prices {
	out := make(Prices, len(p))
	for source, assets := range p {
		if !f.matchesSource(source) {
			out[source] = assets
			continue
		}
		kept := make(map[Asset][]PriceData, len(assets))
		for asset, history := range assets {
			if !f.matchesAsset(asset) {
				kept[asset] = history
				continue
			}
			var survivors []PriceData
			for _, pd := range history {
				if f.keeps(pd.Timestamp, rule) {
					survivors = append(survivors, pd)
				}
			}
			if len(survivors) > 0 {
				kept[asset] = survivors
			}
		}
		if len(kept) > 0 {
			out[source] = kept
		}
	}
	return out
}
