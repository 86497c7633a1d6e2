package oracle

import "sort"

// Prices is the price store: source -> asset -> history ascending by timestamp.
type Prices map[uint32]map[Asset][]PriceData

// NewPrices returns an empty store.
func NewPrices() Prices {
	return make(Prices)
}

// History returns the stored history of a pair, nil when absent.
// The slice is shared with the store and must not be modified.
func (p Prices) History(source uint32, asset Asset) []PriceData {
	assets, ok := p[source]
	if !ok {
		return nil
	}
	return assets[asset]
}

// Append adds an observation at the end of a pair's history, creating levels on demand.
func (p Prices) Append(source uint32, asset Asset, data PriceData) {
	assets, ok := p[source]
	if !ok {
		assets = make(map[Asset][]PriceData)
		p[source] = assets
	}
	assets[asset] = append(assets[asset], data)
}

// Sources returns every source with at least one asset, ascending.
func (p Prices) Sources() []uint32 {
	sources := make([]uint32, 0, len(p))
	for source, assets := range p {
		if len(assets) > 0 {
			sources = append(sources, source)
		}
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })
	return sources
}

// AssetsOf returns the assets recorded under one source in Asset order.
func (p Prices) AssetsOf(source uint32) []Asset {
	assets := make([]Asset, 0, len(p[source]))
	for asset := range p[source] {
		assets = append(assets, asset)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Less(assets[j]) })
	return assets
}

// Assets flattens the per-source asset keys. An asset present under
// several sources appears once per source.
func (p Prices) Assets() []Asset {
	var all []Asset
	for _, source := range p.Sources() {
		all = append(all, p.AssetsOf(source)...)
	}
	return all
}

// Len returns the total number of stored observations.
func (p Prices) Len() int {
	n := 0
	for _, assets := range p {
		for _, history := range assets {
			n += len(history)
		}
	}
	return n
}

// Clone deep-copies the store.
func (p Prices) Clone() Prices {
	out := make(Prices, len(p))
	for source, assets := range p {
		copied := make(map[Asset][]PriceData, len(assets))
		for asset, history := range assets {
			copied[asset] = append([]PriceData(nil), history...)
		}
		out[source] = copied
	}
	return out
}
