package oracle

import (
	"errors"
	"fmt"
)

// DefaultCompressThreshold is the encoded price-slot size above which it is lz4 compressed.
const DefaultCompressThreshold = 4096

// Options tune the flagged behaviours of the contract.
type Options struct {
	PruneRule         PruneRule
	TimestampPolicy   TimestampPolicy
	CompressThreshold int
}

// DefaultOptions returns the literal prune rule, trusted timestamps and default compression.
func DefaultOptions() Options {
	return Options{CompressThreshold: DefaultCompressThreshold}
}

// Oracle implements the contract entry points over an Env. It holds no state of its own.
type Oracle struct {
	opts Options
}

// New creates a contract with the given options.
func New(opts Options) *Oracle {
	return &Oracle{opts: opts}
}

// Options returns the options the contract was built with.
func (o *Oracle) Options() Options {
	return o.opts
}

// PriceEntry is one element of a bulk append.
type PriceEntry struct {
	Source    uint32
	Asset     Asset
	Price     Int128
	Timestamp *uint64
}

// Initialize writes the config and resets the price store. Once an admin is
// on record it must authorize any further initialize.
func (o *Oracle) Initialize(env *Env, admin Address, base Asset, decimals, resolution uint32) error {
	if err := admin.Validate(); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if err := base.Validate(); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	current, ok, err := o.readAdmin(env)
	if err != nil {
		return err
	}
	if ok {
		if err := requireAuth(env, current); err != nil {
			return fmt.Errorf("initialize: %w: %w", ErrAlreadyInitialized, err)
		}
	}

	baseBytes, err := EncodeAsset(base)
	if err != nil {
		return err
	}
	if err := env.Storage.Set(env.ctx(), KeyBase, baseBytes); err != nil {
		return err
	}
	if err := o.writeUint32(env, KeyDecimals, decimals); err != nil {
		return err
	}
	if err := o.writeUint32(env, KeyResolution, resolution); err != nil {
		return err
	}
	if err := o.savePrices(env, NewPrices()); err != nil {
		return err
	}
	return o.writeAdmin(env, admin)
}

// Base returns the quote asset.
func (o *Oracle) Base(env *Env) (Asset, error) {
	data, err := mustGet(env, KeyBase)
	if err != nil {
		return Asset{}, err
	}
	return DecodeAsset(data)
}

// Admin returns the administrator.
func (o *Oracle) Admin(env *Env) (Address, error) {
	admin, ok, err := o.readAdmin(env)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("admin: %w", ErrUninitialized)
	}
	return admin, nil
}

// Decimals returns the fixed-point precision of stored prices.
func (o *Oracle) Decimals(env *Env) (uint32, error) {
	return o.readUint32(env, KeyDecimals)
}

// Resolution returns the advisory update cadence in seconds.
func (o *Oracle) Resolution(env *Env) (uint32, error) {
	return o.readUint32(env, KeyResolution)
}

// WriteAdmin hands the contract to a new administrator.
func (o *Oracle) WriteAdmin(env *Env, newAdmin Address) error {
	if err := newAdmin.Validate(); err != nil {
		return fmt.Errorf("write_admin: %w", err)
	}
	if err := o.requireAdmin(env); err != nil {
		return err
	}
	return o.writeAdmin(env, newAdmin)
}

// WriteResolution changes the advisory update cadence.
func (o *Oracle) WriteResolution(env *Env, resolution uint32) error {
	if err := o.requireAdmin(env); err != nil {
		return err
	}
	return o.writeUint32(env, KeyResolution, resolution)
}

// Assets returns every asset key of every source, duplicates included.
func (o *Oracle) Assets(env *Env) ([]Asset, error) {
	p, err := o.loadPrices(env)
	if err != nil {
		return nil, err
	}
	return p.Assets(), nil
}

// Sources returns every source holding at least one asset.
func (o *Oracle) Sources(env *Env) ([]uint32, error) {
	p, err := o.loadPrices(env)
	if err != nil {
		return nil, err
	}
	return p.Sources(), nil
}

// PricesBySource returns the observations of a pair within [start, end].
func (o *Oracle) PricesBySource(env *Env, source uint32, asset Asset, start, end uint64) ([]PriceData, error) {
	p, err := o.loadPrices(env)
	if err != nil {
		return nil, err
	}
	return InRange(p.History(source, asset), start, end), nil
}

// Prices is PricesBySource for the default source.
func (o *Oracle) Prices(env *Env, asset Asset, start, end uint64) ([]PriceData, error) {
	return o.PricesBySource(env, DefaultSource, asset, start, end)
}

// LastPricesBySource returns the last n observations of a pair.
func (o *Oracle) LastPricesBySource(env *Env, source uint32, asset Asset, n uint32) ([]PriceData, error) {
	p, err := o.loadPrices(env)
	if err != nil {
		return nil, err
	}
	return LastN(p.History(source, asset), n), nil
}

// LastPrices is LastPricesBySource for the default source.
func (o *Oracle) LastPrices(env *Env, asset Asset, n uint32) ([]PriceData, error) {
	return o.LastPricesBySource(env, DefaultSource, asset, n)
}

// LastPriceBySource returns the latest observation of a pair.
func (o *Oracle) LastPriceBySource(env *Env, source uint32, asset Asset) (PriceData, bool, error) {
	last, err := o.LastPricesBySource(env, source, asset, 1)
	if err != nil || len(last) == 0 {
		return PriceData{}, false, err
	}
	return last[0], true, nil
}

// LastPrice is LastPriceBySource for the default source.
func (o *Oracle) LastPrice(env *Env, asset Asset) (PriceData, bool, error) {
	return o.LastPriceBySource(env, DefaultSource, asset)
}

// PriceBySource returns the observation stamped exactly ts.
func (o *Oracle) PriceBySource(env *Env, source uint32, asset Asset, ts uint64) (PriceData, bool, error) {
	p, err := o.loadPrices(env)
	if err != nil {
		return PriceData{}, false, err
	}
	pd, ok := At(p.History(source, asset), ts)
	return pd, ok, nil
}

// Price is PriceBySource for the default source.
func (o *Oracle) Price(env *Env, asset Asset, ts uint64) (PriceData, bool, error) {
	return o.PriceBySource(env, DefaultSource, asset, ts)
}

// LastPricesBySourceAndAssets returns the latest observation of each requested
// asset under source. Assets without history are left out.
func (o *Oracle) LastPricesBySourceAndAssets(env *Env, source uint32, assets []Asset) (map[Asset]PriceData, error) {
	p, err := o.loadPrices(env)
	if err != nil {
		return nil, err
	}
	out := make(map[Asset]PriceData, len(assets))
	for _, asset := range assets {
		if pd, ok := Latest(p.History(source, asset)); ok {
			out[asset] = pd
		}
	}
	return out, nil
}

// AddPrice appends price stamped with the current ledger time.
func (o *Oracle) AddPrice(env *Env, source uint32, asset Asset, price Int128) error {
	if err := asset.Validate(); err != nil {
		return fmt.Errorf("add_price: %w", err)
	}
	if err := o.requireAdmin(env); err != nil {
		return err
	}
	p, err := o.loadPrices(env)
	if err != nil {
		return err
	}

	ts := env.Clock.Now()
	if o.opts.TimestampPolicy == TimestampReject {
		if err := checkMonotonic(p, source, asset, ts); err != nil {
			return fmt.Errorf("add_price: %w", err)
		}
	}
	p.Append(source, asset, PriceData{Price: price, Timestamp: ts})
	return o.savePrices(env, p)
}

// AddPrices appends a batch. Entries without a timestamp use the current
// ledger time. Explicit timestamps must not precede the pair's last
// observation; one bad entry rejects the whole batch.
func (o *Oracle) AddPrices(env *Env, entries []PriceEntry) error {
	for i, e := range entries {
		if err := e.Asset.Validate(); err != nil {
			return fmt.Errorf("add_prices: entry %d: %w", i, err)
		}
	}
	if err := o.requireAdmin(env); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	p, err := o.loadPrices(env)
	if err != nil {
		return err
	}

	now := env.Clock.Now()
	for i, e := range entries {
		ts := now
		if e.Timestamp != nil {
			ts = *e.Timestamp
		}
		if e.Timestamp != nil || o.opts.TimestampPolicy == TimestampReject {
			if err := checkMonotonic(p, e.Source, e.Asset, ts); err != nil {
				return fmt.Errorf("add_prices: entry %d: %w", i, err)
			}
		}
		p.Append(e.Source, e.Asset, PriceData{Price: e.Price, Timestamp: ts})
	}
	return o.savePrices(env, p)
}

// RemovePrices prunes the store with the configured keep rule.
func (o *Oracle) RemovePrices(env *Env, filter PruneFilter) error {
	if err := o.requireAdmin(env); err != nil {
		return err
	}
	p, err := o.loadPrices(env)
	if err != nil {
		return err
	}
	return o.savePrices(env, p.Prune(filter, o.opts.PruneRule))
}

func checkMonotonic(p Prices, source uint32, asset Asset, ts uint64) error {
	if last, ok := Latest(p.History(source, asset)); ok && ts < last.Timestamp {
		return fmt.Errorf("%w: %d < %d for %s on source %d", ErrNonMonotonicTimestamp, ts, last.Timestamp, asset, source)
	}
	return nil
}

func requireAuth(env *Env, principal Address) error {
	err := env.Auth.RequireAuth(principal)
	if err == nil || errors.Is(err, ErrUnauthorized) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnauthorized, err)
}

func (o *Oracle) requireAdmin(env *Env) error {
	admin, err := o.Admin(env)
	if err != nil {
		return err
	}
	return requireAuth(env, admin)
}

func mustGet(env *Env, key DataKey) ([]byte, error) {
	data, ok, err := env.Storage.Get(env.ctx(), key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrUninitialized)
	}
	return data, nil
}

func (o *Oracle) readAdmin(env *Env) (Address, bool, error) {
	data, ok, err := env.Storage.Get(env.ctx(), KeyAdmin)
	if err != nil || !ok {
		return "", false, err
	}
	admin, err := DecodeAddress(data)
	return admin, err == nil, err
}

func (o *Oracle) writeAdmin(env *Env, admin Address) error {
	data, err := EncodeAddress(admin)
	if err != nil {
		return err
	}
	return env.Storage.Set(env.ctx(), KeyAdmin, data)
}

func (o *Oracle) readUint32(env *Env, key DataKey) (uint32, error) {
	data, err := mustGet(env, key)
	if err != nil {
		return 0, err
	}
	return DecodeUint32(data)
}

func (o *Oracle) writeUint32(env *Env, key DataKey, v uint32) error {
	data, err := EncodeUint32(v)
	if err != nil {
		return err
	}
	return env.Storage.Set(env.ctx(), key, data)
}

func (o *Oracle) loadPrices(env *Env) (Prices, error) {
	data, err := mustGet(env, KeyPrices)
	if err != nil {
		return nil, err
	}
	return DecodePrices(data)
}

func (o *Oracle) savePrices(env *Env, p Prices) error {
	data, err := EncodePrices(p, o.opts.CompressThreshold)
	if err != nil {
		return err
	}
	return env.Storage.Set(env.ctx(), KeyPrices, data)
}
