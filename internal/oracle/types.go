package oracle

import (
	"fmt"
	"strings"
)

// DefaultSource is the source used by the source-less query helpers.
const DefaultSource uint32 = 0

// PriceData is a single observation.
type PriceData struct {
	Price     Int128 `json:"price"`
	Timestamp uint64 `json:"timestamp"`
}

// DataKey names a persistent contract slot.
type DataKey uint8

const (
	KeyBase DataKey = iota
	KeyDecimals
	KeyResolution
	KeyAdmin
	KeyPrices
	// KeySequences holds the last sequence each signer used. The host
	// maintains it; the contract never reads it.
	KeySequences
)

func (k DataKey) String() string {
	switch k {
	case KeyBase:
		return "base"
	case KeyDecimals:
		return "decimals"
	case KeyResolution:
		return "resolution"
	case KeyAdmin:
		return "admin"
	case KeyPrices:
		return "prices"
	case KeySequences:
		return "sequences"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// AllKeys lists every slot in a stable order.
var AllKeys = []DataKey{KeyBase, KeyDecimals, KeyResolution, KeyAdmin, KeyPrices, KeySequences}

// PruneRule selects how remove_prices treats the time bounds.
type PruneRule int

const (
	// PruneLiteral keeps an observation when start < ts or end > ts.
	// With no bounds at all every observation is kept.
	PruneLiteral PruneRule = iota
	// PruneInterval drops observations inside [start, end], open on a missing side.
	PruneInterval
)

func (r PruneRule) String() string {
	if r == PruneInterval {
		return "interval"
	}
	return "literal"
}

// ParsePruneRule maps a config value to a PruneRule.
func ParsePruneRule(s string) (PruneRule, error) {
	switch strings.ToLower(s) {
	case "", "literal":
		return PruneLiteral, nil
	case "interval":
		return PruneInterval, nil
	default:
		return 0, fmt.Errorf("unknown prune rule %q", s)
	}
}

// TimestampPolicy selects how add_price treats a host time older than the last observation.
type TimestampPolicy int

const (
	// TimestampTrust appends whatever the clock says.
	TimestampTrust TimestampPolicy = iota
	// TimestampReject fails the append with ErrNonMonotonicTimestamp.
	TimestampReject
)

func (p TimestampPolicy) String() string {
	if p == TimestampReject {
		return "reject"
	}
	return "trust"
}

// ParseTimestampPolicy maps a config value to a TimestampPolicy.
func ParseTimestampPolicy(s string) (TimestampPolicy, error) {
	switch strings.ToLower(s) {
	case "", "trust":
		return TimestampTrust, nil
	case "reject":
		return TimestampReject, nil
	default:
		return 0, fmt.Errorf("unknown timestamp policy %q", s)
	}
}
