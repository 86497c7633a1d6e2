package oracle

import (
	"fmt"
	"strings"

	addresscodec "github.com/Peersyst/xrpl-go/address-codec"
)

// Address identifies an on-network account. Admins and account assets use it.
type Address string

// Validate checks that the address is a well-formed classic address.
func (a Address) Validate() error {
	if !addresscodec.IsValidClassicAddress(string(a)) {
		return fmt.Errorf("%w: bad address %q", ErrInvalidArgument, string(a))
	}
	return nil
}

// AssetKind discriminates the Asset union.
type AssetKind uint8

const (
	// AssetAccount is an asset identified by an on-network account
	AssetAccount AssetKind = iota
	// AssetSymbol is an off-network ticker such as BTC
	AssetSymbol
)

const (
	accountPrefix = "account:"
	symbolPrefix  = "symbol:"

	// MaxSymbolLength is the longest ticker accepted for a symbol asset
	MaxSymbolLength = 32
)

// Asset is either an account or a symbol. It is comparable and used as a map key.
type Asset struct {
	Kind AssetKind
	Code string
}

// AccountAsset returns the asset tracked under an on-network account.
func AccountAsset(addr Address) Asset {
	return Asset{Kind: AssetAccount, Code: string(addr)}
}

// SymbolAsset returns an off-network ticker asset.
func SymbolAsset(code string) Asset {
	return Asset{Kind: AssetSymbol, Code: code}
}

// ParseAsset reads the "account:<address>" / "symbol:<CODE>" text form.
func ParseAsset(s string) (Asset, error) {
	var a Asset
	switch {
	case strings.HasPrefix(s, accountPrefix):
		a = AccountAsset(Address(strings.TrimPrefix(s, accountPrefix)))
	case strings.HasPrefix(s, symbolPrefix):
		a = SymbolAsset(strings.TrimPrefix(s, symbolPrefix))
	default:
		return Asset{}, fmt.Errorf("%w: asset %q needs an account: or symbol: prefix", ErrInvalidArgument, s)
	}
	if err := a.Validate(); err != nil {
		return Asset{}, err
	}
	return a, nil
}

// Validate checks the code against the rules of its kind.
func (a Asset) Validate() error {
	switch a.Kind {
	case AssetAccount:
		return Address(a.Code).Validate()
	case AssetSymbol:
		if len(a.Code) == 0 || len(a.Code) > MaxSymbolLength {
			return fmt.Errorf("%w: symbol must be 1-%d characters", ErrInvalidArgument, MaxSymbolLength)
		}
		for _, c := range a.Code {
			if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
				return fmt.Errorf("%w: symbol %q contains %q", ErrInvalidArgument, a.Code, c)
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown asset kind %d", ErrInvalidArgument, a.Kind)
	}
}

func (a Asset) String() string {
	if a.Kind == AssetAccount {
		return accountPrefix + a.Code
	}
	return symbolPrefix + a.Code
}

// Less orders accounts before symbols, then by code.
func (a Asset) Less(b Asset) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.Code < b.Code
}

func (a Asset) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Asset) UnmarshalText(text []byte) error {
	parsed, err := ParseAsset(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
