package oracle

import (
	"fmt"
	"math/big"
)

// Int128 is a signed 128-bit integer stored as two's-complement halves.
type Int128 struct {
	Hi int64
	Lo uint64
}

var (
	minInt128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	two64     = new(big.Int).Lsh(big.NewInt(1), 64)
)

// NewInt128 widens an int64.
func NewInt128(v int64) Int128 {
	hi := int64(0)
	if v < 0 {
		hi = -1
	}
	return Int128{Hi: hi, Lo: uint64(v)}
}

// Int128FromBig converts b, failing when it does not fit in 128 bits.
func Int128FromBig(b *big.Int) (Int128, error) {
	if b.Cmp(minInt128) < 0 || b.Cmp(maxInt128) > 0 {
		return Int128{}, fmt.Errorf("%w: %s overflows i128", ErrInvalidArgument, b.String())
	}
	v := new(big.Int).Set(b)
	if v.Sign() < 0 {
		v.Add(v, new(big.Int).Lsh(big.NewInt(1), 128))
	}
	lo := new(big.Int).And(v, new(big.Int).Sub(two64, big.NewInt(1)))
	hi := new(big.Int).Rsh(v, 64)
	return Int128{Hi: int64(hi.Uint64()), Lo: lo.Uint64()}, nil
}

// ParseInt128 parses a base-10 integer.
func ParseInt128(s string) (Int128, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Int128{}, fmt.Errorf("%w: %q is not an integer", ErrInvalidArgument, s)
	}
	return Int128FromBig(b)
}

// Big returns the value as a big.Int.
func (i Int128) Big() *big.Int {
	b := new(big.Int).SetInt64(i.Hi)
	b.Mul(b, two64)
	return b.Add(b, new(big.Int).SetUint64(i.Lo))
}

// Cmp compares i and o, returning -1, 0 or +1.
func (i Int128) Cmp(o Int128) int {
	switch {
	case i.Hi < o.Hi:
		return -1
	case i.Hi > o.Hi:
		return 1
	case i.Lo < o.Lo:
		return -1
	case i.Lo > o.Lo:
		return 1
	}
	return 0
}

func (i Int128) String() string {
	return i.Big().String()
}

// MarshalJSON renders the value as a decimal string.
func (i Int128) MarshalJSON() ([]byte, error) {
	return []byte(`"` + i.String() + `"`), nil
}

// UnmarshalJSON accepts a decimal string or a bare JSON integer.
func (i *Int128) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := ParseInt128(s)
	if err != nil {
		return err
	}
	*i = v
	return nil
}
