package oracle

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func history(ts ...uint64) []PriceData {
	out := make([]PriceData, len(ts))
	for i, v := range ts {
		out[i] = PriceData{Price: NewInt128(int64(i)), Timestamp: v}
	}
	return out
}

func TestInRange(t *testing.T) {
	h := history(100, 200, 300)
	tests := []struct {
		name       string
		start, end uint64
		want       []uint64
	}{
		{"all", 0, 1000, []uint64{100, 200, 300}},
		{"inclusive bounds", 100, 200, []uint64{100, 200}},
		{"single point", 200, 200, []uint64{200}},
		{"empty", 201, 299, nil},
		{"inverted", 300, 100, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InRange(h, tt.start, tt.end)
			var ts []uint64
			for _, pd := range got {
				ts = append(ts, pd.Timestamp)
			}
			assert.Equal(t, tt.want, ts)
		})
	}
}

func TestLastN(t *testing.T) {
	h := history(1, 2, 3, 4)
	assert.Empty(t, LastN(h, 0))
	assert.Equal(t, h[2:], LastN(h, 2))
	assert.Equal(t, h, LastN(h, 10))
	assert.Empty(t, LastN(nil, 3))

	got := LastN(h, 1)
	got[0].Timestamp = 99
	assert.Equal(t, uint64(4), h[3].Timestamp, "LastN must copy")

	latest, ok := Latest(h)
	require.True(t, ok)
	assert.Equal(t, h[3], latest)
	_, ok = Latest(nil)
	assert.False(t, ok)
}

func TestAtPrefersMostRecent(t *testing.T) {
	h := []PriceData{
		{Price: NewInt128(1), Timestamp: 5},
		{Price: NewInt128(2), Timestamp: 5},
		{Price: NewInt128(3), Timestamp: 6},
	}
	pd, ok := At(h, 5)
	require.True(t, ok)
	assert.Equal(t, NewInt128(2), pd.Price)
	_, ok = At(h, 7)
	assert.False(t, ok)
}

func TestAppendKeepsLength(t *testing.T) {
	p := NewPrices()
	for i := 0; i < 5; i++ {
		p.Append(0, btc, PriceData{Price: NewInt128(int64(i)), Timestamp: uint64(i)})
	}
	assert.Len(t, p.History(0, btc), 5)
	assert.Equal(t, 5, p.Len())
	assert.Nil(t, p.History(1, btc))
}

func TestPruneDoesNotTouchReceiver(t *testing.T) {
	p := NewPrices()
	p.Append(0, btc, PriceData{Timestamp: 100})
	p.Append(0, btc, PriceData{Timestamp: 200})
	start := uint64(150)

	out := p.Prune(PruneFilter{Start: &start}, PruneLiteral)
	assert.Len(t, out.History(0, btc), 1)
	assert.Len(t, p.History(0, btc), 2)
}

func TestPruneKeepRules(t *testing.T) {
	u := func(v uint64) *uint64 { return &v }
	tests := []struct {
		name     string
		rule     PruneRule
		start    *uint64
		end      *uint64
		ts       uint64
		wantKeep bool
	}{
		{"literal no bounds", PruneLiteral, nil, nil, 100, true},
		{"literal start before", PruneLiteral, u(50), nil, 100, true},
		{"literal start equal", PruneLiteral, u(100), nil, 100, false},
		{"literal end after", PruneLiteral, nil, u(150), 100, true},
		{"literal end equal", PruneLiteral, nil, u(100), 100, false},
		{"literal both outside", PruneLiteral, u(150), u(150), 100, true},
		{"literal both pinned", PruneLiteral, u(100), u(100), 100, false},
		{"interval no bounds", PruneInterval, nil, nil, 100, true},
		{"interval inside", PruneInterval, u(50), u(150), 100, false},
		{"interval edge", PruneInterval, u(100), u(150), 100, false},
		{"interval outside", PruneInterval, u(150), u(200), 100, true},
		{"interval open start", PruneInterval, nil, u(100), 100, false},
		{"interval open end", PruneInterval, u(101), nil, 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := PruneFilter{Start: tt.start, End: tt.end}
			assert.Equal(t, tt.wantKeep, f.keeps(tt.ts, tt.rule))
		})
	}
}

func TestPricesCodec(t *testing.T) {
	p := NewPrices()
	huge, err := ParseInt128("170141183460469231731687303715884105727")
	require.NoError(t, err)
	for i := 0; i < 200; i++ {
		p.Append(uint32(i%3), SymbolAsset(fmt.Sprintf("A%d", i%7)), PriceData{Price: NewInt128(1000), Timestamp: uint64(i)})
	}
	p.Append(0, AccountAsset(testAccount), PriceData{Price: huge, Timestamp: 1})

	for _, threshold := range []int{0, 64, 1 << 30} {
		t.Run(fmt.Sprintf("threshold %d", threshold), func(t *testing.T) {
			data, err := EncodePrices(p, threshold)
			require.NoError(t, err)
			if threshold == 64 {
				assert.Equal(t, frameLZ4, data[0])
			} else {
				assert.Equal(t, framePlain, data[0])
			}
			got, err := DecodePrices(data)
			require.NoError(t, err)
			assert.Equal(t, p, got)
		})
	}

	_, err = DecodePrices([]byte{0x7f, 0x00})
	assert.ErrorIs(t, err, ErrCorruptState)
	_, err = DecodePrices(nil)
	assert.ErrorIs(t, err, ErrCorruptState)
}

func TestDecodePricesBoundsFrameSize(t *testing.T) {
	frame := func(size uint64, block []byte) []byte {
		out := []byte{frameLZ4}
		out = binary.AppendUvarint(out, size)
		return append(out, block...)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"beyond slot limit", frame(1<<40, make([]byte, 64))},
		{"beyond lz4 ratio", frame(10_000, []byte{0x1f, 0x00, 0x01, 0x00})},
		{"truncated header", []byte{frameLZ4, 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePrices(tt.data)
			assert.ErrorIs(t, err, ErrCorruptState)
		})
	}

	p := NewPrices()
	for i := 0; i < 100; i++ {
		p.Append(0, SymbolAsset("BTC"), PriceData{Price: NewInt128(7), Timestamp: uint64(i)})
	}
	data, err := EncodePrices(p, 1)
	require.NoError(t, err)
	require.Equal(t, frameLZ4, data[0])
	size, w := binary.Uvarint(data[1:])
	require.Positive(t, w)

	// a header that overstates the size is rejected instead of padded
	_, err = DecodePrices(frame(size+1, data[1+w:]))
	assert.ErrorIs(t, err, ErrCorruptState)
}

func TestSequencesCodec(t *testing.T) {
	seqs := map[Address]uint64{testAccount: 3, "rOther": 1}
	data, err := EncodeSequences(seqs)
	require.NoError(t, err)
	got, err := DecodeSequences(data)
	require.NoError(t, err)
	assert.Equal(t, seqs, got)
}

func TestInt128(t *testing.T) {
	for _, s := range []string{"0", "-1", "42", "-170141183460469231731687303715884105728", "18446744073709551616"} {
		v, err := ParseInt128(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, v.String())
	}

	_, err := ParseInt128("170141183460469231731687303715884105728")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = ParseInt128("1.5")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Equal(t, -1, NewInt128(-5).Cmp(NewInt128(3)))
	assert.Equal(t, 0, NewInt128(7).Cmp(NewInt128(7)))
	assert.Equal(t, 0, NewInt128(-9).Big().Cmp(big.NewInt(-9)))

	var fromNumber, fromString Int128
	require.NoError(t, fromNumber.UnmarshalJSON([]byte(`12`)))
	require.NoError(t, fromString.UnmarshalJSON([]byte(`"12"`)))
	assert.Equal(t, fromNumber, fromString)
	out, err := NewInt128(-3).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"-3"`, string(out))
}

func TestParseAsset(t *testing.T) {
	a, err := ParseAsset("symbol:BTC")
	require.NoError(t, err)
	assert.Equal(t, btc, a)

	a, err = ParseAsset("account:" + string(testAccount))
	require.NoError(t, err)
	assert.Equal(t, AccountAsset(testAccount), a)
	assert.Equal(t, "account:"+string(testAccount), a.String())

	for _, bad := range []string{"BTC", "symbol:", "symbol:BT-C", "account:rNotValid", "symbol:ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456"} {
		_, err := ParseAsset(bad)
		assert.ErrorIs(t, err, ErrInvalidArgument, bad)
	}

	assert.True(t, AccountAsset(testAccount).Less(btc))
	assert.True(t, btc.Less(eth))
}

func TestPriceFormatting(t *testing.T) {
	p, err := ParsePrice("1.25", 4)
	require.NoError(t, err)
	assert.Equal(t, NewInt128(12500), p)
	assert.Equal(t, "1.25", FormatPrice(p, 4))

	p, err = ParsePrice("-0.5", 2)
	require.NoError(t, err)
	assert.Equal(t, NewInt128(-50), p)

	_, err = ParsePrice("0.001", 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = ParsePrice("abc", 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
