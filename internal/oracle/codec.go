package oracle

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4"
	"github.com/ugorji/go/codec"
)

var msgpackHandle = &codec.MsgpackHandle{}

const (
	framePlain byte = 0x00
	frameLZ4   byte = 0x01

	lz4HashTableSize = 1 << 16

	// maxPriceSlotSize bounds the decompressed size an lz4 frame may claim.
	maxPriceSlotSize = 256 << 20
	// lz4MaxRatio is the largest expansion a single lz4 block can encode.
	lz4MaxRatio = 255
)

type assetRecord struct {
	_struct bool `codec:",toarray"`
	Kind    uint8
	Code    string
}

type priceRecord struct {
	_struct   bool `codec:",toarray"`
	Hi        int64
	Lo        uint64
	Timestamp uint64
}

type historyRecord struct {
	_struct bool `codec:",toarray"`
	Asset   assetRecord
	Prices  []priceRecord
}

type sourceRecord struct {
	_struct bool `codec:",toarray"`
	Source  uint32
	Assets  []historyRecord
}

func toAssetRecord(a Asset) assetRecord {
	return assetRecord{Kind: uint8(a.Kind), Code: a.Code}
}

func (r assetRecord) asset() Asset {
	return Asset{Kind: AssetKind(r.Kind), Code: r.Code}
}

func encodeValue(v interface{}) ([]byte, error) {
	var out []byte
	if err := codec.NewEncoderBytes(&out, msgpackHandle).Encode(v); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeValue(data []byte, v interface{}) error {
	if err := codec.NewDecoderBytes(data, msgpackHandle).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	return nil
}

// EncodeAsset serializes an asset for the base slot.
func EncodeAsset(a Asset) ([]byte, error) {
	return encodeValue(toAssetRecord(a))
}

// DecodeAsset is the inverse of EncodeAsset.
func DecodeAsset(data []byte) (Asset, error) {
	var r assetRecord
	if err := decodeValue(data, &r); err != nil {
		return Asset{}, err
	}
	return r.asset(), nil
}

// EncodeUint32 serializes the decimals and resolution slots.
func EncodeUint32(v uint32) ([]byte, error) {
	return encodeValue(v)
}

// DecodeUint32 is the inverse of EncodeUint32.
func DecodeUint32(data []byte) (uint32, error) {
	var v uint32
	err := decodeValue(data, &v)
	return v, err
}

// EncodeAddress serializes the admin slot.
func EncodeAddress(a Address) ([]byte, error) {
	return encodeValue(string(a))
}

// DecodeAddress is the inverse of EncodeAddress.
func DecodeAddress(data []byte) (Address, error) {
	var s string
	err := decodeValue(data, &s)
	return Address(s), err
}

// EncodeSequences serializes the last used signer sequence per address.
func EncodeSequences(seqs map[Address]uint64) ([]byte, error) {
	m := make(map[string]uint64, len(seqs))
	for addr, seq := range seqs {
		m[string(addr)] = seq
	}
	return encodeValue(m)
}

// DecodeSequences is the inverse of EncodeSequences.
func DecodeSequences(data []byte) (map[Address]uint64, error) {
	var m map[string]uint64
	if err := decodeValue(data, &m); err != nil {
		return nil, err
	}
	seqs := make(map[Address]uint64, len(m))
	for addr, seq := range m {
		seqs[Address(addr)] = seq
	}
	return seqs, nil
}

// EncodePrices serializes the price store in source and asset order. Payloads
// of at least compressThreshold bytes are lz4 compressed; a threshold <= 0
// disables compression.
func EncodePrices(p Prices, compressThreshold int) ([]byte, error) {
	records := make([]sourceRecord, 0, len(p))
	for _, source := range p.Sources() {
		rec := sourceRecord{Source: source}
		for _, asset := range p.AssetsOf(source) {
			history := p[source][asset]
			h := historyRecord{Asset: toAssetRecord(asset), Prices: make([]priceRecord, len(history))}
			for i, pd := range history {
				h.Prices[i] = priceRecord{Hi: pd.Price.Hi, Lo: pd.Price.Lo, Timestamp: pd.Timestamp}
			}
			rec.Assets = append(rec.Assets, h)
		}
		records = append(records, rec)
	}

	raw, err := encodeValue(records)
	if err != nil {
		return nil, err
	}
	if compressThreshold <= 0 || len(raw) < compressThreshold {
		return append([]byte{framePlain}, raw...), nil
	}

	compressed := make([]byte, lz4.CompressBlockBound(len(raw)))
	n, err := lz4.CompressBlock(raw, compressed, make([]int, lz4HashTableSize))
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if n == 0 || n >= len(raw) {
		// incompressible
		return append([]byte{framePlain}, raw...), nil
	}

	out := make([]byte, 1+binary.MaxVarintLen64+n)
	out[0] = frameLZ4
	w := 1 + binary.PutUvarint(out[1:], uint64(len(raw)))
	w += copy(out[w:], compressed[:n])
	return out[:w], nil
}

// DecodePrices is the inverse of EncodePrices.
func DecodePrices(data []byte) (Prices, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty price slot", ErrCorruptState)
	}

	raw := data[1:]
	switch data[0] {
	case framePlain:
	case frameLZ4:
		size, w := binary.Uvarint(raw)
		if w <= 0 {
			return nil, fmt.Errorf("%w: bad lz4 frame header", ErrCorruptState)
		}
		block := raw[w:]
		if size > maxPriceSlotSize || size > uint64(len(block))*lz4MaxRatio {
			return nil, fmt.Errorf("%w: lz4 frame claims %d bytes from a %d byte block", ErrCorruptState, size, len(block))
		}
		buf := make([]byte, size)
		n, err := lz4.UncompressBlock(block, buf)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4 decompression failed: %v", ErrCorruptState, err)
		}
		if uint64(n) != size {
			return nil, fmt.Errorf("%w: lz4 frame decoded to %d bytes, header says %d", ErrCorruptState, n, size)
		}
		raw = buf
	default:
		return nil, fmt.Errorf("%w: unknown frame 0x%02x", ErrCorruptState, data[0])
	}

	var records []sourceRecord
	if err := decodeValue(raw, &records); err != nil {
		return nil, err
	}

	p := NewPrices()
	for _, rec := range records {
		for _, h := range rec.Assets {
			history := make([]PriceData, len(h.Prices))
			for i, pr := range h.Prices {
				history[i] = PriceData{Price: Int128{Hi: pr.Hi, Lo: pr.Lo}, Timestamp: pr.Timestamp}
			}
			if p[rec.Source] == nil {
				p[rec.Source] = make(map[Asset][]PriceData)
			}
			p[rec.Source][h.Asset.asset()] = history
		}
	}
	return p, nil
}
