package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	domtable "github.com/kailas-cloud/teammaker/internal/domain/table"
)

// dtoVersion is bumped when tableDTO changes incompatibly.
const dtoVersion = 1

// zstd frame magic number, little endian.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// tableDTO is the stored representation of a table.
type tableDTO struct {
	Version   int        `json:"v"`
	Header    []string   `json:"header"`
	Rows      [][]string `json:"rows"`
	CreatedAt int64      `json:"created_at"`
}

// zstd encoder/decoder pools
var (
	encoderPool sync.Pool
	decoderPool sync.Pool
)

func getEncoder() (*zstd.Encoder, error) {
	if v := encoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	return enc, nil
}

func getDecoder() (*zstd.Decoder, error) {
	if v := decoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	return dec, nil
}

// encodeTable serializes t, zstd-compressed when compress is set.
func encodeTable(t domtable.Table, createdAt int64, compress bool) ([]byte, error) {
	raw, err := json.Marshal(tableDTO{
		Version:   dtoVersion,
		Header:    t.Header(),
		Rows:      t.Records(),
		CreatedAt: createdAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal table: %w", err)
	}
	if !compress {
		return raw, nil
	}
	enc, err := getEncoder()
	if err != nil {
		return nil, err
	}
	defer encoderPool.Put(enc)
	return enc.EncodeAll(raw, make([]byte, 0, len(raw)/4)), nil
}

// decodeTable hydrates a table from either plain or compressed payloads.
func decodeTable(data []byte) (domtable.Table, int64, error) {
	if bytes.HasPrefix(data, zstdMagic) {
		dec, err := getDecoder()
		if err != nil {
			return domtable.Table{}, 0, err
		}
		raw, err := dec.DecodeAll(data, nil)
		decoderPool.Put(dec)
		if err != nil {
			return domtable.Table{}, 0, fmt.Errorf("decompress table: %w", err)
		}
		data = raw
	}

	var dto tableDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return domtable.Table{}, 0, fmt.Errorf("unmarshal table: %w", err)
	}
	if dto.Version != dtoVersion {
		return domtable.Table{}, 0, fmt.Errorf("unsupported table payload version %d", dto.Version)
	}
	return domtable.Reconstruct(dto.Header, dto.Rows), dto.CreatedAt, nil
}
