package twbedit

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/xxh3"
)

// Shared encoder and decoder; both are safe for concurrent use.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// snapshot keeps the as-loaded serialization of a workbook compressed, with
// a fingerprint for a cheap equality test.
type snapshot struct {
	sum        uint64
	size       int
	compressed []byte
}

func takeSnapshot(data []byte) snapshot {
	return snapshot{
		sum:        xxh3.Hash(data),
		size:       len(data),
		compressed: zstdEncoder.EncodeAll(data, nil),
	}
}

func (s snapshot) bytes() ([]byte, error) {
	out, err := zstdDecoder.DecodeAll(s.compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	return out, nil
}

// equal reports whether data matches the snapshot byte for byte.
func (s snapshot) equal(data []byte) (bool, error) {
	if len(data) != s.size || xxh3.Hash(data) != s.sum {
		return false, nil
	}
	orig, err := s.bytes()
	if err != nil {
		return false, err
	}
	return bytes.Equal(orig, data), nil
}
