package archive

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
	gzipcodec "github.com/parquet-go/parquet-go/compress/gzip"
	zstdcodec "github.com/parquet-go/parquet-go/compress/zstd"
)

// codecFor returns the parquet-go compression codec for an algorithm
// name. Zstd and gzip honor a non-zero level; the other codecs have
// none to set.
func codecFor(algorithm string, level int) (compress.Codec, error) {
	switch algorithm {
	case "snappy":
		return &parquet.Snappy, nil
	case "zstd":
		if level > 0 {
			return &zstdcodec.Codec{Level: zstd.EncoderLevelFromZstd(level)}, nil
		}
		return &parquet.Zstd, nil
	case "lz4":
		return &parquet.Lz4Raw, nil
	case "gzip":
		if level > 9 {
			return nil, fmt.Errorf("gzip level must be between 1 and 9, got %d", level)
		}
		if level > 0 {
			return &gzipcodec.Codec{Level: level}, nil
		}
		return &parquet.Gzip, nil
	case "none", "":
		return &parquet.Uncompressed, nil
	default:
		return nil, fmt.Errorf("unknown compression algorithm %q", algorithm)
	}
}
