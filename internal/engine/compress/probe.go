package compress

import (
	"bytes"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// snappyGate is the snappy reduction below which a sample is treated as
// incompressible and the slower passes are skipped.
const snappyGate = 0.05

// Probe measures the compressibility of a content sample. A snappy pass
// screens media, archives, and ciphertext cheaply; anything that shrinks
// is refined with gzip and zstd. Returns the best observed ratio in
// [0, 0.99]. Pure function of the sample bytes.
func Probe(sample []byte) float64 {
	if len(sample) == 0 {
		return 0
	}

	fast := ratioOf(len(sample), len(snappy.Encode(nil, sample)))
	if fast < snappyGate {
		return clampRatio(fast)
	}

	best := fast
	if r := gzipRatio(sample); r > best {
		best = r
	}
	if r := zstdRatio(sample); r > best {
		best = r
	}
	return clampRatio(best)
}

func gzipRatio(sample []byte) float64 {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return 0
	}
	if _, err := w.Write(sample); err != nil {
		return 0
	}
	if err := w.Close(); err != nil {
		return 0
	}
	return ratioOf(len(sample), buf.Len())
}

func zstdRatio(sample []byte) float64 {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return 0
	}
	defer enc.Close()
	return ratioOf(len(sample), len(enc.EncodeAll(sample, nil)))
}

func ratioOf(original, compressed int) float64 {
	if original <= 0 {
		return 0
	}
	return 1 - float64(compressed)/float64(original)
}
