package partition

import (
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

var zstdDecoderPool sync.Pool

func getZstdDecoder(r io.Reader) (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		dec := v.(*zstd.Decoder)
		if err := dec.Reset(r); err != nil {
			dec.Close()
			return nil, err
		}
		return dec, nil
	}
	return zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
}

type zstdReadCloser struct {
	*zstd.Decoder
}

// Close returns the decoder to the pool. It is reset on the next use.
func (z zstdReadCloser) Close() error {
	zstdDecoderPool.Put(z.Decoder)
	return nil
}

// decompress wraps r in a decoder for c.
func decompress(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case CompressionZstd:
		dec, err := getZstdDecoder(r)
		if err != nil {
			return nil, fmt.Errorf("partition: zstd reader: %w", err)
		}
		return zstdReadCloser{dec}, nil
	default:
		return nil, fmt.Errorf("partition: unsupported compression %s", c)
	}
}

// compress wraps w in an encoder for c. Close flushes the frame but leaves w open.
func compress(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("partition: zstd writer: %w", err)
		}
		return enc, nil
	default:
		return nil, fmt.Errorf("partition: unsupported compression %s", c)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
