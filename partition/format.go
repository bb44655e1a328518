package partition

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrUnknownFormat is returned for blob names whose encoding cannot be inferred.
var ErrUnknownFormat = errors.New("partition: unknown format")

// Format is the encoding of a partition blob.
type Format uint8

const (
	// FormatRecords is back-to-back 16-byte point records.
	FormatRecords Format = iota + 1
	// FormatShapefile is an ESRI shapefile main file with point records.
	FormatShapefile
	// FormatParquet is a Parquet file with x and y DOUBLE columns.
	FormatParquet
)

// String returns the file extension of the format without the dot.
func (f Format) String() string {
	switch f {
	case FormatRecords:
		return "pts"
	case FormatShapefile:
		return "shp"
	case FormatParquet:
		return "parquet"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// ParseFormat parses a format name as produced by String.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "pts":
		return FormatRecords, nil
	case "shp":
		return FormatShapefile, nil
	case "parquet":
		return FormatParquet, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Compression is the stream compression applied on top of a format.
type Compression uint8

const (
	// CompressionNone stores the format as is.
	CompressionNone Compression = iota
	// CompressionLZ4 wraps the stream in an LZ4 frame.
	CompressionLZ4
	// CompressionZstd wraps the stream in a Zstandard frame.
	CompressionZstd
)

// String returns the file extension of the compression without the dot.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return ""
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zst"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name. The empty string and "none"
// mean CompressionNone.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zst", "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("partition: unknown compression %q", s)
	}
}

// FormatFromName infers format and compression from a blob name such as
// "part-0000.pts.zst". Parquet carries its own compression and cannot be
// wrapped.
func FormatFromName(name string) (Format, Compression, error) {
	base := path.Base(name)
	comp := CompressionNone
	switch ext := path.Ext(base); ext {
	case ".lz4":
		comp = CompressionLZ4
		base = strings.TrimSuffix(base, ext)
	case ".zst":
		comp = CompressionZstd
		base = strings.TrimSuffix(base, ext)
	}

	f, err := ParseFormat(strings.TrimPrefix(path.Ext(base), "."))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
	if f == FormatParquet && comp != CompressionNone {
		return 0, 0, fmt.Errorf("%w: %s: parquet cannot be stream-compressed", ErrUnknownFormat, name)
	}
	return f, comp, nil
}

// FileName returns the blob file name for a base name, format and compression.
func FileName(base string, f Format, c Compression) string {
	name := base + "." + f.String()
	if c != CompressionNone {
		name += "." + c.String()
	}
	return name
}
