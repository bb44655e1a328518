package shp

import (
	"encoding/binary"
	"math"

	"github.com/hupe1980/geoknn/model"
)

// PointSize is the size of an encoded point record in bytes.
const PointSize = 16

// DecodePoint reads one point record (X then Y, little-endian float64) and
// advances the cursor by PointSize bytes. If fewer than PointSize bytes
// remain it returns a *DecodeError and the cursor is not moved.
func DecodePoint(c *Cursor) (model.Point, error) {
	b, err := c.next(PointSize)
	if err != nil {
		return model.Point{}, err
	}
	return model.Point{
		math.Float64frombits(binary.LittleEndian.Uint64(b[0:])),
		math.Float64frombits(binary.LittleEndian.Uint64(b[8:])),
	}, nil
}

// AppendPoint appends the point record for p to dst.
func AppendPoint(dst []byte, p model.Point) []byte {
	dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(p.X()))
	return binary.LittleEndian.AppendUint64(dst, math.Float64bits(p.Y()))
}

// DecodePoints decodes b as a sequence of back-to-back point records.
// A trailing fragment shorter than PointSize is a *DecodeError.
func DecodePoints(b []byte) ([]model.Point, error) {
	c := NewCursor(b)
	pts := make([]model.Point, 0, len(b)/PointSize)
	for c.Remaining() > 0 {
		p, err := DecodePoint(c)
		if err != nil {
			return nil, err
		}
		pts = append(pts, p)
	}
	return pts, nil
}

// EncodePoints encodes pts as back-to-back point records.
func EncodePoints(pts []model.Point) []byte {
	buf := make([]byte, 0, len(pts)*PointSize)
	for _, p := range pts {
		buf = AppendPoint(buf, p)
	}
	return buf
}
