package shp

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"

	"github.com/hupe1980/geoknn/model"
)

const (
	// FileCode is the magic number at the start of every shapefile.
	FileCode = 9994
	// FileVersion is the only shapefile version in use.
	FileVersion = 1000
	// HeaderSize is the size of the shapefile main file header.
	HeaderSize = 100
	// RecordHeaderSize is the size of a record header (number + content length).
	RecordHeaderSize = 8

	pointContentSize = 4 + PointSize
	maxContentSize   = 1 << 24
)

// ShapeType identifies the geometry type of a shapefile or record.
type ShapeType int32

const (
	ShapeNull        ShapeType = 0
	ShapePoint       ShapeType = 1
	ShapePolyLine    ShapeType = 3
	ShapePolygon     ShapeType = 5
	ShapeMultiPoint  ShapeType = 8
	ShapePointZ      ShapeType = 11
	ShapePolyLineZ   ShapeType = 13
	ShapePolygonZ    ShapeType = 15
	ShapeMultiPointZ ShapeType = 18
	ShapePointM      ShapeType = 21
	ShapePolyLineM   ShapeType = 23
	ShapePolygonM    ShapeType = 25
	ShapeMultiPointM ShapeType = 28
	ShapeMultiPatch  ShapeType = 31
)

func (t ShapeType) String() string {
	switch t {
	case ShapeNull:
		return "Null"
	case ShapePoint:
		return "Point"
	case ShapePolyLine:
		return "PolyLine"
	case ShapePolygon:
		return "Polygon"
	case ShapeMultiPoint:
		return "MultiPoint"
	case ShapePointZ:
		return "PointZ"
	case ShapePolyLineZ:
		return "PolyLineZ"
	case ShapePolygonZ:
		return "PolygonZ"
	case ShapeMultiPointZ:
		return "MultiPointZ"
	case ShapePointM:
		return "PointM"
	case ShapePolyLineM:
		return "PolyLineM"
	case ShapePolygonM:
		return "PolygonM"
	case ShapeMultiPointM:
		return "MultiPointM"
	case ShapeMultiPatch:
		return "MultiPatch"
	default:
		return fmt.Sprintf("Unknown(%d)", int32(t))
	}
}

// Header is the 100-byte shapefile main file header.
type Header struct {
	FileLength int32 // Total file length in 16-bit words, header included
	Version    int32
	ShapeType  ShapeType
	Bound      model.Bound
	ZRange     [2]float64
	MRange     [2]float64
}

// DecodeHeader reads a shapefile header from c. The file code must be 9994
// and the shape type must be Point or Null.
func DecodeHeader(c *Cursor) (Header, error) {
	b, err := c.Bytes(HeaderSize)
	if err != nil {
		return Header{}, err
	}

	if code := int32(binary.BigEndian.Uint32(b[0:])); code != FileCode {
		return Header{}, fmt.Errorf("%w: file code %d", ErrInvalidHeader, code)
	}
	// Five unused big-endian int32 [4:24]
	h := Header{
		FileLength: int32(binary.BigEndian.Uint32(b[24:])),
		Version:    int32(binary.LittleEndian.Uint32(b[28:])),
		ShapeType:  ShapeType(int32(binary.LittleEndian.Uint32(b[32:]))),
	}
	f := func(off int) float64 { return math.Float64frombits(binary.LittleEndian.Uint64(b[off:])) }
	h.Bound = model.Bound{Min: model.Point{f(36), f(44)}, Max: model.Point{f(52), f(60)}}
	h.ZRange = [2]float64{f(68), f(76)}
	h.MRange = [2]float64{f(84), f(92)}

	if h.ShapeType != ShapePoint && h.ShapeType != ShapeNull {
		return Header{}, fmt.Errorf("%w: %s", ErrUnsupportedShape, h.ShapeType)
	}
	return h, nil
}

// AppendTo appends the encoded header to dst.
func (h Header) AppendTo(dst []byte) []byte {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(buf[0:], FileCode)
	binary.BigEndian.PutUint32(buf[24:], uint32(h.FileLength))
	binary.LittleEndian.PutUint32(buf[28:], uint32(h.Version))
	binary.LittleEndian.PutUint32(buf[32:], uint32(h.ShapeType))
	put := func(off int, v float64) { binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(v)) }
	put(36, h.Bound.Min.X())
	put(44, h.Bound.Min.Y())
	put(52, h.Bound.Max.X())
	put(60, h.Bound.Max.Y())
	put(68, h.ZRange[0])
	put(76, h.ZRange[1])
	put(84, h.MRange[0])
	put(92, h.MRange[1])
	return append(dst, buf...)
}

// ShapefileReader streams points from a shapefile main file. Null records
// are skipped; any other non-point record fails with ErrUnsupportedShape.
type ShapefileReader struct {
	r       *bufio.Reader
	header  Header
	hdrErr  error
	hdrRead bool
	off     int64
	limit   int64
	content []byte
}

// NewShapefileReader returns a reader over r. The header is read lazily.
func NewShapefileReader(r io.Reader) *ShapefileReader {
	return &ShapefileReader{r: bufio.NewReaderSize(r, defaultBufferSize)}
}

// Header returns the file header, reading it if necessary.
func (r *ShapefileReader) Header() (Header, error) {
	if !r.hdrRead {
		r.hdrRead = true
		r.header, r.hdrErr = r.readHeader()
	}
	return r.header, r.hdrErr
}

func (r *ShapefileReader) readHeader() (Header, error) {
	buf := make([]byte, HeaderSize)
	n, err := io.ReadFull(r.r, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return Header{}, err
	}
	h, err := DecodeHeader(NewCursor(buf[:n]))
	if err != nil {
		return Header{}, err
	}
	r.off = HeaderSize
	if words := int64(h.FileLength) * 2; words > HeaderSize {
		r.limit = words
	}
	return h, nil
}

// Next returns the next point, or io.EOF after the last record.
func (r *ShapefileReader) Next() (model.Point, error) {
	if _, err := r.Header(); err != nil {
		return model.Point{}, err
	}

	for {
		if r.limit > 0 && r.off >= r.limit {
			return model.Point{}, io.EOF
		}

		var rh [RecordHeaderSize]byte
		n, err := io.ReadFull(r.r, rh[:])
		if errors.Is(err, io.EOF) {
			return model.Point{}, io.EOF
		}
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
			return model.Point{}, err
		}
		c := &Cursor{buf: rh[:n], base: r.off}
		number, err := c.Int32BE()
		if err != nil {
			return model.Point{}, err
		}
		words, err := c.Int32BE()
		if err != nil {
			return model.Point{}, err
		}
		size := int(words) * 2
		if size < 4 || size > maxContentSize {
			return model.Point{}, fmt.Errorf("%w: record %d has content length %d", ErrDecode, number, size)
		}
		r.off += RecordHeaderSize

		if cap(r.content) < size {
			r.content = make([]byte, size)
		}
		content := r.content[:size]
		n, err = io.ReadFull(r.r, content)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return model.Point{}, err
		}
		c = &Cursor{buf: content[:n], base: r.off}
		r.off += int64(n)

		p, ok, err := decodeRecord(c, number)
		if err != nil {
			return model.Point{}, err
		}
		if ok {
			return p, nil
		}
	}
}

// All returns an iterator over the remaining points.
func (r *ShapefileReader) All() iter.Seq2[model.Point, error] {
	return drain(r.Next)
}

func decodeRecord(c *Cursor, number int32) (model.Point, bool, error) {
	st, err := c.Int32LE()
	if err != nil {
		return model.Point{}, false, err
	}
	switch ShapeType(st) {
	case ShapeNull:
		return model.Point{}, false, nil
	case ShapePoint:
		p, err := DecodePoint(c)
		if err != nil {
			return model.Point{}, false, err
		}
		return p, true, nil
	default:
		return model.Point{}, false, fmt.Errorf("%w: %s in record %d", ErrUnsupportedShape, ShapeType(st), number)
	}
}

// WriteShapefile writes pts as a Point shapefile main file.
func WriteShapefile(w io.Writer, pts []model.Point) error {
	size := HeaderSize + len(pts)*(RecordHeaderSize+pointContentSize)
	h := Header{
		FileLength: int32(size / 2),
		Version:    FileVersion,
		ShapeType:  ShapePoint,
		Bound:      model.BoundOf(pts),
	}

	bw := bufio.NewWriterSize(w, defaultBufferSize)
	if _, err := bw.Write(h.AppendTo(nil)); err != nil {
		return err
	}

	rec := make([]byte, 0, RecordHeaderSize+pointContentSize)
	for i, p := range pts {
		rec = binary.BigEndian.AppendUint32(rec[:0], uint32(i+1))
		rec = binary.BigEndian.AppendUint32(rec, pointContentSize/2)
		rec = binary.LittleEndian.AppendUint32(rec, uint32(ShapePoint))
		rec = AppendPoint(rec, p)
		if _, err := bw.Write(rec); err != nil {
			return err
		}
	}
	return bw.Flush()
}
