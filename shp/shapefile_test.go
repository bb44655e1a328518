package shp

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/hupe1980/geoknn/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r *ShapefileReader) ([]model.Point, error) {
	t.Helper()
	var pts []model.Point
	for p, err := range r.All() {
		if err != nil {
			return pts, err
		}
		pts = append(pts, p)
	}
	return pts, nil
}

func TestShapefileRoundTrip(t *testing.T) {
	pts := []model.Point{{1, 0}, {2, 2}, {-1, -1}, {0.5, 3}}

	var buf bytes.Buffer
	require.NoError(t, WriteShapefile(&buf, pts))
	assert.Equal(t, HeaderSize+len(pts)*28, buf.Len())

	r := NewShapefileReader(bytes.NewReader(buf.Bytes()))
	h, err := r.Header()
	require.NoError(t, err)
	assert.Equal(t, ShapePoint, h.ShapeType)
	assert.Equal(t, int32(FileVersion), h.Version)
	assert.Equal(t, int32(buf.Len()/2), h.FileLength)
	assert.Equal(t, model.Point{-1, -1}, h.Bound.Min)
	assert.Equal(t, model.Point{2, 3}, h.Bound.Max)

	got, err := readAll(t, r)
	require.NoError(t, err)
	assert.Equal(t, pts, got)
}

func TestShapefileEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteShapefile(&buf, nil))

	got, err := readAll(t, NewShapefileReader(&buf))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestShapefileSkipsNullRecords(t *testing.T) {
	h := Header{Version: FileVersion, ShapeType: ShapePoint}
	data := h.AppendTo(nil)
	data = appendNullRecord(data, 1)
	data = appendPointRecord(data, 2, model.Point{7, 8})
	data = appendNullRecord(data, 3)

	got, err := readAll(t, NewShapefileReader(bytes.NewReader(data)))
	require.NoError(t, err)
	assert.Equal(t, []model.Point{{7, 8}}, got)
}

func TestShapefileUnsupportedRecord(t *testing.T) {
	h := Header{Version: FileVersion, ShapeType: ShapePoint}
	data := h.AppendTo(nil)
	data = binary.BigEndian.AppendUint32(data, 1)
	data = binary.BigEndian.AppendUint32(data, 2)
	data = binary.LittleEndian.AppendUint32(data, uint32(ShapePolygon))

	_, err := readAll(t, NewShapefileReader(bytes.NewReader(data)))
	assert.ErrorIs(t, err, ErrUnsupportedShape)
}

func TestShapefileUnsupportedHeader(t *testing.T) {
	h := Header{Version: FileVersion, ShapeType: ShapePolyLine}
	_, err := NewShapefileReader(bytes.NewReader(h.AppendTo(nil))).Header()
	assert.ErrorIs(t, err, ErrUnsupportedShape)
}

func TestShapefileInvalidFileCode(t *testing.T) {
	data := Header{ShapeType: ShapePoint}.AppendTo(nil)
	binary.BigEndian.PutUint32(data[0:], 1234)

	_, err := NewShapefileReader(bytes.NewReader(data)).Header()
	assert.ErrorIs(t, err, ErrInvalidHeader)
}

func TestShapefileTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteShapefile(&buf, []model.Point{{1, 2}, {3, 4}}))
	data := buf.Bytes()[:buf.Len()-6]

	got, err := readAll(t, NewShapefileReader(bytes.NewReader(data)))
	assert.ErrorIs(t, err, ErrDecode)
	assert.Equal(t, []model.Point{{1, 2}}, got)
}

func TestShapefileShortHeader(t *testing.T) {
	_, err := NewShapefileReader(bytes.NewReader(make([]byte, 40))).Header()
	assert.ErrorIs(t, err, ErrDecode)
}

func TestShapeTypeString(t *testing.T) {
	assert.Equal(t, "Point", ShapePoint.String())
	assert.Equal(t, "Null", ShapeNull.String())
	assert.Equal(t, "Unknown(99)", ShapeType(99).String())
}

func appendNullRecord(dst []byte, number uint32) []byte {
	dst = binary.BigEndian.AppendUint32(dst, number)
	dst = binary.BigEndian.AppendUint32(dst, 2)
	return binary.LittleEndian.AppendUint32(dst, uint32(ShapeNull))
}

func appendPointRecord(dst []byte, number uint32, p model.Point) []byte {
	dst = binary.BigEndian.AppendUint32(dst, number)
	dst = binary.BigEndian.AppendUint32(dst, 10)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(ShapePoint))
	return AppendPoint(dst, p)
}
