package shp

import (
	"bufio"
	"errors"
	"io"
	"iter"

	"github.com/hupe1980/geoknn/model"
)

const defaultBufferSize = 64 * 1024

// RecordReader streams back-to-back point records from an io.Reader.
type RecordReader struct {
	r   *bufio.Reader
	buf [PointSize]byte
	off int64
}

// NewRecordReader returns a RecordReader reading from r.
func NewRecordReader(r io.Reader) *RecordReader {
	return &RecordReader{r: bufio.NewReaderSize(r, defaultBufferSize)}
}

// Next decodes the next point. It returns io.EOF after the last complete
// record and a *DecodeError if the input ends inside a record.
func (r *RecordReader) Next() (model.Point, error) {
	n, err := io.ReadFull(r.r, r.buf[:])
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		return model.Point{}, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
	default:
		return model.Point{}, err
	}

	c := &Cursor{buf: r.buf[:n], base: r.off}
	p, err := DecodePoint(c)
	if err != nil {
		return model.Point{}, err
	}
	r.off += PointSize
	return p, nil
}

// Offset returns the number of bytes decoded so far.
func (r *RecordReader) Offset() int64 { return r.off }

// All returns an iterator over the remaining points. Iteration stops after
// the first error, which is yielded with a zero point.
func (r *RecordReader) All() iter.Seq2[model.Point, error] {
	return drain(r.Next)
}

// RecordWriter writes back-to-back point records.
type RecordWriter struct {
	w   *bufio.Writer
	buf []byte
	n   int
}

// NewRecordWriter returns a RecordWriter writing to w. Call Flush when done.
func NewRecordWriter(w io.Writer) *RecordWriter {
	return &RecordWriter{
		w:   bufio.NewWriterSize(w, defaultBufferSize),
		buf: make([]byte, 0, PointSize),
	}
}

// Write encodes a single point.
func (w *RecordWriter) Write(p model.Point) error {
	w.buf = AppendPoint(w.buf[:0], p)
	if _, err := w.w.Write(w.buf); err != nil {
		return err
	}
	w.n++
	return nil
}

// Count returns the number of points written.
func (w *RecordWriter) Count() int { return w.n }

// Flush writes any buffered data to the underlying writer.
func (w *RecordWriter) Flush() error {
	return w.w.Flush()
}

func drain(next func() (model.Point, error)) iter.Seq2[model.Point, error] {
	return func(yield func(model.Point, error) bool) {
		for {
			p, err := next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(model.Point{}, err)
				return
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}
