// Package shp decodes binary point geometries.
//
// The basic unit is the point record: 16 bytes holding two little-endian
// IEEE-754 doubles, X then Y. DecodePoint reads exactly one record from a
// Cursor and performs no validation of the values, so NaN and infinities
// pass through bit-exact.
//
// # Streams
//
//   - RecordReader / RecordWriter: back-to-back point records with no
//     framing (the ".pts" layout)
//   - ShapefileReader / WriteShapefile: ESRI shapefile main files (".shp")
//     restricted to Point and Null shapes
//
// Truncated input always fails with a *DecodeError (errors.Is(err,
// ErrDecode)) and never yields a partial point.
package shp
