// Package mmap provides read-only memory-mapped file access.
//
// The local blob store maps partition files so that point records are decoded
// straight from the page cache without an intermediate copy.
//
//	f, err := mmap.Open("part-0000.pts")
//	if err != nil { ... }
//	defer f.Close()
//
//	data := f.Bytes()
//	f.Advise(mmap.AccessSequential)
//
// Unix platforms use mmap(2) and madvise(2); Windows uses
// CreateFileMapping/MapViewOfFile and ignores access hints.
//
// A File is safe for concurrent reads. Close is idempotent, but callers must
// not touch slices returned by Bytes after Close returns.
package mmap
