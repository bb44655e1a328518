// Package fs abstracts the file operations behind blob writes so that
// tests can inject I/O failures.
//
//   - [LocalFS]: the os package
//   - [FaultyFS]: wraps another FileSystem and fails writes, syncs, closes
//     or renames of files whose name matches a rule
//
// Reads are not covered: local blobs are memory-mapped.
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".pts", fs.Fault{FailOnSync: true})
//	store := blobstore.NewLocalStoreFS(dir, ffs)
package fs
