// Package file opens job inputs from disk. A glob may name several files, which
// are read in lexical order. Files ending in .lz4 or .zst are decompressed
// transparently.
package file
