package file

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
	"go.uber.org/zap"
)

// Compression identifies the compression of a file from its extension
type Compression string

const (
	// None is an uncompressed file
	None Compression = ""
	// LZ4 is a file compressed in the lz4 frame format
	LZ4 Compression = ".lz4"
	// Zstd is a file compressed in the zstd format
	Zstd Compression = ".zst"
)

// CompressionOf returns the Compression of the file at path
func CompressionOf(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lz4":
		return LZ4
	case ".zst", ".zstd":
		return Zstd
	default:
		return None
	}
}

// readCloser closes a decompressing reader and then the file beneath it
type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var firstErr error
	for _, c := range rc.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Open opens the file at path, decompressing it according to its extension
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch CompressionOf(path) {
	case LZ4:
		return &readCloser{Reader: lz4.NewReader(f), closers: []io.Closer{f}}, nil
	case Zstd:
		dec, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("unable to decompress %s: %w", path, err)
		}
		zr := dec.IOReadCloser()
		return &readCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
	default:
		return f, nil
	}
}

// Glob returns the regular files matching a glob, sorted. ** matches any number
// of directories. Matching no files is an error.
func Glob(glob string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(glob)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, name := range matches {
		info, err := os.Stat(name)
		if err != nil {
			continue
		}
		if info.Mode().IsRegular() {
			files = append(files, name)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("glob %s produced 0 files", glob)
	}
	sort.Strings(files)
	return files, nil
}

// ReadAll opens every file matching a glob in turn and hands it to fn
func ReadAll(glob string, logger *zap.Logger, fn func(path string, r io.Reader) error) error {
	paths, err := Glob(glob)
	if err != nil {
		return err
	}
	for _, path := range paths {
		r, err := Open(path)
		if err != nil {
			return err
		}
		logger.Debug("Reading input", zap.String("path", path), zap.String("compression", string(CompressionOf(path))))
		err = fn(path, r)
		if cerr := r.Close(); cerr != nil {
			logger.Warn("Unable to close input", zap.String("path", path), zap.Error(cerr))
		}
		if err != nil {
			return fmt.Errorf("unable to read %s: %w", path, err)
		}
	}
	return nil
}
