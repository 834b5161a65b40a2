// Package codec selects a compression codec from a file name and wraps
// files in the matching decompressor or compressor.
package codec

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Codec identifies a compression format.
type Codec string

const (
	None   Codec = "none"
	Gzip   Codec = "gzip"
	Brotli Codec = "brotli"
	Zstd   Codec = "zstd"
)

// ForPath picks the codec from the file extension. Unknown extensions are
// treated as uncompressed.
func ForPath(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return Gzip
	case ".br":
		return Brotli
	case ".zst":
		return Zstd
	default:
		return None
	}
}

// NewReader wraps r in the decompressor for c. Closing the result releases
// the decompressor only; r stays open.
func NewReader(c Codec, r io.Reader) (io.ReadCloser, error) {
	switch c {
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return zr, nil
	case Brotli:
		return io.NopCloser(brotli.NewReader(r)), nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		return zr.IOReadCloser(), nil
	case None, "":
		return io.NopCloser(r), nil
	default:
		return nil, fmt.Errorf("unknown codec %q", c)
	}
}

// NewWriter wraps w in the compressor for c. Closing the result flushes the
// compressor; w stays open.
func NewWriter(c Codec, w io.Writer) (io.WriteCloser, error) {
	switch c {
	case Gzip:
		return gzip.NewWriter(w), nil
	case Brotli:
		return brotli.NewWriter(w), nil
	case Zstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		return zw, nil
	case None, "":
		return nopWriteCloser{w}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", c)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// Open opens path for reading through the codec chosen by its extension.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	r, err := NewReader(ForPath(path), f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open input %s: %w", path, err)
	}
	return &layeredReader{ReadCloser: r, file: f}, nil
}

// Create creates (or truncates) path for writing through the codec chosen by
// its extension.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	w, err := NewWriter(ForPath(path), f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create output %s: %w", path, err)
	}
	return &layeredWriter{WriteCloser: w, file: f}, nil
}

type layeredReader struct {
	io.ReadCloser
	file *os.File
}

func (l *layeredReader) Close() error {
	return errors.Join(l.ReadCloser.Close(), l.file.Close())
}

type layeredWriter struct {
	io.WriteCloser
	file *os.File
}

// Flush pushes everything written so far through the compressor to the file,
// so a reader sees a decodable prefix.
func (l *layeredWriter) Flush() error {
	if f, ok := l.WriteCloser.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes the compressor before closing the file.
func (l *layeredWriter) Close() error {
	return errors.Join(l.WriteCloser.Close(), l.file.Close())
}
