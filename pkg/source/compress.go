package source

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// compressedSuffix marks zstd-compressed snapshot and output files.
const compressedSuffix = ".zst"

// Open opens path for reading, transparently decoding zstd when the name
// carries the .zst suffix.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, compressedSuffix) {
		return f, nil
	}
	zr, err := newZstdReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &chainedCloser{ReadCloser: zr, underlying: f}, nil
}

// WriteFile writes data to path, compressing with zstd when the name
// carries the .zst suffix.
func WriteFile(path string, data []byte) error {
	if strings.HasSuffix(path, compressedSuffix) {
		compressed, err := compressZstd(data)
		if err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		data = compressed
	}
	return os.WriteFile(path, data, 0o644)
}

func compressZstd(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

// newZstdReader wraps an io.Reader with zstd decompression.
func newZstdReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &zstdReadCloser{dec: dec}, nil
}

type zstdReadCloser struct {
	dec *zstd.Decoder
}

func (z *zstdReadCloser) Read(p []byte) (int, error) {
	return z.dec.Read(p)
}

func (z *zstdReadCloser) Close() error {
	z.dec.Close()
	return nil
}

// chainedCloser closes the decoder first, then the file beneath it.
type chainedCloser struct {
	io.ReadCloser
	underlying io.Closer
}

func (c *chainedCloser) Close() error {
	err := c.ReadCloser.Close()
	if uerr := c.underlying.Close(); err == nil {
		err = uerr
	}
	return err
}
