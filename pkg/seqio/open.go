package seqio

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Stdio is the path naming standard input or standard output.
const Stdio = "-"

// Compression identifies a stream compression format.
type Compression string

// Supported compression formats.
const (
	NoCompression Compression = ""
	Gzip          Compression = "gzip"
	Zstd          Compression = "zstd"
	LZ4           Compression = "lz4"
	Bzip2         Compression = "bzip2"
)

var (
	magicGzip  = []byte{0x1f, 0x8b}
	magicZstd  = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicLZ4   = []byte{0x04, 0x22, 0x4d, 0x18}
	magicBzip2 = []byte("BZh")
)

var suffixes = []struct {
	suffix string
	comp   Compression
}{
	{".gz", Gzip},
	{".gzip", Gzip},
	{".zst", Zstd},
	{".zstd", Zstd},
	{".lz4", LZ4},
	{".bz2", Bzip2},
}

// ErrBzip2Write is returned by Create for .bz2 paths.
var ErrBzip2Write = errors.New("bzip2 output is not supported")

// CompressionFromPath returns the compression implied by path's suffix.
func CompressionFromPath(path string) Compression {
	lower := strings.ToLower(path)

	for _, s := range suffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return s.comp
		}
	}

	return NoCompression
}

// StripCompressionSuffix removes a recognized compression suffix from path.
func StripCompressionSuffix(path string) string {
	lower := strings.ToLower(path)

	for _, s := range suffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return path[:len(path)-len(s.suffix)]
		}
	}

	return path
}

func sniffCompression(head []byte) Compression {
	switch {
	case bytes.HasPrefix(head, magicGzip):
		return Gzip
	case bytes.HasPrefix(head, magicZstd):
		return Zstd
	case bytes.HasPrefix(head, magicLZ4):
		return LZ4
	case bytes.HasPrefix(head, magicBzip2):
		return Bzip2
	}

	return NoCompression
}

// multiCloser closes every closer in order and joins the errors.
type multiCloser struct {
	io.Reader

	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var errs []error

	for _, c := range m.closers {
		errs = append(errs, c.Close())
	}

	return errors.Join(errs...)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Open opens path for reading and transparently decompresses it.
// Compression is detected from magic bytes, falling back to the path
// suffix. Stdio reads standard input, which is never closed.
func Open(path string) (io.ReadCloser, error) {
	var (
		src   io.Reader
		owner io.Closer
	)

	if path == Stdio {
		src, owner = os.Stdin, closerFunc(func() error { return nil })
	} else {
		fh, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}

		src, owner = fh, fh
	}

	buffered := bufio.NewReader(src)

	// A short or failed peek leaves too few bytes to sniff; the suffix decides.
	head, _ := buffered.Peek(len(magicZstd))

	comp := sniffCompression(head)
	if comp == NoCompression {
		comp = CompressionFromPath(path)
	}

	rc, err := decompress(buffered, comp, owner)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("open %s: %w", path, err), owner.Close())
	}

	return rc, nil
}

func decompress(r io.Reader, comp Compression, owner io.Closer) (io.ReadCloser, error) {
	switch comp {
	case Gzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}

		return &multiCloser{Reader: gz, closers: []io.Closer{gz, owner}}, nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}

		release := closerFunc(func() error {
			zr.Close()

			return nil
		})

		return &multiCloser{Reader: zr, closers: []io.Closer{release, owner}}, nil
	case LZ4:
		return &multiCloser{Reader: lz4.NewReader(r), closers: []io.Closer{owner}}, nil
	case Bzip2:
		return &multiCloser{Reader: bzip2.NewReader(r), closers: []io.Closer{owner}}, nil
	case NoCompression:
	}

	return &multiCloser{Reader: r, closers: []io.Closer{owner}}, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

type writeCloser struct {
	io.Writer

	closers []io.Closer
}

func (w *writeCloser) Close() error {
	var errs []error

	for _, c := range w.closers {
		errs = append(errs, c.Close())
	}

	return errors.Join(errs...)
}

// Create opens path for writing, compressing according to its suffix.
// Stdio writes to standard output, which is never closed.
func Create(path string) (io.WriteCloser, error) {
	comp := CompressionFromPath(path)
	if comp == Bzip2 {
		return nil, fmt.Errorf("create %s: %w", path, ErrBzip2Write)
	}

	var sink io.WriteCloser

	if path == Stdio {
		sink = nopWriteCloser{os.Stdout}
	} else {
		fh, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", path, err)
		}

		sink = fh
	}

	return compress(sink, comp)
}

func compress(sink io.WriteCloser, comp Compression) (io.WriteCloser, error) {
	switch comp {
	case Gzip:
		gz := gzip.NewWriter(sink)

		return &writeCloser{Writer: gz, closers: []io.Closer{gz, sink}}, nil
	case Zstd:
		zw, err := zstd.NewWriter(sink)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("zstd: %w", err), sink.Close())
		}

		return &writeCloser{Writer: zw, closers: []io.Closer{zw, sink}}, nil
	case LZ4:
		lw := lz4.NewWriter(sink)

		return &writeCloser{Writer: lw, closers: []io.Closer{lw, sink}}, nil
	case NoCompression, Bzip2:
	}

	return sink, nil
}
