// Package frame wraps a serialized object in a two-byte envelope naming its
// wire format and compression, so a receiver can decode it without knowing
// either in advance.
//
//	byte 0   format      (1 binary, 2 text)
//	byte 1   compression (0 none, 1 brotli)
//	byte 2.. payload
package frame

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"go.uber.org/zap"

	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/internal/logging"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/binary"
	serrors "github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/errors"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/meta"
	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/text"
)

// Format identifies the wire format of a frame payload.
type Format byte

const (
	FormatBinary Format = 1
	FormatText   Format = 2
)

func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatText:
		return "text"
	default:
		return fmt.Sprintf("Format(%d)", byte(f))
	}
}

// ParseFormat maps "binary" and "text" to their Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "binary":
		return FormatBinary, nil
	case "text":
		return FormatText, nil
	default:
		return 0, fmt.Errorf("frame: unknown format %q", s)
	}
}

// Compression identifies how a frame payload is compressed.
type Compression byte

const (
	CompressionNone   Compression = 0
	CompressionBrotli Compression = 1
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionBrotli:
		return "brotli"
	default:
		return fmt.Sprintf("Compression(%d)", byte(c))
	}
}

// ParseCompression maps "none" and "brotli" to their Compression.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "none", "":
		return CompressionNone, nil
	case "brotli":
		return CompressionBrotli, nil
	default:
		return 0, fmt.Errorf("frame: unknown compression %q", s)
	}
}

const (
	HeaderSize = 2

	// DefaultMaxPayload caps the size of a payload after decompression.
	DefaultMaxPayload = 16 << 20
)

// Options controls how frames are built and how much a decoder accepts.
type Options struct {
	Format      Format
	Compression Compression
	// Quality is the brotli quality level, 0 to 11.
	Quality int
	// MaxPayload caps the uncompressed payload size. Zero means
	// DefaultMaxPayload.
	MaxPayload int
}

// DefaultOptions returns binary, uncompressed frames.
func DefaultOptions() Options {
	return Options{
		Format:      FormatBinary,
		Compression: CompressionNone,
		Quality:     brotli.DefaultCompression,
		MaxPayload:  DefaultMaxPayload,
	}
}

func (o Options) maxPayload() int {
	if o.MaxPayload <= 0 {
		return DefaultMaxPayload
	}
	return o.MaxPayload
}

// Header is the decoded envelope of a frame.
type Header struct {
	Format      Format
	Compression Compression
}

// ParseHeader splits a frame into its header and the still compressed
// payload.
func ParseHeader(data []byte) (Header, []byte, error) {
	if len(data) < HeaderSize {
		return Header{}, nil, serrors.New(serrors.ErrMalformedInput, "parse header", "frame of %d bytes is shorter than its header", len(data))
	}
	h := Header{Format: Format(data[0]), Compression: Compression(data[1])}
	switch h.Format {
	case FormatBinary, FormatText:
	default:
		return Header{}, nil, serrors.New(serrors.ErrMalformedInput, "parse header", "unknown format byte %d", data[0])
	}
	switch h.Compression {
	case CompressionNone, CompressionBrotli:
	default:
		return Header{}, nil, serrors.New(serrors.ErrMalformedInput, "parse header", "unknown compression byte %d", data[1])
	}
	return h, data[HeaderSize:], nil
}

// Encode serializes instance with t and wraps the result in a frame.
func Encode(instance any, t meta.Type, opts Options) ([]byte, error) {
	var payload []byte
	switch opts.Format {
	case FormatBinary:
		b, err := binary.Marshal(instance, t)
		if err != nil {
			return nil, err
		}
		payload = b
	case FormatText:
		s, err := text.Marshal(instance, t)
		if err != nil {
			return nil, err
		}
		payload = []byte(s)
	default:
		return nil, fmt.Errorf("frame: unknown format %s", opts.Format)
	}
	return Wrap(Header{Format: opts.Format, Compression: opts.Compression}, payload, opts)
}

// Wrap frames an already serialized payload.
func Wrap(h Header, payload []byte, opts Options) ([]byte, error) {
	if len(payload) > opts.maxPayload() {
		return nil, serrors.New(serrors.ErrOutOfRange, "wrap", "payload of %d bytes exceeds limit %d", len(payload), opts.maxPayload())
	}
	var buf bytes.Buffer
	buf.Grow(HeaderSize + len(payload))
	buf.WriteByte(byte(h.Format))
	buf.WriteByte(byte(h.Compression))

	switch h.Compression {
	case CompressionNone:
		buf.Write(payload)
	case CompressionBrotli:
		zw := brotli.NewWriterLevel(&buf, opts.Quality)
		if _, err := zw.Write(payload); err != nil {
			return nil, fmt.Errorf("frame: compress: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("frame: compress: %w", err)
		}
	default:
		return nil, fmt.Errorf("frame: unknown compression %s", h.Compression)
	}

	logging.Named("frame").Debug("encoded frame",
		zap.Stringer("format", h.Format),
		zap.Stringer("compression", h.Compression),
		zap.Int("payload", len(payload)),
		zap.Int("frame", buf.Len()))
	return buf.Bytes(), nil
}

// Unwrap returns the header and uncompressed payload of a frame.
func Unwrap(data []byte, opts Options) (Header, []byte, error) {
	h, body, err := ParseHeader(data)
	if err != nil {
		return Header{}, nil, err
	}
	limit := opts.maxPayload()
	switch h.Compression {
	case CompressionBrotli:
		payload, err := io.ReadAll(io.LimitReader(brotli.NewReader(bytes.NewReader(body)), int64(limit)+1))
		if err != nil {
			return Header{}, nil, serrors.Wrap(serrors.ErrMalformedInput, "decompress", err, "brotli payload")
		}
		body = payload
	}
	if len(body) > limit {
		return Header{}, nil, serrors.New(serrors.ErrOutOfRange, "unwrap", "payload exceeds limit %d", limit)
	}
	return h, body, nil
}

// Deserializer returns a deserializer for the payload of a frame.
func Deserializer(data []byte, opts Options) (meta.Deserializer, Header, error) {
	h, payload, err := Unwrap(data, opts)
	if err != nil {
		return nil, Header{}, err
	}
	if h.Format == FormatText {
		return text.NewDeserializer(string(payload)), h, nil
	}
	return binary.NewDeserializer(payload), h, nil
}

// Decode reads the object carried by a frame through root. Any failure
// past the envelope is reported only as ErrNoResult.
func Decode(data []byte, root *meta.Root, opts Options) (any, meta.Type, error) {
	d, _, err := Deserializer(data, opts)
	if err != nil {
		return nil, nil, err
	}
	instance, t, ok := root.Deserialize(d)
	if !ok {
		return nil, nil, serrors.ErrNoResult
	}
	return instance, t, nil
}

// DecodeStrict is Decode without the recovery boundary: it returns the
// cause of a failure.
func DecodeStrict(data []byte, root *meta.Root, opts Options) (any, meta.Type, error) {
	d, _, err := Deserializer(data, opts)
	if err != nil {
		return nil, nil, err
	}
	return root.Resolve(d)
}
