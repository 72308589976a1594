package protocol

import (
	"bytes"
	"io"

	"github.com/andybalholm/brotli"

	"github.com/vango-dev/graft/internal/errors"
	"github.com/vango-dev/graft/pkg/patch"
)

// Frame constants.
const (
	// FrameHeaderSize is the size of the frame header in bytes.
	FrameHeaderSize = 6

	// DefaultMaxFrameSize is the default payload limit (4MB).
	DefaultMaxFrameSize = 4 * 1024 * 1024

	// DefaultCompressThreshold is the payload size above which frames are
	// compressed by the default codec.
	DefaultCompressThreshold = 8 * 1024
)

// Kind identifies the type of frame.
type Kind uint8

const (
	KindHello  Kind = 0x00 // connection accepted, carries Conn
	KindResult Kind = 0x01 // hydration result for one document
	KindError  Kind = 0x02 // the document could not be hydrated
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindHello:
		return "Hello"
	case KindResult:
		return "Result"
	case KindError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Flags are per-frame options.
type Flags uint8

const (
	FlagCompressed Flags = 0x01 // payload is brotli-compressed
)

// Has reports whether ff contains flag.
func (ff Flags) Has(flag Flags) bool {
	return ff&flag != 0
}

// Frame is one message of the live preview channel.
type Frame struct {
	Kind        Kind
	Seq         uint64
	Conn        string
	HTML        string
	Diagnostics []string
	Stats       patch.Stats
}

// Codec encodes and decodes frames.
type Codec struct {
	// MaxFrameSize bounds the payload before and after decompression.
	MaxFrameSize int

	// CompressThreshold is the payload size above which Encode compresses.
	// Zero or less disables compression.
	CompressThreshold int
}

// DefaultCodec is used by the package-level functions.
var DefaultCodec = &Codec{
	MaxFrameSize:      DefaultMaxFrameSize,
	CompressThreshold: DefaultCompressThreshold,
}

// Encode encodes f with DefaultCodec.
func Encode(f *Frame) ([]byte, error) { return DefaultCodec.Encode(f) }

// Decode decodes a frame with DefaultCodec.
func Decode(data []byte) (*Frame, error) { return DefaultCodec.Decode(data) }

func (c *Codec) limit() int {
	if c.MaxFrameSize <= 0 {
		return DefaultMaxFrameSize
	}
	return c.MaxFrameSize
}

// Encode returns the header and payload of f.
func (c *Codec) Encode(f *Frame) ([]byte, error) {
	e := NewEncoder()
	e.WriteUvarint(f.Seq)
	e.WriteString(f.Conn)
	e.WriteString(f.HTML)
	e.WriteUvarint(uint64(len(f.Diagnostics)))
	for _, d := range f.Diagnostics {
		e.WriteString(d)
	}
	for _, n := range statsFields(&f.Stats) {
		e.WriteUvarint(uint64(*n))
	}

	payload := e.Bytes()
	var flags Flags
	if c.CompressThreshold > 0 && len(payload) > c.CompressThreshold {
		var buf bytes.Buffer
		w := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
		if _, err := w.Write(payload); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		payload = buf.Bytes()
		flags |= FlagCompressed
	}
	if len(payload) > c.limit() {
		return nil, errors.New("E061").WithDetailf("payload of %d bytes", len(payload))
	}

	out := make([]byte, 0, FrameHeaderSize+len(payload))
	out = append(out, byte(f.Kind), byte(flags))
	n := uint32(len(payload))
	out = append(out, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	return append(out, payload...), nil
}

// Decode parses one frame. Trailing bytes after the payload are an error.
func (c *Codec) Decode(data []byte) (*Frame, error) {
	if len(data) < FrameHeaderSize {
		return nil, truncated(io.ErrUnexpectedEOF)
	}
	kind, flags, length := Kind(data[0]), Flags(data[1]), header(data)
	if kind > KindError {
		return nil, errors.New("E060").WithDetailf("unknown frame kind 0x%02x", uint8(kind))
	}
	if length > c.limit() {
		return nil, errors.New("E061").WithDetailf("payload of %d bytes", length)
	}
	if len(data)-FrameHeaderSize != length {
		return nil, truncated(io.ErrUnexpectedEOF).WithDetailf("header says %d bytes, have %d", length, len(data)-FrameHeaderSize)
	}

	payload := data[FrameHeaderSize:]
	if flags.Has(FlagCompressed) {
		raw, err := io.ReadAll(io.LimitReader(brotli.NewReader(bytes.NewReader(payload)), int64(c.limit())+1))
		if err != nil {
			return nil, truncated(err)
		}
		if len(raw) > c.limit() {
			return nil, errors.New("E061").WithDetail("decompressed payload over limit")
		}
		payload = raw
	}

	f, err := c.decodePayload(kind, payload)
	if err != nil {
		if errors.CodeOf(err) != "" {
			return nil, err
		}
		return nil, truncated(err)
	}
	return f, nil
}

func (c *Codec) decodePayload(kind Kind, payload []byte) (*Frame, error) {
	d := NewDecoder(payload)
	d.max = c.limit()
	f := &Frame{Kind: kind}

	var err error
	if f.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if f.Conn, err = d.ReadString(); err != nil {
		return nil, err
	}
	if f.HTML, err = d.ReadString(); err != nil {
		return nil, err
	}
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if count > 0 {
		f.Diagnostics = make([]string, count)
		for i := range f.Diagnostics {
			if f.Diagnostics[i], err = d.ReadString(); err != nil {
				return nil, err
			}
		}
	}
	for _, n := range statsFields(&f.Stats) {
		v, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		*n = int(v)
	}
	if !d.EOF() {
		return nil, errors.New("E060").WithDetailf("%d trailing bytes", d.Remaining())
	}
	return f, nil
}

// ReadFrame reads one frame from r.
func (c *Codec) ReadFrame(r io.Reader) (*Frame, error) {
	head := make([]byte, FrameHeaderSize)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, truncated(err)
	}
	length := header(head)
	if length > c.limit() {
		return nil, errors.New("E061").WithDetailf("payload of %d bytes", length)
	}
	data := make([]byte, FrameHeaderSize+length)
	copy(data, head)
	if _, err := io.ReadFull(r, data[FrameHeaderSize:]); err != nil {
		return nil, truncated(err)
	}
	return c.Decode(data)
}

// WriteFrame encodes f and writes it to w.
func (c *Codec) WriteFrame(w io.Writer, f *Frame) error {
	data, err := c.Encode(f)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func header(data []byte) int {
	return int(uint32(data[2])<<24 | uint32(data[3])<<16 | uint32(data[4])<<8 | uint32(data[5]))
}

func truncated(err error) *errors.Error {
	return errors.New("E060").Wrap(err)
}

func statsFields(s *patch.Stats) []*int {
	return []*int{&s.Creates, &s.Moves, &s.Removes, &s.SetAttrs, &s.RemoveAttrs, &s.SetStyles, &s.SetTexts}
}
