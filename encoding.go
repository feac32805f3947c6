package wabinary

import (
	"encoding/binary"
	"fmt"
)

const maxByteLength = 1 << 32

// Option configures an Encoder
type Option func(*Encoder)

// WithJIDParser replaces ParseJID as the parser used to detect addresses
// while classifying strings
func WithJIDParser(parse func(string) (JID, bool)) Option {
	return func(e *Encoder) {
		e.parseJID = parse
	}
}

// Encoder turns Nodes into their binary wire form. It never mutates its
// tables, so a single Encoder may be shared between goroutines.
type Encoder struct {
	tables   *Tables
	parseJID func(string) (JID, bool)
}

func NewEncoder(t *Tables, opts ...Option) *Encoder {
	e := &Encoder{
		tables:   t,
		parseJID: ParseJID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode encodes n with tables t, prefixed by the single zero marker byte
func Encode(n Node, t *Tables) ([]byte, error) {
	return NewEncoder(t).Encode(n)
}

// Encode encodes n, prefixed by the single zero marker byte
func (e *Encoder) Encode(n Node) ([]byte, error) {
	return e.AppendNode([]byte{0}, n)
}

// AppendNode appends the encoding of n to dst and returns the extended
// slice. On error the result is nil and dst must be considered garbage.
func (e *Encoder) AppendNode(dst []byte, n Node) (res []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("recovered panic in Encode: %s", r)
		}
	}()

	w := &nodeWriter{enc: e, tags: &e.tables.Tags, buf: dst}
	if err := w.writeNode(n); err != nil {
		return nil, err
	}
	return w.buf, nil
}

// nodeWriter is the accumulator of one encode call. It is created per call
// and never shared.
type nodeWriter struct {
	enc  *Encoder
	tags *Tags
	buf  []byte
}

func (w *nodeWriter) pushByte(v uint8) {
	w.buf = append(w.buf, v)
}

// pushInt writes the low n bytes of v, most significant first unless
// littleEndian is set
func (w *nodeWriter) pushInt(v uint64, n int, littleEndian bool) {
	for i := 0; i < n; i++ {
		shift := n - 1 - i
		if littleEndian {
			shift = i
		}
		w.buf = append(w.buf, byte(v>>(uint(shift)*8)))
	}
}

func (w *nodeWriter) pushBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *nodeWriter) pushInt16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

// pushInt20 writes the low 20 bits of v in three bytes. Bits above bit 19
// are dropped.
func (w *nodeWriter) pushInt20(v uint32) {
	w.buf = append(w.buf, byte((v>>16)&0x0F), byte(v>>8), byte(v))
}

// writeByteLength writes the narrowest length prefix for length. Nothing is
// written when the length cannot be represented.
func (w *nodeWriter) writeByteLength(length uint64) error {
	switch {
	case length >= maxByteLength:
		return fmt.Errorf("%w: %d", ErrEncodingTooLarge, length)
	case length >= 1<<20:
		w.pushByte(w.tags.Binary32)
		w.pushInt(length, 4, false)
	case length >= 256:
		w.pushByte(w.tags.Binary20)
		w.pushInt20(uint32(length))
	default:
		w.pushByte(w.tags.Binary8)
		w.pushByte(uint8(length))
	}
	return nil
}

func (w *nodeWriter) writeStringRaw(s string) error {
	if err := w.writeByteLength(uint64(len(s))); err != nil {
		return err
	}
	w.buf = append(w.buf, s...)
	return nil
}

func (w *nodeWriter) writeJID(jid JID) error {
	if jid.Device != nil {
		var domainType uint8
		if jid.DomainType != nil {
			domainType = *jid.DomainType
		}
		w.pushByte(w.tags.ADJID)
		w.pushByte(domainType)
		w.pushByte(*jid.Device)
		return w.writeString(jid.User)
	}

	w.pushByte(w.tags.JIDPair)
	if jid.User != "" {
		if err := w.writeString(jid.User); err != nil {
			return err
		}
	} else {
		w.pushByte(w.tags.ListEmpty)
	}
	return w.writeString(jid.Server)
}

// writeString picks the most compact representation of s: dictionary
// token, nibble packing, hex packing, address, then plain bytes.
func (w *nodeWriter) writeString(s string) error {
	if s == "" {
		return w.writeStringRaw("")
	}

	if tok, ok := w.enc.tables.Tokens[s]; ok {
		if tok.Dict != nil {
			w.pushByte(w.tags.Dictionary0 + *tok.Dict)
		}
		w.pushByte(tok.Index)
		return nil
	}

	switch {
	case isNibble(s, w.tags.PackedMax):
		return w.writePackedBytes(s, nibbleAlphabet)
	case isHex(s, w.tags.PackedMax):
		return w.writePackedBytes(s, hexAlphabet)
	}

	if jid, ok := w.enc.parseJID(s); ok {
		return w.writeJID(jid)
	}
	return w.writeStringRaw(s)
}

func (w *nodeWriter) writeListStart(size int) {
	switch {
	case size == 0:
		w.pushByte(w.tags.ListEmpty)
	case size < 256:
		w.pushByte(w.tags.List8)
		w.pushByte(uint8(size))
	default:
		w.pushByte(w.tags.List16)
		w.pushInt16(uint16(size))
	}
}

func (w *nodeWriter) writeNode(n Node) error {
	// Header list: tag, a key and value per attribute, and the content
	size := 2*len(n.Attrs) + 1
	if n.Content != nil {
		size++
	}
	w.writeListStart(size)

	if err := w.writeString(n.Tag); err != nil {
		return err
	}

	for _, attr := range n.Attrs {
		if err := w.writeString(attr.Key); err != nil {
			return err
		}
		if err := w.writeString(attr.Value); err != nil {
			return err
		}
	}

	switch content := n.Content.(type) {
	case nil:
	case string:
		return w.writeString(content)
	case []byte:
		if err := w.writeByteLength(uint64(len(content))); err != nil {
			return err
		}
		w.pushBytes(content)
	case []Node:
		w.writeListStart(len(content))
		for _, child := range content {
			if err := w.writeNode(child); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w for header %q: %v (%T)", ErrInvalidContent, n.Tag, content, content)
	}
	return nil
}
