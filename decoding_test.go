package wabinary

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// The decoder below is the minimal inverse of the encoder, used by tests to
// check that encoded trees read back as the same tree. Raw strings come
// back as []byte content, as a conforming peer would see them.

var errBufTooShort = errors.New("buffer too short")

type testDecoder struct {
	r      *bufio.Reader
	tags   Tags
	tokens map[[2]int]string
}

func decodeNode(data []byte, t *Tables) (Node, error) {
	r := bufio.NewReader(bytes.NewReader(data))
	marker, err := r.ReadByte()
	if err != nil {
		return Node{}, errBufTooShort
	}
	if marker != 0 {
		return Node{}, fmt.Errorf("got wrong marker byte %x, wanted 0", marker)
	}

	d := &testDecoder{r: r, tags: t.Tags, tokens: map[[2]int]string{}}
	for s, tok := range t.Tokens {
		dict := -1
		if tok.Dict != nil {
			dict = int(*tok.Dict)
		}
		d.tokens[[2]int{dict, int(tok.Index)}] = s
	}

	n, err := d.readNode()
	if err != nil {
		return Node{}, err
	}
	if _, err := r.ReadByte(); err != io.EOF {
		return Node{}, fmt.Errorf("trailing bytes after node")
	}
	return n, nil
}

func (d *testDecoder) readByte() (byte, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, errBufTooShort
	}
	return b, nil
}

func (d *testDecoder) readN(n int) ([]byte, error) {
	out := make([]byte, n)
	if _, err := io.ReadFull(d.r, out); err != nil {
		return nil, errBufTooShort
	}
	return out, nil
}

func (d *testDecoder) isListTag(tag byte) bool {
	return tag == d.tags.ListEmpty || tag == d.tags.List8 || tag == d.tags.List16
}

func (d *testDecoder) readListSize(tag byte) (int, error) {
	switch tag {
	case d.tags.ListEmpty:
		return 0, nil
	case d.tags.List8:
		b, err := d.readByte()
		return int(b), err
	case d.tags.List16:
		b, err := d.readN(2)
		if err != nil {
			return 0, err
		}
		return int(binary.BigEndian.Uint16(b)), nil
	}
	return 0, fmt.Errorf("got wrong list tag %x", tag)
}

func (d *testDecoder) readLength(tag byte) (int, bool, error) {
	switch tag {
	case d.tags.Binary8:
		b, err := d.readByte()
		return int(b), true, err
	case d.tags.Binary20:
		b, err := d.readN(3)
		if err != nil {
			return 0, true, err
		}
		return int(b[0]&0x0F)<<16 | int(b[1])<<8 | int(b[2]), true, nil
	case d.tags.Binary32:
		b, err := d.readN(4)
		if err != nil {
			return 0, true, err
		}
		return int(binary.BigEndian.Uint32(b)), true, nil
	}
	return 0, false, nil
}

func (d *testDecoder) readPacked(tag byte) (string, error) {
	start, err := d.readByte()
	if err != nil {
		return "", err
	}
	packed, err := d.readN(int(start & 0x7F))
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range packed {
		for _, v := range []byte{b >> 4, b & 0x0F} {
			sb.WriteByte(unpackValue(tag == d.tags.Hex8, v))
		}
	}
	s := sb.String()
	if start&0x80 != 0 {
		s = s[:len(s)-1]
	}
	return s, nil
}

func unpackValue(hex bool, v byte) byte {
	switch {
	case v < 10:
		return '0' + v
	case hex:
		return 'A' + v - 10
	case v == 10:
		return '-'
	case v == 11:
		return '.'
	}
	return 0
}

// readValue reads any string-like item. Raw payloads are returned as
// []byte, everything else as a string.
func (d *testDecoder) readValue(tag byte) (any, error) {
	if n, ok, err := d.readLength(tag); ok {
		if err != nil {
			return nil, err
		}
		return d.readN(n)
	}

	switch tag {
	case d.tags.Nibble8, d.tags.Hex8:
		return d.readPacked(tag)
	case d.tags.JIDPair:
		userTag, err := d.readByte()
		if err != nil {
			return nil, err
		}
		var user string
		if userTag != d.tags.ListEmpty {
			if user, err = d.readString(userTag); err != nil {
				return nil, err
			}
		}
		serverTag, err := d.readByte()
		if err != nil {
			return nil, err
		}
		server, err := d.readString(serverTag)
		if err != nil {
			return nil, err
		}
		return user + "@" + server, nil
	case d.tags.ADJID:
		hdr, err := d.readN(2)
		if err != nil {
			return nil, err
		}
		userTag, err := d.readByte()
		if err != nil {
			return nil, err
		}
		user, err := d.readString(userTag)
		if err != nil {
			return nil, err
		}
		server := DefaultUserServer
		switch hdr[0] {
		case DomainLID:
			server = LIDServer
		case DomainHosted:
			server = HostedServer
		case DomainHostedLID:
			server = HostedLIDServer
		}
		return fmt.Sprintf("%s:%d@%s", user, hdr[1], server), nil
	}

	dict := -1
	index := tag
	if tag >= d.tags.Dictionary0 && tag < d.tags.Dictionary0+4 {
		dict = int(tag - d.tags.Dictionary0)
		b, err := d.readByte()
		if err != nil {
			return nil, err
		}
		index = b
	}
	s, ok := d.tokens[[2]int{dict, int(index)}]
	if !ok {
		return nil, fmt.Errorf("unknown token %d in dictionary %d", index, dict)
	}
	return s, nil
}

func (d *testDecoder) readString(tag byte) (string, error) {
	v, err := d.readValue(tag)
	if err != nil {
		return "", err
	}
	switch v := v.(type) {
	case []byte:
		return string(v), nil
	case string:
		return v, nil
	}
	return "", fmt.Errorf("unexpected %T", v)
}

func (d *testDecoder) readNode() (Node, error) {
	listTag, err := d.readByte()
	if err != nil {
		return Node{}, err
	}
	size, err := d.readListSize(listTag)
	if err != nil {
		return Node{}, err
	}
	if size == 0 {
		return Node{}, fmt.Errorf("empty node header")
	}

	tagByte, err := d.readByte()
	if err != nil {
		return Node{}, err
	}
	var n Node
	if n.Tag, err = d.readString(tagByte); err != nil {
		return Node{}, err
	}

	for i := 0; i < (size-1)/2; i++ {
		kb, err := d.readByte()
		if err != nil {
			return Node{}, err
		}
		key, err := d.readString(kb)
		if err != nil {
			return Node{}, err
		}
		vb, err := d.readByte()
		if err != nil {
			return Node{}, err
		}
		value, err := d.readString(vb)
		if err != nil {
			return Node{}, err
		}
		n.Attrs = append(n.Attrs, Attr{Key: key, Value: value})
	}

	if size%2 == 1 {
		return n, nil
	}

	contentTag, err := d.readByte()
	if err != nil {
		return Node{}, err
	}
	if d.isListTag(contentTag) {
		count, err := d.readListSize(contentTag)
		if err != nil {
			return Node{}, err
		}
		children := make([]Node, 0, count)
		for i := 0; i < count; i++ {
			child, err := d.readNode()
			if err != nil {
				return Node{}, err
			}
			children = append(children, child)
		}
		n.Content = children
		return n, nil
	}

	if n.Content, err = d.readValue(contentTag); err != nil {
		return Node{}, err
	}
	return n, nil
}
