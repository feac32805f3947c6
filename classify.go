package wabinary

import "fmt"

type packAlphabet int

const (
	nibbleAlphabet packAlphabet = iota
	hexAlphabet
)

func (a packAlphabet) String() string {
	if a == hexAlphabet {
		return "hex"
	}
	return "nibble"
}

func isNibble(s string, packedMax int) bool {
	if s == "" || len(s) > packedMax {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && c != '-' && c != '.' {
			return false
		}
	}
	return true
}

// isHex only accepts upper case digits
func isHex(s string, packedMax int) bool {
	if s == "" || len(s) > packedMax {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

func packNibble(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c == '-':
		return 10, nil
	case c == '.':
		return 11, nil
	case c == 0:
		return 15, nil
	}
	return 0, fmt.Errorf("%w: %q for nibble", ErrInvalidPackedCharacter, c)
}

func packHex(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'A' && c <= 'F':
		return 10 + c - 'A', nil
	case c == 0:
		return 15, nil
	}
	return 0, fmt.Errorf("%w: %q for hex", ErrInvalidPackedCharacter, c)
}

func packBytePair(a packAlphabet, c0, c1 byte) (byte, error) {
	pack := packNibble
	if a == hexAlphabet {
		pack = packHex
	}
	hi, err := pack(c0)
	if err != nil {
		return 0, err
	}
	lo, err := pack(c1)
	if err != nil {
		return 0, err
	}
	return hi<<4 | lo, nil
}

// writePackedBytes stores two characters per byte. The length byte counts
// output bytes and has its top bit set when the last byte carries only one
// character.
func (w *nodeWriter) writePackedBytes(s string, a packAlphabet) error {
	if len(s) > w.tags.PackedMax {
		return fmt.Errorf("%w: %d %s characters", ErrPackedTooLong, len(s), a)
	}

	// Pack into scratch space first so a bad character leaves no tag behind
	packed := make([]byte, 0, len(s)/2+1)
	for i := 0; i+1 < len(s); i += 2 {
		b, err := packBytePair(a, s[i], s[i+1])
		if err != nil {
			return err
		}
		packed = append(packed, b)
	}
	roundedLength := byte((len(s) + 1) / 2)
	if len(s)%2 != 0 {
		roundedLength |= 0x80
		b, err := packBytePair(a, s[len(s)-1], 0)
		if err != nil {
			return err
		}
		packed = append(packed, b)
	}

	if a == hexAlphabet {
		w.pushByte(w.tags.Hex8)
	} else {
		w.pushByte(w.tags.Nibble8)
	}
	w.pushByte(roundedLength)
	w.pushBytes(packed)
	return nil
}
