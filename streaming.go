package splintr

import "unicode/utf8"

// StreamingDecoder decodes token ids incrementally, as a model emits
// them. A token can end in the middle of a multi-byte rune; those bytes
// stay buffered until a later token completes them, so callers only
// ever see valid UTF-8. Not safe for concurrent use.
type StreamingDecoder struct {
	t   *Tokenizer
	buf []byte
}

// NewStreamingDecoder returns a decoder bound to this tokenizer.
func (t *Tokenizer) NewStreamingDecoder() *StreamingDecoder {
	return &StreamingDecoder{t: t}
}

// AddToken decodes id and returns the text completed by it, which may
// be empty. Range errors are the same as Decode's and leave the buffer
// untouched.
func (d *StreamingDecoder) AddToken(id uint32) (string, error) {
	if err := d.t.core.DecodeBytesInto(&d.buf, []uint32{id}); err != nil {
		return "", err
	}
	cut := completeUTF8Prefix(d.buf)
	if cut == 0 {
		return "", nil
	}
	s := string(d.buf[:cut])
	d.buf = append(d.buf[:0], d.buf[cut:]...)
	return s, nil
}

// Flush returns any buffered bytes, complete or not, and resets the
// decoder.
func (d *StreamingDecoder) Flush() string {
	s := string(d.buf)
	d.buf = d.buf[:0]
	return s
}

// completeUTF8Prefix returns the length of the longest prefix of b that
// does not end inside a multi-byte sequence. Invalid bytes pass through
// unchanged rather than being withheld forever.
func completeUTF8Prefix(b []byte) int {
	i := len(b) - 1
	lo := len(b) - utf8.UTFMax
	if lo < 0 {
		lo = 0
	}
	for ; i >= lo; i-- {
		if b[i]&0xC0 != 0x80 {
			break
		}
	}
	if i < lo {
		return len(b)
	}
	var need int
	switch c := b[i]; {
	case c < 0x80:
		need = 1
	case c&0xE0 == 0xC0:
		need = 2
	case c&0xF0 == 0xE0:
		need = 3
	case c&0xF8 == 0xF0:
		need = 4
	default:
		// stray continuation or invalid byte
		need = 1
	}
	if len(b)-i >= need {
		return len(b)
	}
	return i
}
