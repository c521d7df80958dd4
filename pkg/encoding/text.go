// Package encoding normalizes scene description text to UTF-8.
//
// Irrlicht writes scenes as UTF-8, but its XML reader also accepts UTF-16 and
// UTF-32 in either byte order, and editors exporting .irr files use all of
// them. The byte order mark decides; BOM-less UTF-16 is recognized by the
// zero byte next to the leading '<'.
package encoding

import (
	"bytes"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

// Kind names a detected text encoding.
type Kind int

const (
	UTF8 Kind = iota
	UTF16LE
	UTF16BE
	UTF32LE
	UTF32BE
)

func (k Kind) String() string {
	switch k {
	case UTF16LE:
		return "UTF-16LE"
	case UTF16BE:
		return "UTF-16BE"
	case UTF32LE:
		return "UTF-32LE"
	case UTF32BE:
		return "UTF-32BE"
	default:
		return "UTF-8"
	}
}

// Detect inspects the first bytes of data.
func Detect(data []byte) Kind {
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE, 0x00, 0x00}):
		return UTF32LE
	case bytes.HasPrefix(data, []byte{0x00, 0x00, 0xFE, 0xFF}):
		return UTF32BE
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return UTF16LE
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return UTF16BE
	case len(data) >= 2 && data[0] == '<' && data[1] == 0:
		return UTF16LE
	case len(data) >= 2 && data[0] == 0 && data[1] == '<':
		return UTF16BE
	default:
		return UTF8
	}
}

func decoderFor(k Kind) *encoding.Decoder {
	switch k {
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	case UTF32LE:
		return utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).NewDecoder()
	case UTF32BE:
		return utf32.UTF32(utf32.BigEndian, utf32.UseBOM).NewDecoder()
	default:
		return unicode.UTF8BOM.NewDecoder()
	}
}

// ToUTF8 converts scene text of any supported encoding to UTF-8, dropping
// the byte order mark.
func ToUTF8(data []byte) ([]byte, Kind, error) {
	k := Detect(data)
	out, _, err := transform.Bytes(decoderFor(k), data)
	if err != nil {
		return nil, k, err
	}
	return out, k, nil
}

// TrimNullBytes removes trailing null bytes, which some exporters append.
func TrimNullBytes(data []byte) []byte {
	return bytes.TrimRight(data, "\x00")
}
