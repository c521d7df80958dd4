package encoding

import (
	"testing"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

const sample = `<?xml version="1.0"?><irr_scene><node type="empty"></node></irr_scene>`

func TestToUTF8(t *testing.T) {
	utf16le, _, err := transform.Bytes(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder(), []byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	utf16beNoBOM, _, err := transform.Bytes(unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder(), []byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	utf32le, _, err := transform.Bytes(utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).NewEncoder(), []byte(sample))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		in   []byte
		kind Kind
	}{
		{"plain utf8", []byte(sample), UTF8},
		{"utf8 with bom", append([]byte{0xEF, 0xBB, 0xBF}, sample...), UTF8},
		{"utf16le with bom", utf16le, UTF16LE},
		{"utf16be without bom", utf16beNoBOM, UTF16BE},
		{"utf32le with bom", utf32le, UTF32LE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, kind, err := ToUTF8(tt.in)
			if err != nil {
				t.Fatalf("ToUTF8: %v", err)
			}
			if kind != tt.kind {
				t.Errorf("kind = %v, want %v", kind, tt.kind)
			}
			if string(got) != sample {
				t.Errorf("ToUTF8() = %q, want %q", got, sample)
			}
		})
	}
}

func TestTrimNullBytes(t *testing.T) {
	got := string(TrimNullBytes([]byte("scene\x00\x00")))
	if got != "scene" {
		t.Errorf("TrimNullBytes() = %q, want scene", got)
	}
}
