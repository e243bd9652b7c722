package wrtcanon

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/pulseengine/wrt-go/internal/wrterror"
)

// StringEncoding selects the guest-side encoding a component declares for
// its strings, spec §4.4: "string lifting/lowering transcodes between the
// host's UTF-8 and the component's declared encoding (UTF-8, UTF-16LE,
// UTF-16BE, or Latin-1)."
type StringEncoding uint8

const (
	EncodingUTF8 StringEncoding = iota
	EncodingUTF16LE
	EncodingUTF16BE
	EncodingLatin1
)

// encodeString transcodes a host Go string (always UTF-8) into enc's wire
// bytes.
func encodeString(s string, enc StringEncoding) ([]byte, error) {
	switch enc {
	case EncodingUTF8:
		return []byte(s), nil
	case EncodingUTF16LE, EncodingUTF16BE:
		units := utf16.Encode([]rune(s))
		out := make([]byte, len(units)*2)
		for i, u := range units {
			if enc == EncodingUTF16LE {
				out[i*2] = byte(u)
				out[i*2+1] = byte(u >> 8)
			} else {
				out[i*2] = byte(u >> 8)
				out[i*2+1] = byte(u)
			}
		}
		return out, nil
	case EncodingLatin1:
		out := make([]byte, 0, len(s))
		for _, r := range s {
			if r > 0xFF {
				return nil, wrterror.Trap(wrterror.CodeStringEncodingFailed, "string contains a code point outside Latin-1")
			}
			out = append(out, byte(r))
		}
		return out, nil
	default:
		return nil, wrterror.Trap(wrterror.CodeStringEncodingFailed, "unknown string encoding")
	}
}

// decodeString transcodes enc-encoded wire bytes into a host Go (UTF-8)
// string.
func decodeString(raw []byte, enc StringEncoding) (string, error) {
	switch enc {
	case EncodingUTF8:
		if !utf8.Valid(raw) {
			return "", wrterror.Trap(wrterror.CodeStringEncodingFailed, "invalid UTF-8 in lifted string")
		}
		return string(raw), nil
	case EncodingUTF16LE, EncodingUTF16BE:
		if len(raw)%2 != 0 {
			return "", wrterror.Trap(wrterror.CodeStringEncodingFailed, "odd byte length for UTF-16 string")
		}
		units := make([]uint16, len(raw)/2)
		for i := range units {
			if enc == EncodingUTF16LE {
				units[i] = uint16(raw[i*2]) | uint16(raw[i*2+1])<<8
			} else {
				units[i] = uint16(raw[i*2])<<8 | uint16(raw[i*2+1])
			}
		}
		return string(utf16.Decode(units)), nil
	case EncodingLatin1:
		runes := make([]rune, len(raw))
		for i, b := range raw {
			runes[i] = rune(b)
		}
		return string(runes), nil
	default:
		return "", wrterror.Trap(wrterror.CodeStringEncodingFailed, "unknown string encoding")
	}
}
