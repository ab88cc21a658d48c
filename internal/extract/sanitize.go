package extract

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

var (
	rtfSpace       = regexp.MustCompile(`(?i)\\'a0`)
	rtfUnicode     = regexp.MustCompile(`\\u(-?\d{1,5}) ?(?:\\'[0-9a-fA-F]{2}|\?)?`)
	rtfHex         = regexp.MustCompile(`(?i)\\'([0-9a-f]{2})`)
	rtfControlWord = regexp.MustCompile(`(?i)\\[a-z0-9-]+ ?`)
	rtfBraces      = regexp.MustCompile(`[{}]`)
	rtfLineEnd     = regexp.MustCompile(`(?m)\\(\r?)$`)
)

// IsRTF reports whether text carries rich-text-format markup
func IsRTF(text string) bool {
	return strings.Contains(text, `{\rtf`) ||
		strings.Contains(text, `\ansi`) ||
		strings.Contains(text, `\cb`)
}

// Sanitize strips RTF markup from an upload and keeps its readable text.
// Plain text passes through unchanged.
func Sanitize(text string) string {
	if !IsRTF(text) {
		return text
	}

	clean := stripRTFHeader(text)
	clean = rtfSpace.ReplaceAllString(clean, " ")
	clean = rtfUnicode.ReplaceAllStringFunc(clean, decodeRTFUnicode)
	clean = rtfHex.ReplaceAllStringFunc(clean, decodeRTFHex)
	clean = rtfControlWord.ReplaceAllString(clean, "")
	clean = rtfBraces.ReplaceAllString(clean, "")
	clean = rtfLineEnd.ReplaceAllString(clean, "$1")

	return clean
}

// stripRTFHeader drops the font/colour tables between "{\rtf1" and the
// first block marker. Without a marker nothing is dropped.
func stripRTFHeader(text string) string {
	start := strings.Index(text, `{\rtf1`)
	if start < 0 {
		return text
	}
	end := strings.Index(text[start:], blockMarker)
	if end < 0 {
		return text
	}
	return text[:start] + text[start+end:]
}

func decodeRTFUnicode(m string) string {
	sub := rtfUnicode.FindStringSubmatch(m)
	n, err := strconv.Atoi(sub[1])
	if err != nil {
		return m
	}
	if n < 0 {
		n += 65536
	}
	return string(rune(n))
}

// decodeRTFHex decodes a \'XX escape using the RTF default code page
func decodeRTFHex(m string) string {
	n, err := strconv.ParseUint(m[2:], 16, 8)
	if err != nil {
		return m
	}
	return string(charmap.Windows1252.DecodeByte(byte(n)))
}
