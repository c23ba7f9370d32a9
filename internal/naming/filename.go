package naming

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// UnknownImage is returned by the extractor when the model produced nothing usable
	UnknownImage = "未知图片"

	// MaxNameLength is the character limit for a sanitized name
	MaxNameLength = 200

	// MaxNameBytes leaves room for an extension and a collision suffix
	// inside the 255 byte name limit of most filesystems. CJK text hits
	// this before MaxNameLength.
	MaxNameBytes = 240

	fallbackPrefix    = "未识别_"
	timestampLayout   = "20060102_150405"
	illegalCharacters = "<>:\"/\\|?*\r\n"
)

// Sanitize strips characters that are not allowed in filenames and truncates the result
func Sanitize(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalCharacters, r) {
			return -1
		}
		return r
	}, text)

	if runes := []rune(cleaned); len(runes) > MaxNameLength {
		cleaned = string(runes[:MaxNameLength])
	}
	if len(cleaned) > MaxNameBytes {
		cut := MaxNameBytes
		for cut > 0 && !utf8.RuneStart(cleaned[cut]) {
			cut--
		}
		cleaned = cleaned[:cut]
	}

	return strings.TrimSpace(cleaned)
}

// Generate builds a candidate filename from sanitized model output.
// Empty output and the UnknownImage sentinel fall back to a timestamped name.
func Generate(cleaned, extension string, now time.Time) string {
	if cleaned != "" && cleaned != UnknownImage {
		return cleaned + extension
	}
	return fallbackPrefix + now.Format(timestampLayout) + extension
}
